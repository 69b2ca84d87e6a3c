package pipeline

import "time"

// SetupStatus is the outcome of a setup invocation.
type SetupStatus string

const (
	SetupStatusOK     SetupStatus = "ok"
	SetupStatusFailed SetupStatus = "failed"
)

// SetupRecord is the history entry for one setup invocation.
type SetupRecord struct {
	ID        string              `json:"id"`
	Status    SetupStatus         `json:"status"`
	Directory string              `json:"directory"`
	Output    string              `json:"output"`
	Steps     []Step              `json:"steps"`
	Tasks     []string            `json:"tasks"`
	Tools     map[Software]string `json:"tools"` // software -> executable path
	Slurm     bool                `json:"slurm"`
	DryRun    bool                `json:"dry_run"`
	ErrorCode ErrorCode           `json:"error_code,omitempty"`
	Error     string              `json:"error,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}
