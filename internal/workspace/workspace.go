// Package workspace lays out the output directory tree for a pipeline run.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// SchedulerFolder holds job-scheduler scripts and logs.
const SchedulerFolder = "slurm"

// Workspace is the directory tree for one pipeline run.
type Workspace struct {
	Root string
	// Dirs lists every directory of the layout in creation order, Root first.
	Dirs []string
	// TaskDirs maps each requested step to its top-level folder.
	TaskDirs map[pipeline.Step]string
	// SchedulerDir is set when the scheduler folder is part of the layout.
	SchedulerDir string
}

// Plan computes the layout without touching the filesystem.
func Plan(root string, requested []pipeline.Step, names pipeline.TaskNames, schema pipeline.SubfolderSchema, slurm bool) (*Workspace, error) {
	ws := &Workspace{
		Root:     root,
		Dirs:     []string{root},
		TaskDirs: make(map[pipeline.Step]string, len(requested)),
	}
	for _, step := range requested {
		tn, ok := names[step]
		if !ok || tn.Folder == "" {
			return nil, &pipeline.SetupError{
				Code:    pipeline.ErrFilesystem,
				Message: fmt.Sprintf("step %s has no task folder", step),
				Path:    root,
				Step:    step,
			}
		}
		taskDir := filepath.Join(root, tn.Folder)
		if _, dup := ws.TaskDirs[step]; !dup {
			ws.Dirs = append(ws.Dirs, taskDir)
			for _, sub := range schema[step] {
				ws.Dirs = append(ws.Dirs, filepath.Join(taskDir, sub))
			}
		}
		ws.TaskDirs[step] = taskDir
	}
	if slurm {
		ws.SchedulerDir = filepath.Join(root, SchedulerFolder)
		ws.Dirs = append(ws.Dirs, ws.SchedulerDir)
	}
	return ws, nil
}

// Builder creates workspaces on disk.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger) *Builder {
	return &Builder{logger: logger.With("component", "workspace")}
}

// Build creates the layout computed by Plan. Existing directories are left
// alone, so building twice, or concurrently from several processes, succeeds.
// The first failure aborts the build; directories already created stay.
func (b *Builder) Build(ctx context.Context, root string, requested []pipeline.Step, names pipeline.TaskNames, schema pipeline.SubfolderSchema, slurm bool) (*Workspace, error) {
	ws, err := Plan(root, requested, names, schema, slurm)
	if err != nil {
		return nil, err
	}
	for _, dir := range ws.Dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := mkdir(dir); err != nil {
			return nil, pipeline.NewFilesystemError(dir, err)
		}
		b.logger.Debug("directory ready", "path", dir)
	}
	b.logger.Info("workspace ready", "root", root, "steps", len(ws.TaskDirs), "slurm", slurm)
	return ws, nil
}

func mkdir(dir string) error {
	err := os.MkdirAll(dir, 0o755)
	if err == nil {
		return nil
	}
	// Lost a race with another builder: the directory exists now.
	if errors.Is(err, fs.ErrExist) {
		if info, statErr := os.Stat(dir); statErr == nil && info.IsDir() {
			return nil
		}
	}
	return err
}

// Missing returns the directories of ws that do not exist on disk.
func (ws *Workspace) Missing() []string {
	var missing []string
	for _, dir := range ws.Dirs {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, dir)
		}
	}
	return missing
}
