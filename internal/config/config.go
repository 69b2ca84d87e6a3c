package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// Environment variables consulted for defaults.
const (
	EnvTools = "MITOPIPELINE_TOOLS"
	EnvDB    = "MITOPIPELINE_DB"
)

// SetupConfig holds the inputs of one pipeline setup. It can be loaded from
// a YAML run file; command-line flags override file values.
type SetupConfig struct {
	Directory string   `yaml:"directory"` // input BAM directory
	Tools     string   `yaml:"tools"`     // user tools directory (optional)
	Refs      string   `yaml:"refs"`      // reference genome directory
	Output    string   `yaml:"output"`
	Steps     []string `yaml:"steps"`
	Softwares []string `yaml:"softwares"` // software-backed steps
	Slurm     bool     `yaml:"slurm"`

	BundledTools string `yaml:"bundled_tools"`

	// Dependencies overrides the software name of individual steps.
	Dependencies map[string]string `yaml:"dependencies"`
	// TaskNames overrides the folder or wrapper of individual steps.
	TaskNames map[string]TaskNameConfig `yaml:"task_names"`
}

// TaskNameConfig is the YAML form of pipeline.TaskName.
type TaskNameConfig struct {
	Folder  string `yaml:"folder"`
	Wrapper string `yaml:"wrapper"`
}

// DefaultSetupConfig returns sensible defaults.
func DefaultSetupConfig() SetupConfig {
	var softwares []string
	for _, s := range pipeline.DefaultCatalog() {
		if pipeline.DefaultSoftwareSteps().Has(s) {
			softwares = append(softwares, s.String())
		}
	}
	return SetupConfig{
		Output:       "mitopipeline-output",
		Softwares:    softwares,
		BundledTools: DefaultBundledToolsDir(),
	}
}

// DefaultBundledToolsDir returns $MITOPIPELINE_TOOLS, or the tools directory
// next to the running executable.
func DefaultBundledToolsDir() string {
	if d := os.Getenv(EnvTools); d != "" {
		return d
	}
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(exe), "tools")
}

// DefaultDBPath returns $MITOPIPELINE_DB, or ~/.mitopipeline/history.db.
func DefaultDBPath() (string, error) {
	if p := os.Getenv(EnvDB); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".mitopipeline", "history.db"), nil
}

// LoadFile reads a YAML run file on top of the defaults.
func LoadFile(path string) (SetupConfig, error) {
	cfg := DefaultSetupConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Pipeline is the static step configuration derived from a SetupConfig.
type Pipeline struct {
	Catalog       pipeline.Catalog
	Dependencies  pipeline.Dependencies
	TaskNames     pipeline.TaskNames
	Subfolders    pipeline.SubfolderSchema
	SoftwareSteps pipeline.StepSet
}

// Pipeline returns the defaults with the file's overrides applied.
// Overrides and software steps must name catalog steps.
func (c SetupConfig) Pipeline() (*Pipeline, error) {
	p := &Pipeline{
		Catalog:      pipeline.DefaultCatalog(),
		Dependencies: pipeline.DefaultDependencies(),
		TaskNames:    pipeline.DefaultTaskNames(),
		Subfolders:   pipeline.Subfolders(),
	}

	for name, sw := range c.Dependencies {
		step, err := p.step(name)
		if err != nil {
			return nil, fmt.Errorf("dependencies: %w", err)
		}
		p.Dependencies[step] = pipeline.Software(sw)
	}
	for name, tn := range c.TaskNames {
		step, err := p.step(name)
		if err != nil {
			return nil, fmt.Errorf("task_names: %w", err)
		}
		cur := p.TaskNames[step]
		if tn.Folder != "" {
			cur.Folder = tn.Folder
		}
		if tn.Wrapper != "" {
			cur.Wrapper = tn.Wrapper
		}
		p.TaskNames[step] = cur
	}

	softwares, err := pipeline.ParseSteps(p.Catalog, c.Softwares)
	if err != nil {
		return nil, fmt.Errorf("softwares: %w", err)
	}
	p.SoftwareSteps = pipeline.NewStepSet(softwares...)
	return p, nil
}

// RequestedSteps parses step names against the catalog.
func (p *Pipeline) RequestedSteps(names []string) ([]pipeline.Step, error) {
	return pipeline.ParseSteps(p.Catalog, names)
}

func (p *Pipeline) step(name string) (pipeline.Step, error) {
	steps, err := pipeline.ParseSteps(p.Catalog, []string{name})
	if err != nil {
		return "", err
	}
	if len(steps) == 0 {
		return "", fmt.Errorf("empty step name")
	}
	return steps[0], nil
}
