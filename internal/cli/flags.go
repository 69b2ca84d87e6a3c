package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/me/mitopipeline/internal/config"
	"github.com/me/mitopipeline/internal/setup"
)

// setupFlags are the pipeline inputs shared by setup, check and tasks.
type setupFlags struct {
	configFile   string
	directory    string
	tools        string
	bundledTools string
	refs         string
	output       string
	steps        []string
	softwares    []string
	slurm        bool
}

func (f *setupFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.configFile, "config", "c", "", "YAML run file; flags override its values")
	fl.StringVarP(&f.directory, "directory", "d", "", "Directory of input files named FILENAME.ext")
	fl.StringVarP(&f.tools, "tools", "t", "", "Directory holding user-supplied tool executables")
	fl.StringVar(&f.bundledTools, "bundled-tools", "", "Bundled tools directory (default $MITOPIPELINE_TOOLS or tools/ next to the binary)")
	fl.StringVarP(&f.refs, "refs", "r", "", "Reference genome directory (needed by gatk and removenumts)")
	fl.StringVarP(&f.output, "output", "o", "", "Output directory (default ./mitopipeline-output)")
	fl.StringSliceVarP(&f.steps, "steps", "s", nil, "Steps to run (default: every step)")
	fl.StringSliceVar(&f.softwares, "softwares", nil, "Steps that wrap installable software (default: gatk,annovar,haplogrep,snpeff)")
	fl.BoolVar(&f.slurm, "slurm", false, "Create a slurm folder for job scripts")
}

// load reads the run file, if any, and applies explicitly set flags on top.
func (f *setupFlags) load(cmd *cobra.Command) (config.SetupConfig, error) {
	cfg := config.DefaultSetupConfig()
	if f.configFile != "" {
		var err error
		if cfg, err = config.LoadFile(f.configFile); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("directory") {
		cfg.Directory = f.directory
	}
	if changed("tools") {
		cfg.Tools = f.tools
	}
	if changed("bundled-tools") {
		cfg.BundledTools = f.bundledTools
	}
	if changed("refs") {
		cfg.Refs = f.refs
	}
	if changed("output") {
		cfg.Output = f.output
	}
	if changed("steps") {
		cfg.Steps = f.steps
	}
	if changed("softwares") {
		cfg.Softwares = f.softwares
	}
	if changed("slurm") {
		cfg.Slurm = f.slurm
	}
	return cfg, nil
}

// request turns the merged configuration into a setup request.
func (f *setupFlags) request(cmd *cobra.Command) (setup.Request, *config.Pipeline, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return setup.Request{}, nil, err
	}
	p, err := cfg.Pipeline()
	if err != nil {
		return setup.Request{}, nil, fmt.Errorf("config: %w", err)
	}

	steps := p.Catalog
	if len(cfg.Steps) > 0 {
		if steps, err = p.RequestedSteps(cfg.Steps); err != nil {
			return setup.Request{}, nil, err
		}
	}

	return setup.Request{
		Directory:    cfg.Directory,
		Tools:        cfg.Tools,
		BundledTools: cfg.BundledTools,
		Refs:         cfg.Refs,
		Output:       cfg.Output,
		Steps:        steps,
		Slurm:        cfg.Slurm,
	}, p, nil
}
