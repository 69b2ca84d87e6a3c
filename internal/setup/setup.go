// Package setup runs the precondition gates and builds the workspace for one
// pipeline invocation.
package setup

import (
	"context"
	"log/slog"

	"github.com/me/mitopipeline/internal/config"
	"github.com/me/mitopipeline/internal/precheck"
	"github.com/me/mitopipeline/internal/stepgraph"
	"github.com/me/mitopipeline/internal/store"
	"github.com/me/mitopipeline/internal/toolcheck"
	"github.com/me/mitopipeline/internal/workspace"
	"github.com/me/mitopipeline/pkg/pipeline"
)

// Request holds the per-invocation inputs.
type Request struct {
	Directory    string
	Tools        string // user tools directory, optional
	BundledTools string
	Refs         string
	Output       string
	Steps        []pipeline.Step
	Slurm        bool
	DryRun       bool // plan the workspace without creating it
}

// Result is what the downstream driver consumes.
type Result struct {
	Samples   []string
	Tools     toolcheck.Availability
	Workspace *workspace.Workspace
	Tasks     []string
	Wrappers  []pipeline.TaskName
}

// Preparer runs setups against a fixed step configuration.
type Preparer struct {
	pipeline *config.Pipeline
	builder  *workspace.Builder
	store    store.Store
	logger   *slog.Logger
}

// NewPreparer creates a Preparer. st may be nil to skip recording history.
func NewPreparer(p *config.Pipeline, st store.Store, logger *slog.Logger) *Preparer {
	return &Preparer{
		pipeline: p,
		builder:  workspace.NewBuilder(logger),
		store:    st,
		logger:   logger.With("component", "setup"),
	}
}

// Check runs the input gates and tool resolution without touching the
// output directory.
func (p *Preparer) Check(ctx context.Context, req Request) (*Result, error) {
	if err := precheck.ValidateInputDirectory(req.Directory); err != nil {
		return nil, err
	}
	if err := precheck.ValidateRefsDirectory(req.Refs, req.Steps); err != nil {
		return nil, err
	}
	if err := precheck.CheckNamingConvention(req.Directory); err != nil {
		return nil, err
	}
	samples, err := precheck.Samples(req.Directory)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("input directory ok", "directory", req.Directory, "samples", len(samples))

	resolver := toolcheck.NewResolver(req.BundledTools, req.Tools, p.logger)
	tools, err := resolver.Resolve(req.Steps, p.pipeline.Dependencies)
	if err != nil {
		return nil, err
	}
	return &Result{Samples: samples, Tools: tools}, nil
}

// Prepare runs Check, builds (or plans) the workspace and resolves the
// driver tasks. The first failure aborts setup and is returned as is.
func (p *Preparer) Prepare(ctx context.Context, req Request) (*Result, error) {
	res, err := p.prepare(ctx, req)
	p.record(ctx, req, res, err)
	return res, err
}

func (p *Preparer) prepare(ctx context.Context, req Request) (*Result, error) {
	res, err := p.Check(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.DryRun {
		res.Workspace, err = workspace.Plan(req.Output, req.Steps, p.pipeline.TaskNames, p.pipeline.Subfolders, req.Slurm)
	} else {
		res.Workspace, err = p.builder.Build(ctx, req.Output, req.Steps, p.pipeline.TaskNames, p.pipeline.Subfolders, req.Slurm)
	}
	if err != nil {
		return nil, err
	}

	res.Wrappers, err = stepgraph.ResolveWrappers(p.pipeline.TaskNames, p.pipeline.Catalog, req.Steps, p.pipeline.SoftwareSteps)
	if err != nil {
		return nil, err
	}
	for _, w := range res.Wrappers {
		res.Tasks = append(res.Tasks, w.Folder)
	}

	p.logger.Info("setup complete", "output", req.Output, "tasks", res.Tasks, "dry_run", req.DryRun)
	return res, nil
}

func (p *Preparer) record(ctx context.Context, req Request, res *Result, setupErr error) {
	if p.store == nil {
		return
	}
	rec := &pipeline.SetupRecord{
		Status:    pipeline.SetupStatusOK,
		Directory: req.Directory,
		Output:    req.Output,
		Steps:     req.Steps,
		Slurm:     req.Slurm,
		DryRun:    req.DryRun,
	}
	if setupErr != nil {
		rec.Status = pipeline.SetupStatusFailed
		rec.ErrorCode = pipeline.CodeOf(setupErr)
		rec.Error = setupErr.Error()
	}
	if res != nil {
		rec.Tasks = res.Tasks
		rec.Tools = make(map[pipeline.Software]string, len(res.Tools))
		for sw, r := range res.Tools {
			rec.Tools[sw] = r.Path
		}
	}
	if err := p.store.RecordSetup(ctx, rec); err != nil {
		p.logger.Warn("record setup history", "error", err)
	}
}
