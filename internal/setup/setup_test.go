package setup

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/me/mitopipeline/internal/config"
	"github.com/me/mitopipeline/internal/logging"
	"github.com/me/mitopipeline/internal/store"
	"github.com/me/mitopipeline/internal/toolcheck"
	"github.com/me/mitopipeline/pkg/pipeline"
)

type fixture struct {
	input, refs, bundled, output string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	t.Setenv("PATH", "")
	root := t.TempDir()
	f := fixture{
		input:   filepath.Join(root, "bams"),
		refs:    filepath.Join(root, "refs"),
		bundled: filepath.Join(root, "tools"),
		output:  filepath.Join(root, "out"),
	}
	for _, d := range []string{f.input, f.refs, f.bundled} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for _, n := range []string{"NA12878.bam", "NA12878.bai", "HG002.bam"} {
		if err := os.WriteFile(filepath.Join(f.input, n), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, sw := range []string{"samtools", "gatk"} {
		dir := filepath.Join(f.bundled, sw)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, sw), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

func (f fixture) request(steps ...pipeline.Step) Request {
	return Request{
		Directory:    f.input,
		BundledTools: f.bundled,
		Refs:         f.refs,
		Output:       f.output,
		Steps:        steps,
	}
}

func defaultPipeline(t *testing.T) *config.Pipeline {
	t.Helper()
	p, err := config.DefaultSetupConfig().Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}
	return p
}

func testHistory(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(":memory:", logging.Discard())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestPrepare_RemoveNumts(t *testing.T) {
	f := newFixture(t)
	cfg := config.DefaultSetupConfig()
	cfg.Softwares = []string{"removenumts"}
	cfg.TaskNames = map[string]config.TaskNameConfig{"removenumts": {Folder: "numts"}}
	p, err := cfg.Pipeline()
	if err != nil {
		t.Fatalf("Pipeline: %v", err)
	}

	res, err := NewPreparer(p, nil, logging.Discard()).Prepare(context.Background(), f.request(pipeline.StepRemoveNumts))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !reflect.DeepEqual(res.Tasks, []string{"numts"}) {
		t.Errorf("Tasks = %v, want [numts]", res.Tasks)
	}
	for _, sub := range []string{"fastqs", "pileups", "numt_removal_stor", "counts"} {
		if info, err := os.Stat(filepath.Join(f.output, "numts", sub)); err != nil || !info.IsDir() {
			t.Errorf("missing %s: %v", sub, err)
		}
	}
	if !reflect.DeepEqual(res.Samples, []string{"HG002", "NA12878"}) {
		t.Errorf("Samples = %v", res.Samples)
	}
	if got := res.Tools["samtools"].Location; got != toolcheck.LocationBundled {
		t.Errorf("samtools location = %s, want bundled", got)
	}
}

func TestPrepare_FallbackTask(t *testing.T) {
	f := newFixture(t)
	res, err := NewPreparer(defaultPipeline(t), nil, logging.Discard()).
		Prepare(context.Background(), f.request(pipeline.StepDownsample, pipeline.StepSplitGap))
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if !reflect.DeepEqual(res.Tasks, []string{"downsample"}) {
		t.Errorf("Tasks = %v, want [downsample]", res.Tasks)
	}
	if res.Wrappers[0].Wrapper != "Downsample" {
		t.Errorf("Wrapper = %q, want Downsample", res.Wrappers[0].Wrapper)
	}
}

func TestPrepare_DryRun(t *testing.T) {
	f := newFixture(t)
	req := f.request(pipeline.StepGATK)
	req.DryRun = true
	req.Slurm = true

	res, err := NewPreparer(defaultPipeline(t), nil, logging.Discard()).Prepare(context.Background(), req)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if _, err := os.Stat(f.output); !os.IsNotExist(err) {
		t.Errorf("dry run created output: %v", err)
	}
	if got := len(res.Workspace.Missing()); got != len(res.Workspace.Dirs) {
		t.Errorf("Missing = %d dirs, want %d", got, len(res.Workspace.Dirs))
	}
}

func TestPrepare_GateFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f fixture, req *Request)
		want   pipeline.ErrorCode
	}{
		{"missing input", func(f fixture, r *Request) { r.Directory = filepath.Join(f.input, "nope") }, pipeline.ErrNotADirectory},
		{"missing refs", func(f fixture, r *Request) { r.Refs = "" }, pipeline.ErrMissingReferenceDirectory},
		{"bad filename", func(f fixture, r *Request) {
			os.WriteFile(filepath.Join(f.input, "x.sorted.bam"), nil, 0o644)
		}, pipeline.ErrInvalidFilename},
		{"missing tool", func(f fixture, r *Request) { r.Steps = append(r.Steps, pipeline.StepSnpEff) }, pipeline.ErrToolNotFound},
		{"output is a file", func(f fixture, r *Request) {
			os.WriteFile(f.output, nil, 0o644)
		}, pipeline.ErrFilesystem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			req := f.request(pipeline.StepGATK)
			tt.mutate(f, &req)

			_, err := NewPreparer(defaultPipeline(t), nil, logging.Discard()).Prepare(context.Background(), req)
			if got := pipeline.CodeOf(err); got != tt.want {
				t.Errorf("code = %q, want %q (err %v)", got, tt.want, err)
			}
		})
	}
}

func TestPrepare_RecordsHistory(t *testing.T) {
	f := newFixture(t)
	st := testHistory(t)
	prep := NewPreparer(defaultPipeline(t), st, logging.Discard())
	ctx := context.Background()

	if _, err := prep.Prepare(ctx, f.request(pipeline.StepGATK)); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	bad := f.request(pipeline.StepAnnovar)
	if _, err := prep.Prepare(ctx, bad); err == nil {
		t.Fatal("expected annovar to be missing")
	}

	recs, err := st.ListSetups(ctx, 0)
	if err != nil {
		t.Fatalf("ListSetups: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	var ok, failed int
	for _, r := range recs {
		switch r.Status {
		case pipeline.SetupStatusOK:
			ok++
			if r.Tools["gatk"] == "" || !reflect.DeepEqual(r.Tasks, []string{"gatk"}) {
				t.Errorf("ok record = %+v", r)
			}
		case pipeline.SetupStatusFailed:
			failed++
			if r.ErrorCode != pipeline.ErrToolNotFound {
				t.Errorf("failed record code = %q", r.ErrorCode)
			}
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("ok=%d failed=%d, want 1 and 1", ok, failed)
	}
}

func TestCheck_DoesNotTouchOutput(t *testing.T) {
	f := newFixture(t)
	res, err := NewPreparer(defaultPipeline(t), nil, logging.Discard()).Check(context.Background(), f.request(pipeline.StepGATK, pipeline.StepSplitGap))
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if len(res.Tools) != 2 {
		t.Errorf("Tools = %v, want gatk and samtools", res.Tools)
	}
	if _, err := os.Stat(f.output); !os.IsNotExist(err) {
		t.Errorf("Check created output: %v", err)
	}
}
