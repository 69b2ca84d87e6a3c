package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// testEnv is an input directory, refs directory and bundled tools directory
// with samtools and gatk installed.
type testEnv struct {
	root, input, refs, tools, output string
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	t.Setenv("PATH", "")
	root := t.TempDir()
	e := testEnv{
		root:   root,
		input:  filepath.Join(root, "bams"),
		refs:   filepath.Join(root, "refs"),
		tools:  filepath.Join(root, "tools"),
		output: filepath.Join(root, "out"),
	}
	for _, d := range []string{e.input, e.refs, e.tools} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(e.input, "NA12878.bam"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	for _, sw := range []string{"samtools", "gatk"} {
		if err := os.WriteFile(filepath.Join(e.tools, sw), []byte("#!/bin/sh\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return e
}

func (e testEnv) args(extra ...string) []string {
	return append([]string{
		"--no-history",
		"-d", e.input,
		"-r", e.refs,
		"-o", e.output,
		"--bundled-tools", e.tools,
	}, extra...)
}

// run executes the CLI and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), err
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func TestSetupCmd(t *testing.T) {
	e := newTestEnv(t)
	args := append([]string{"setup"}, e.args("-s", "removenumts,gatk", "--slurm")...)

	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	for _, dir := range []string{"removenumts/fastqs", "removenumts/counts", "gatk/gatk_stor", "slurm"} {
		if !isDir(filepath.Join(e.output, dir)) {
			t.Errorf("missing %s", dir)
		}
	}
	if !strings.Contains(out, "NA12878") || !strings.Contains(out, "gatk (bundled)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	// Running again over the same workspace succeeds.
	if _, err := run(t, args...); err != nil {
		t.Fatalf("second setup: %v", err)
	}
}

func TestSetupCmd_DryRun(t *testing.T) {
	e := newTestEnv(t)
	out, err := run(t, append([]string{"setup", "--dry-run"}, e.args("-s", "gatk")...)...)
	if err != nil {
		t.Fatalf("setup --dry-run: %v", err)
	}
	if isDir(e.output) {
		t.Error("dry run created the output directory")
	}
	if !strings.Contains(out, filepath.Join(e.output, "gatk", "gatk_stor")) {
		t.Errorf("planned layout missing gatk_stor:\n%s", out)
	}
}

func TestSetupCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args func(e testEnv) []string
		want string
	}{
		{"unknown step", func(e testEnv) []string { return e.args("-s", "bwa") }, "unknown steps: bwa"},
		{"missing tool", func(e testEnv) []string { return e.args("-s", "snpeff") }, string(pipeline.ErrToolNotFound)},
		{"missing refs", func(e testEnv) []string {
			return append(e.args("-s", "gatk"), "-r", filepath.Join(e.root, "norefs"))
		}, string(pipeline.ErrMissingReferenceDirectory)},
		{"no input directory", func(e testEnv) []string {
			return []string{"--no-history", "-s", "splitgap", "--bundled-tools", e.tools, "-o", e.output}
		}, string(pipeline.ErrNotADirectory)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			_, err := run(t, append([]string{"setup"}, tt.args(e)...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestSetupCmd_ConfigFile(t *testing.T) {
	e := newTestEnv(t)
	cfgPath := filepath.Join(e.root, "run.yaml")
	data := "directory: " + e.input + "\n" +
		"refs: " + e.refs + "\n" +
		"output: " + filepath.Join(e.root, "from-file") + "\n" +
		"bundled_tools: " + e.tools + "\n" +
		"steps: [removenumts]\n" +
		"softwares: [removenumts]\n" +
		"task_names:\n  removenumts:\n    folder: numts\n"
	if err := os.WriteFile(cfgPath, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	// --output overrides the file.
	out, err := run(t, "setup", "--no-history", "-c", cfgPath, "-o", e.output)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	if !isDir(filepath.Join(e.output, "numts", "numt_removal_stor")) {
		t.Error("missing numts/numt_removal_stor under overridden output")
	}
	if isDir(filepath.Join(e.root, "from-file")) {
		t.Error("file output used despite --output")
	}
	if !strings.Contains(out, "numts") {
		t.Errorf("tasks missing from output:\n%s", out)
	}
}

func TestCheckCmd(t *testing.T) {
	e := newTestEnv(t)
	out, err := run(t, append([]string{"check"}, e.args("-s", "gatk,splitgap")...)...)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	for _, want := range []string{"samtools", "gatk", "bundled", filepath.Join(e.tools, "gatk")} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if isDir(e.output) {
		t.Error("check created the output directory")
	}
}

func TestTasksCmd(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"tasks", "-s", "removenumts,splitgap,clipping"}, "clipping\n"},
		{[]string{"tasks", "-s", "snpeff,removenumts,gatk"}, "snpeff\ngatk\n"},
		{[]string{"tasks", "-s", "extractmito", "--wrappers"}, "mito\tExtractMito\n"},
	}
	for _, tt := range tests {
		out, err := run(t, tt.args...)
		if err != nil {
			t.Fatalf("%v: %v", tt.args, err)
		}
		if out != tt.want {
			t.Errorf("%v = %q, want %q", tt.args, out, tt.want)
		}
	}
}

func TestStepsCmd(t *testing.T) {
	out, err := run(t, "steps")
	if err != nil {
		t.Fatalf("steps: %v", err)
	}
	for _, s := range pipeline.DefaultCatalog() {
		if !strings.Contains(out, s.String()) {
			t.Errorf("output missing step %s", s)
		}
	}
	if strings.Index(out, "removenumts") > strings.Index(out, "haplogrep") {
		t.Error("steps not listed in pipeline order")
	}
}

func TestHistoryCmd(t *testing.T) {
	e := newTestEnv(t)
	db := filepath.Join(e.root, "history.db")

	out, err := run(t, "history", "--db", db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No setups recorded.") {
		t.Errorf("empty history output = %q", out)
	}

	setupArgs := []string{"setup", "--db", db, "-d", e.input, "-r", e.refs, "-o", e.output, "--bundled-tools", e.tools, "-s", "gatk"}
	if _, err := run(t, setupArgs...); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if _, err := run(t, append(setupArgs[:len(setupArgs)-1], "annovar")...); err == nil {
		t.Fatal("expected annovar setup to fail")
	}

	out, err = run(t, "history", "--db", db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if strings.Count(out, "setup_") != 2 {
		t.Errorf("want 2 records:\n%s", out)
	}
	if !strings.Contains(out, string(pipeline.ErrToolNotFound)) {
		t.Errorf("failed setup missing error code:\n%s", out)
	}
}

func TestRootCmd_BadLogFormat(t *testing.T) {
	if _, err := run(t, "--log-format", "xml", "steps"); err == nil {
		t.Error("expected error for unknown log format")
	}
}
