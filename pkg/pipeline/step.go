package pipeline

import (
	"fmt"
	"strings"
)

// Step identifies a stage in the pipeline catalog.
type Step string

// Known pipeline steps.
const (
	StepRemoveNumts Step = "removenumts"
	StepSplitGap    Step = "splitgap"
	StepClipping    Step = "clipping"
	StepExtractMito Step = "extractmito"
	StepDownsample  Step = "downsample"
	StepGATK        Step = "gatk"
	StepAnnovar     Step = "annovar"
	StepHaplogrep   Step = "haplogrep"
	StepSnpEff      Step = "snpeff"
)

// String returns the string representation of the step.
func (s Step) String() string {
	return string(s)
}

// Software names an external tool binary a step depends on.
type Software string

func (s Software) String() string {
	return string(s)
}

// Catalog is the ordered list of known steps. Order is the pipeline
// definition order; later entries are further downstream.
type Catalog []Step

// Contains reports whether step is in the catalog.
func (c Catalog) Contains(step Step) bool {
	return c.Index(step) >= 0
}

// Index returns the position of step in the catalog, or -1.
func (c Catalog) Index(step Step) int {
	for i, s := range c {
		if s == step {
			return i
		}
	}
	return -1
}

// Reverse returns a copy of the catalog in reverse definition order.
func (c Catalog) Reverse() Catalog {
	out := make(Catalog, len(c))
	for i, s := range c {
		out[len(c)-1-i] = s
	}
	return out
}

// Dependencies maps a step to the software it needs.
type Dependencies map[Step]Software

// TaskName describes how a step is presented to the downstream driver.
type TaskName struct {
	Folder  string // output folder for the step
	Wrapper string // job-template function that runs the step
}

// TaskNames maps each step to its task name.
type TaskNames map[Step]TaskName

// SubfolderSchema lists the subfolders created beneath each step's folder.
type SubfolderSchema map[Step][]string

// StepSet is a set of steps, used for the software-backed partition.
type StepSet map[Step]bool

// NewStepSet builds a StepSet from steps.
func NewStepSet(steps ...Step) StepSet {
	set := make(StepSet, len(steps))
	for _, s := range steps {
		set[s] = true
	}
	return set
}

// Has reports whether step is in the set.
func (s StepSet) Has(step Step) bool {
	return s[step]
}

// ContainsAny reports whether any of steps is in requested.
func ContainsAny(requested []Step, steps ...Step) bool {
	for _, r := range requested {
		for _, s := range steps {
			if r == s {
				return true
			}
		}
	}
	return false
}

// ParseSteps converts raw step names into catalog steps.
// Names are trimmed and lower-cased, duplicates keep their first position,
// and names not present in the catalog are rejected.
func ParseSteps(catalog Catalog, names []string) ([]Step, error) {
	seen := make(map[Step]bool, len(names))
	var steps []Step
	var unknown []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		step := Step(n)
		if !catalog.Contains(step) {
			unknown = append(unknown, n)
			continue
		}
		if seen[step] {
			continue
		}
		seen[step] = true
		steps = append(steps, step)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown steps: %s", strings.Join(unknown, ", "))
	}
	return steps, nil
}
