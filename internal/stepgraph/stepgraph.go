// Package stepgraph selects the tasks a downstream driver must invoke for a
// set of requested steps.
package stepgraph

import (
	"fmt"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// ResolveWrappers returns the task names the driver must run.
//
// Requested steps that are software-backed are returned in request order.
// When none are, the result is the single requested non-software step that
// comes last in catalog order, which is the most downstream one.
func ResolveWrappers(names pipeline.TaskNames, catalog pipeline.Catalog, requested []pipeline.Step, software pipeline.StepSet) ([]pipeline.TaskName, error) {
	var direct []pipeline.TaskName
	for _, step := range requested {
		if !software.Has(step) {
			continue
		}
		tn, err := lookup(names, step)
		if err != nil {
			return nil, err
		}
		direct = append(direct, tn)
	}
	if len(direct) > 0 {
		return direct, nil
	}

	want := make(map[pipeline.Step]bool, len(requested))
	for _, step := range requested {
		want[step] = true
	}
	for _, step := range catalog.Reverse() {
		if want[step] && !software.Has(step) {
			tn, err := lookup(names, step)
			if err != nil {
				return nil, err
			}
			return []pipeline.TaskName{tn}, nil
		}
	}

	return nil, &pipeline.SetupError{
		Code:    pipeline.ErrNoApplicableTask,
		Message: fmt.Sprintf("no task to run for requested steps %v", requested),
	}
}

// ResolveTasks returns the folder names of the tasks the driver must run.
func ResolveTasks(names pipeline.TaskNames, catalog pipeline.Catalog, requested []pipeline.Step, software pipeline.StepSet) ([]string, error) {
	wrappers, err := ResolveWrappers(names, catalog, requested, software)
	if err != nil {
		return nil, err
	}
	folders := make([]string, len(wrappers))
	for i, tn := range wrappers {
		folders[i] = tn.Folder
	}
	return folders, nil
}

func lookup(names pipeline.TaskNames, step pipeline.Step) (pipeline.TaskName, error) {
	tn, ok := names[step]
	if !ok || tn.Folder == "" {
		return pipeline.TaskName{}, &pipeline.SetupError{
			Code:    pipeline.ErrNoApplicableTask,
			Message: fmt.Sprintf("step %s has no task name", step),
			Step:    step,
		}
	}
	return tn, nil
}
