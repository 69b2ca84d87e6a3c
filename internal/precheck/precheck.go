// Package precheck validates the input and reference directories before a
// pipeline is built.
package precheck

import (
	"os"
	"sort"
	"strings"

	"github.com/me/mitopipeline/pkg/pipeline"
)

// ValidateInputDirectory checks that path is an existing directory.
func ValidateInputDirectory(path string) error {
	if !isDir(path) {
		return pipeline.NewNotADirectoryError(path, "input directory")
	}
	return nil
}

// ValidateRefsDirectory checks the reference genome directory.
// It only matters when a step that reads reference genomes is requested.
func ValidateRefsDirectory(path string, requested []pipeline.Step) error {
	if !pipeline.ContainsAny(requested, pipeline.ReferenceSteps...) || isDir(path) {
		return nil
	}
	return &pipeline.SetupError{
		Code:    pipeline.ErrMissingReferenceDirectory,
		Message: "gatk and removenumts steps require a directory for the reference genomes, got '" + path + "'",
		Path:    path,
	}
}

// CheckNamingConvention checks that every visible entry in dir is named
// FILENAME.ext, with no period inside FILENAME. Entries are checked in name
// order so the first reported offender is stable.
func CheckNamingConvention(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		e := pipeline.NewNotADirectoryError(dir, "input directory")
		e.Err = err
		return e
	}
	// os.ReadDir already sorts by name.
	for _, entry := range entries {
		name := entry.Name()
		if hidden(name) {
			continue
		}
		if !ValidName(name) {
			return pipeline.NewInvalidFilenameError(dir, name)
		}
	}
	return nil
}

// ValidName reports whether name has at most one period.
func ValidName(name string) bool {
	return strings.Count(name, ".") < 2
}

// SampleID returns the sample identifier of a file, the part before the
// first period ("NA12878.bam" -> "NA12878").
func SampleID(name string) string {
	id, _, _ := strings.Cut(name, ".")
	return id
}

// Samples returns the sorted, de-duplicated sample IDs of the visible
// regular files in dir.
func Samples(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		e := pipeline.NewNotADirectoryError(dir, "input directory")
		e.Err = err
		return nil, e
	}
	seen := make(map[string]bool)
	var ids []string
	for _, entry := range entries {
		if hidden(entry.Name()) || !entry.Type().IsRegular() {
			continue
		}
		id := SampleID(entry.Name())
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
