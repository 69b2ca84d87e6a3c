package pipeline

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a setup failure.
type ErrorCode string

const (
	ErrNotADirectory             ErrorCode = "NOT_A_DIRECTORY"
	ErrMissingReferenceDirectory ErrorCode = "MISSING_REFERENCE_DIRECTORY"
	ErrInvalidFilename           ErrorCode = "INVALID_FILENAME"
	ErrToolNotFound              ErrorCode = "TOOL_NOT_FOUND"
	ErrNoApplicableTask          ErrorCode = "NO_APPLICABLE_TASK"
	ErrFilesystem                ErrorCode = "FILESYSTEM_ERROR"
)

// SetupError is returned when pipeline setup cannot proceed.
// Every SetupError is fatal to the setup phase.
type SetupError struct {
	Code     ErrorCode
	Message  string
	Path     string   // offending directory or file path
	File     string   // offending file name
	Software Software // software that could not be resolved
	Step     Step
	Detail   string // which lookup path failed, for ToolNotFound
	Err      error
}

func (e *SetupError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// CodeOf returns the ErrorCode of the first SetupError in err's chain,
// or "" if there is none.
func CodeOf(err error) ErrorCode {
	var se *SetupError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// NewNotADirectoryError reports a path that should be an existing directory.
func NewNotADirectoryError(path, what string) *SetupError {
	return &SetupError{
		Code:    ErrNotADirectory,
		Message: fmt.Sprintf("%s '%s' is not an existing directory", what, path),
		Path:    path,
	}
}

// NewInvalidFilenameError reports a file violating the NAME.ext convention.
func NewInvalidFilenameError(dir, file string) *SetupError {
	return &SetupError{
		Code: ErrInvalidFilename,
		Message: fmt.Sprintf("file '%s' in '%s' must follow the format 'FILENAME.ext' with no periods in FILENAME",
			file, dir),
		Path: dir,
		File: file,
	}
}

// NewFilesystemError reports a directory that could not be created.
func NewFilesystemError(path string, err error) *SetupError {
	return &SetupError{
		Code:    ErrFilesystem,
		Message: fmt.Sprintf("create directory '%s'", path),
		Path:    path,
		Err:     err,
	}
}
