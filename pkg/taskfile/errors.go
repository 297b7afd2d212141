package taskfile

import (
	"errors"
	"fmt"
)

// Standard task-file error types that all store implementations use.
var (
	// ErrTaskFileNotFound indicates no task file exists at the given path.
	ErrTaskFileNotFound = errors.New("task file not found")

	// ErrTaskFileExists indicates the target path is already occupied.
	// A store never overwrites an existing task file.
	ErrTaskFileExists = errors.New("task file already exists")

	// ErrTaskFileParse indicates the document at the path could not be
	// parsed back into a task file.
	ErrTaskFileParse = errors.New("task file malformed")

	// ErrTaskIndexOutOfRange indicates a checklist index beyond the
	// current task list.
	ErrTaskIndexOutOfRange = errors.New("task index out of range")
)

// Error wraps task-file store failures with operation context.
type Error struct {
	Op   string // Operation being performed (e.g. "Create", "Read", "MarkTaskDone")
	Path string // Store-relative task file path
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed for task file %s: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is implements error comparison for task-file errors.
func (e *Error) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewError creates a task-file error with context.
func NewError(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}

// IsNotFound checks if an error indicates a missing task file.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTaskFileNotFound)
}

// IsExists checks if an error indicates a path collision.
func IsExists(err error) bool {
	return errors.Is(err, ErrTaskFileExists)
}

// IsParse checks if an error indicates a malformed document.
func IsParse(err error) bool {
	return errors.Is(err, ErrTaskFileParse)
}
