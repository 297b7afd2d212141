package workflows

import "errors"

var (
	// ErrDocumentNotFound indicates no design document could be resolved,
	// neither from an explicit path nor from the docs directory scan.
	ErrDocumentNotFound = errors.New("design document not found")

	// ErrMissingStepResult indicates a recording action ran before the
	// delegate step it reads from produced a result.
	ErrMissingStepResult = errors.New("source step result not found")
)

// IsDocumentNotFound checks if an error indicates the design document
// could not be resolved.
func IsDocumentNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}
