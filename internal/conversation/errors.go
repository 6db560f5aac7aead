package conversation

import "errors"

// Sentinel errors returned by the orchestrator.
var (
	ErrEmptyMessage   = errors.New("conversation: message cannot be empty")
	ErrUnknownSession = errors.New("conversation: unknown session")
)

// ValidationError reports a rejected handoff field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
