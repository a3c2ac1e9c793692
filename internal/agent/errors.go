package agent

// Error reports that the agent could not produce a reply for a turn.
// Message is safe to log; callers render a generic localized apology to
// the end user instead of echoing it.
type Error struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes the underlying transport or protocol failure, if any.
func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(message string, cause error) *Error {
	return &Error{Message: message, Cause: cause}
}
