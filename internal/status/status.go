package status

import "errors"

var (
	ErrTicketNotFound = errors.New("ticket: ticket code not found")
	ErrEventNotFound  = errors.New("event: event not found")

	// ErrGatewayTimeout is retryable; ErrGatewayFailure is not.
	ErrGatewayTimeout = errors.New("gateway: verification timed out")
	ErrGatewayFailure = errors.New("gateway: verification request failed")
)

// ValidationError rejects a request with a human-readable reason and
// the offending figures for client display.
type ValidationError struct {
	Message string
	Details map[string]any
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidationError(message string, details map[string]any) *ValidationError {
	return &ValidationError{Message: message, Details: details}
}

// AsValidation unwraps err into a *ValidationError when possible.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
