package checkout

import "errors"

var (
	// ErrEmptyCart means there is nothing to check out.
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")

	// ErrSubmissionInFlight rejects a re-entrant submit (e.g. a double click)
	// while a checkout attempt is already running.
	ErrSubmissionInFlight = errors.New("a checkout attempt is already in flight")

	// ErrOrderNotFound means no usable order record is stored.
	ErrOrderNotFound = errors.New("order not found")
)

// ValidationError carries field-level messages back to the form. It blocks
// the submission before any notification is attempted.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	return "customer details failed validation"
}

// IsValidation reports whether err is a field-validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
