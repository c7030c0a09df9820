package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNilRecord indicates an update was requested without a record.
	ErrNilRecord = errors.New("record is nil")

	// ErrInvalidAgency indicates 001b is missing or not a number.
	ErrInvalidAgency = errors.New("invalid agency id")

	// ErrStructuralConflict indicates the record would break the repository
	// structure: self parent, enrichment with parent, common record over
	// existing locals, missing parent or empty content.
	ErrStructuralConflict = errors.New("structural conflict")

	// ErrReferentialIntegrity indicates a deletion was refused because other
	// records or holdings still depend on the record.
	ErrReferentialIntegrity = errors.New("referential integrity")

	// ErrEncoding indicates record content could not be encoded or decoded.
	ErrEncoding = errors.New("encoding failed")

	// ErrNotReady indicates the service has not finished warming up.
	ErrNotReady = errors.New("service not ready")
)

// UpdateError is a user-facing failure raised while decomposing a record.
// Kind is one of the sentinel errors above so callers can use errors.Is.
type UpdateError struct {
	// Kind classifies the failure.
	Kind error

	// Key is the message catalogue key, e.g. "enrichment.has.parent".
	Key string

	// Message is the localised, human-readable description.
	Message string

	// Blocking lists the records preventing a deletion, when known.
	Blocking []RecordID

	// Agencies lists the agencies preventing the operation, when known.
	Agencies []int

	// Err is the underlying cause, if any.
	Err error
}

// NewUpdateError creates an UpdateError with a message rendered from the catalogue.
func NewUpdateError(kind error, key string, cause error, args ...any) *UpdateError {
	return &UpdateError{
		Kind:    kind,
		Key:     key,
		Message: Message(key, args...),
		Err:     cause,
	}
}

// Error returns the localised message.
func (e *UpdateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprint(e.Kind)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *UpdateError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
