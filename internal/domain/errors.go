package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeInternalError = "INTERNAL_ERROR"

	// Vector index lifecycle errors
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodePrecondition  = "PRECONDITION_ERROR"
	ErrCodePersistence   = "PERSISTENCE_ERROR"
)

// Validation errors
var (
	ErrUnsupportedFileType = NewDomainError(ErrCodeValidation, "unsupported file type")
	ErrEmptyDocument       = NewDomainError(ErrCodeValidation, "document contains no extractable text")
	ErrMissingFile         = NewDomainError(ErrCodeValidation, "missing uploaded file")
)

// Authentication errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid API key")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrSessionNotFound  = NewDomainError(ErrCodeNotFound, "session not found")
)

// Vector index lifecycle errors
var (
	// ErrNoSeedData is returned by LoadOrCreate when no index exists on disk
	// and no seed chunks were supplied to create one.
	ErrNoSeedData = NewDomainError(ErrCodeConfiguration, "no existing vector index and no data to create one")

	// ErrIndexNotLoaded is returned by AddDocuments when LoadOrCreate has not
	// been called on the manager yet.
	ErrIndexNotLoaded = NewDomainError(ErrCodePrecondition, "vector index not loaded, call LoadOrCreate first")
)

// NewPersistenceError wraps an I/O, serialization, or store failure touching
// the vector index or its sidecar metadata.
func NewPersistenceError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodePersistence, message, err)
}
