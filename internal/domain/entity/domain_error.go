package entity

// DomainError is a domain validation failure. It carries a stable machine
// readable code alongside the human readable message.
type DomainError struct {
	message string
	code    string
}

// NewDomainError creates a new DomainError.
func NewDomainError(message, code string) *DomainError {
	return &DomainError{message: message, code: code}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	return e.message
}

// Code returns the stable error code.
func (e *DomainError) Code() string {
	return e.code
}
