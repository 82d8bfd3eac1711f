package errors

import (
	"encoding/json"
)

// ValidationErr signals a malformed request - missing required fields,
// badly formatted values or an unsupported verb.
type ValidationErr struct {
	message string
}

func (e *ValidationErr) Error() string {
	return e.message
}

func (e *ValidationErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Message string `json:"message"`
	}{Message: e.message})
}

// NewValidationErr builds new ValidationErr
func NewValidationErr(msg string) *ValidationErr {
	return &ValidationErr{message: msg}
}

// NotFoundErr signals that the addressed customer does not exist.
type NotFoundErr struct {
	message string
}

func (e *NotFoundErr) Error() string {
	return e.message
}

func (e *NotFoundErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Message string `json:"message"`
	}{Message: e.message})
}

// NewNotFoundErr builds new NotFoundErr
func NewNotFoundErr(msg string) *NotFoundErr {
	return &NotFoundErr{message: msg}
}

// ConflictErr signals a duplicate identity - the customer name or a
// globally unique child identity is already claimed.
type ConflictErr struct {
	message string
}

func (e *ConflictErr) Error() string {
	return e.message
}

func (e *ConflictErr) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Message string `json:"message"`
	}{Message: e.message})
}

// NewConflictErr builds new ConflictErr
func NewConflictErr(msg string) *ConflictErr {
	return &ConflictErr{message: msg}
}
