package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")
	ErrRecordNotFound  = errors.New("record not found")

	// Validation errors
	ErrValidation       = errors.New("validation failed")
	ErrMissingField     = errors.New("required field is missing")
	ErrNoDirections     = errors.New("at least one direction is required")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrInvalidFilter    = errors.New("invalid filter expression")

	// Pipeline errors
	ErrGeneration       = errors.New("answer generation failed")
	ErrNoStructureFound = errors.New("no structured recommendation found")
	ErrParse            = errors.New("structured output could not be parsed")
	ErrExternalService  = errors.New("external service failure")
	ErrRunAborted       = errors.New("run aborted")

	// Publishing errors
	ErrPublishDisabled = errors.New("publishing is disabled")
)

// ValidationError names the offending field of a rejected request.
type ValidationError struct {
	Field string
	Err   error
}

func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// GenerationError is returned when the completion service fails or answers with nothing.
type GenerationError struct {
	Direction string
	Err       error
}

func (e *GenerationError) Error() string {
	if e.Direction == "" {
		return fmt.Sprintf("generation: %v", e.Err)
	}
	return fmt.Sprintf("generation for direction %q: %v", e.Direction, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// ParseError keeps the raw model output that could not be decoded.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse structured output: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ExternalServiceError wraps failures of the vector store or other remote dependencies.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

func (e *ExternalServiceError) Is(target error) bool {
	return target == ErrExternalService
}

// RunError is returned by an aborted run and names the direction that failed.
type RunError struct {
	Direction string
	Stage     Stage
	Err       error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("run aborted at direction %q (%s): %v", e.Direction, e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func (e *RunError) Is(target error) bool {
	return target == ErrRunAborted
}
