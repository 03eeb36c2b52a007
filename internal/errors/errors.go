package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrCompilation is returned when a NatEx pattern cannot be compiled
	ErrCompilation = errors.New("pattern compilation failed")

	// ErrAnnotationIncomplete is returned when an annotator's token stream cannot be
	// turned into a trustworthy representation
	ErrAnnotationIncomplete = errors.New("annotation incomplete")

	// ErrSentenceNotFound is returned when a stored sentence is not found
	ErrSentenceNotFound = errors.New("sentence not found")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownAnnotator is returned when no annotator is registered under a name
	ErrUnknownAnnotator = errors.New("unknown annotator")

	// ErrAnnotatorUnavailable is returned when an annotator backend cannot serve a request
	ErrAnnotatorUnavailable = errors.New("annotator unavailable")
)

// CompilationError describes why a pattern could not be turned into a regular expression.
type CompilationError struct {
	Pattern  string
	Position int // byte offset into Pattern, -1 when not tied to a position
	Reason   string
	Err      error
}

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("cannot compile pattern %q: %s", e.Pattern, e.Reason)
	if e.Position >= 0 {
		msg = fmt.Sprintf("cannot compile pattern %q at offset %d: %s", e.Pattern, e.Position, e.Reason)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}

// NewCompilationError creates a new CompilationError
func NewCompilationError(pattern string, position int, reason string, cause ...error) *CompilationError {
	err := &CompilationError{Pattern: pattern, Position: position, Reason: reason}
	if len(cause) > 0 {
		err.Err = cause[0]
	}
	return err
}

// AnnotationIncompleteError reports a token stream that breaks the builder's invariants.
type AnnotationIncompleteError struct {
	TokenIndex int
	Literal    string
	Reason     string
}

func (e *AnnotationIncompleteError) Error() string {
	if e.Literal != "" {
		return fmt.Sprintf("annotation incomplete at token %d (%q): %s", e.TokenIndex, e.Literal, e.Reason)
	}
	return fmt.Sprintf("annotation incomplete at token %d: %s", e.TokenIndex, e.Reason)
}

func (e *AnnotationIncompleteError) Is(target error) bool {
	return target == ErrAnnotationIncomplete
}

// NewAnnotationIncompleteError creates a new AnnotationIncompleteError
func NewAnnotationIncompleteError(tokenIndex int, literal, reason string) *AnnotationIncompleteError {
	return &AnnotationIncompleteError{TokenIndex: tokenIndex, Literal: literal, Reason: reason}
}

// SentenceNotFoundError represents a sentence not found error with context
type SentenceNotFoundError struct {
	SentenceID string
}

func (e *SentenceNotFoundError) Error() string {
	return fmt.Sprintf("sentence with ID '%s' not found", e.SentenceID)
}

func (e *SentenceNotFoundError) Is(target error) bool {
	return target == ErrSentenceNotFound
}

// NewSentenceNotFoundError creates a new SentenceNotFoundError
func NewSentenceNotFoundError(sentenceID string) *SentenceNotFoundError {
	return &SentenceNotFoundError{SentenceID: sentenceID}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// UnknownAnnotatorError names an annotator that is not registered
type UnknownAnnotatorError struct {
	Name string
}

func (e *UnknownAnnotatorError) Error() string {
	return fmt.Sprintf("annotator named '%s' is not registered", e.Name)
}

func (e *UnknownAnnotatorError) Is(target error) bool {
	return target == ErrUnknownAnnotator
}

// NewUnknownAnnotatorError creates a new UnknownAnnotatorError
func NewUnknownAnnotatorError(name string) *UnknownAnnotatorError {
	return &UnknownAnnotatorError{Name: name}
}

// AnnotatorUnavailableError wraps a failure of an annotator backend
type AnnotatorUnavailableError struct {
	Name string
	Err  error
}

func (e *AnnotatorUnavailableError) Error() string {
	return fmt.Sprintf("annotator '%s' unavailable: %v", e.Name, e.Err)
}

func (e *AnnotatorUnavailableError) Is(target error) bool {
	return target == ErrAnnotatorUnavailable
}

func (e *AnnotatorUnavailableError) Unwrap() error {
	return e.Err
}

// NewAnnotatorUnavailableError creates a new AnnotatorUnavailableError
func NewAnnotatorUnavailableError(name string, err error) *AnnotatorUnavailableError {
	return &AnnotatorUnavailableError{Name: name, Err: err}
}
