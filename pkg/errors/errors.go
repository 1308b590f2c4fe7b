package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors
type ErrorCode string

const (
	ErrCodeTimeFormat    ErrorCode = "INVALID_TIME_FORMAT"
	ErrCodeOutOfRange    ErrorCode = "SEGMENT_OUT_OF_RANGE"
	ErrCodeOverlap       ErrorCode = "OVERLAPPING_SEGMENTS"
	ErrCodeDuplicateName ErrorCode = "DUPLICATE_SEGMENT_NAME"
	ErrCodeSampleFormat  ErrorCode = "UNSUPPORTED_SAMPLE_FORMAT"
	ErrCodeAnalysis      ErrorCode = "ANALYSIS_FAILURE"
	ErrCodeBusy          ErrorCode = "BUSY"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
	ErrCodeTimeout       ErrorCode = "TIMEOUT_ERROR"
	ErrCodeCanceled      ErrorCode = "CANCELED_ERROR"
)

// SplitError is the base structured error
type SplitError struct {
	Code    ErrorCode
	Message string
	Cause   error
	Fields  map[string]interface{}
}

func (e *SplitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *SplitError) Unwrap() error {
	return e.Cause
}

func (e *SplitError) ErrorCode() ErrorCode {
	return e.Code
}

// TimeFormatError reports a time expression the parser cannot read
type TimeFormatError struct {
	SplitError
	Input string
}

func NewTimeFormatError(input, message string) *TimeFormatError {
	return &TimeFormatError{
		SplitError: SplitError{
			Code:    ErrCodeTimeFormat,
			Message: message,
		},
		Input: input,
	}
}

func (e *TimeFormatError) Error() string {
	return fmt.Sprintf("[%s] %q: %s", e.Code, e.Input, e.Message)
}

// RangeError reports a segment that falls outside the buffer
type RangeError struct {
	SplitError
	Name        string
	StartFrame  int
	EndFrame    int
	TotalFrames int
}

func NewRangeError(name string, start, end, total int) *RangeError {
	return &RangeError{
		SplitError: SplitError{
			Code:    ErrCodeOutOfRange,
			Message: "segment outside buffer range",
		},
		Name:        name,
		StartFrame:  start,
		EndFrame:    end,
		TotalFrames: total,
	}
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("[%s] segment %q [%d,%d) outside buffer of %d frames",
		e.Code, e.Name, e.StartFrame, e.EndFrame, e.TotalFrames)
}

// OverlapError reports two segments claiming the same frames
type OverlapError struct {
	SplitError
	First  string
	Second string
}

func NewOverlapError(first, second string) *OverlapError {
	return &OverlapError{
		SplitError: SplitError{
			Code:    ErrCodeOverlap,
			Message: "segments overlap",
		},
		First:  first,
		Second: second,
	}
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("[%s] segment %q overlaps %q", e.Code, e.Second, e.First)
}

// DuplicateNameError reports a segment name used more than once in a plan
type DuplicateNameError struct {
	SplitError
	Name string
}

func NewDuplicateNameError(name string) *DuplicateNameError {
	return &DuplicateNameError{
		SplitError: SplitError{
			Code:    ErrCodeDuplicateName,
			Message: "duplicate segment name",
		},
		Name: name,
	}
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("[%s] segment name %q used more than once", e.Code, e.Name)
}

// SampleFormatError reports a buffer format the engine cannot process
type SampleFormatError struct {
	SplitError
	Format string
}

func NewSampleFormatError(format string) *SampleFormatError {
	return &SampleFormatError{
		SplitError: SplitError{
			Code:    ErrCodeSampleFormat,
			Message: "unsupported sample format",
		},
		Format: format,
	}
}

func (e *SampleFormatError) Error() string {
	return fmt.Sprintf("[%s] %s: %q", e.Code, e.Message, e.Format)
}

// AnalysisError reports a buffer the analyzer cannot measure
type AnalysisError struct {
	SplitError
	Reason string
}

func NewAnalysisError(reason string, cause error) *AnalysisError {
	return &AnalysisError{
		SplitError: SplitError{
			Code:    ErrCodeAnalysis,
			Message: "analysis failed",
			Cause:   cause,
		},
		Reason: reason,
	}
}

func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %s: %v", e.Code, e.Message, e.Reason, e.Cause)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Reason)
}

// BusyError reports an analysis pool with no queue capacity left
type BusyError struct {
	SplitError
	Capacity int
}

func NewBusyError(capacity int) *BusyError {
	return &BusyError{
		SplitError: SplitError{
			Code:    ErrCodeBusy,
			Message: "analysis pool at capacity",
		},
		Capacity: capacity,
	}
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("[%s] %s (%d queued)", e.Code, e.Message, e.Capacity)
}

// NewTimeoutError wraps a deadline hit during one operation
func NewTimeoutError(op string, cause error) *SplitError {
	return &SplitError{
		Code:    ErrCodeTimeout,
		Message: op + " timed out",
		Cause:   cause,
	}
}

// NewCanceledError wraps a context cancellation
func NewCanceledError(op string, cause error) *SplitError {
	return &SplitError{
		Code:    ErrCodeCanceled,
		Message: op + " canceled",
		Cause:   cause,
	}
}

// ValidationError represents input validation failure
type ValidationError struct {
	SplitError
	Field string
	Value interface{}
}

func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{
		SplitError: SplitError{
			Code:    ErrCodeValidation,
			Message: message,
		},
		Field: field,
		Value: value,
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] field=%s value=%v: %s", e.Code, e.Field, e.Value, e.Message)
}

// Is enables errors.Is checks
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As enables errors.As checks
func As[T error](err error) (T, bool) {
	var target T
	ok := errors.As(err, &target)
	return target, ok
}

type coded interface {
	ErrorCode() ErrorCode
}

// CodeOf extracts the ErrorCode from anywhere in the chain, or "" when the
// chain carries no structured error.
func CodeOf(err error) ErrorCode {
	var c coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// HasCode reports whether any error in the chain (including aggregated
// multi-error branches) carries the code.
func HasCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	if c, ok := err.(coded); ok && c.ErrorCode() == code {
		return true
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return HasCode(u.Unwrap(), code)
	case interface{ Unwrap() []error }:
		for _, nested := range u.Unwrap() {
			if HasCode(nested, code) {
				return true
			}
		}
	}
	return false
}
