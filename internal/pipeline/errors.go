package pipeline

import (
	"errors"
	"net/http"
)

// Error kinds reported to callers.
const (
	KindValidation = "validation"
	KindProcessing = "processing"
	KindInference  = "inference"
)

// Validation rules, also used as metric labels.
const (
	RuleExtension   = "extension"
	RuleContentType = "content_type"
	RuleSize        = "size"
)

const (
	processingMessage = "Could not process the image."
	inferenceMessage  = "Prediction failed."
)

// validationError signals a rejected upload (client fault). The message names
// the violated rule and is safe to show to callers.
type validationError struct {
	rule string
	msg  string
}

func (e validationError) Error() string   { return e.msg }
func (e validationError) StatusCode() int { return http.StatusBadRequest }
func (e validationError) Kind() string    { return KindValidation }

// Rule returns the violated rule (RuleExtension, RuleContentType, RuleSize).
func (e validationError) Rule() string { return e.rule }

// IsValidation reports whether err is an upload validation failure.
func IsValidation(err error) bool {
	var v validationError
	return errors.As(err, &v)
}

// ValidationRule returns the rule violated by err, or "" if err is not a
// validation error.
func ValidationRule(err error) string {
	var v validationError
	if errors.As(err, &v) {
		return v.rule
	}
	return ""
}

// processingError signals bytes that could not be turned into a tensor. The
// message is generic; the cause is kept for operators only.
type processingError struct{ cause error }

func (e processingError) Error() string   { return processingMessage }
func (e processingError) StatusCode() int { return http.StatusBadRequest }
func (e processingError) Kind() string    { return KindProcessing }
func (e processingError) Unwrap() error   { return e.cause }

// IsProcessing reports whether err is an image processing failure.
func IsProcessing(err error) bool {
	var p processingError
	return errors.As(err, &p)
}

// inferenceError signals a classifier fault or an unusable score vector
// (server fault).
type inferenceError struct{ cause error }

func (e inferenceError) Error() string   { return inferenceMessage }
func (e inferenceError) StatusCode() int { return http.StatusInternalServerError }
func (e inferenceError) Kind() string    { return KindInference }
func (e inferenceError) Unwrap() error   { return e.cause }

// IsInference reports whether err is a classifier or score fault.
func IsInference(err error) bool {
	var i inferenceError
	return errors.As(err, &i)
}

// Cause returns the internal cause of a processing or inference error, or err
// itself for any other error.
func Cause(err error) error {
	var p processingError
	if errors.As(err, &p) && p.cause != nil {
		return p.cause
	}
	var i inferenceError
	if errors.As(err, &i) && i.cause != nil {
		return i.cause
	}
	return err
}

// ErrorKind returns the kind of a pipeline error, or "" for foreign errors.
func ErrorKind(err error) string {
	switch {
	case IsValidation(err):
		return KindValidation
	case IsProcessing(err):
		return KindProcessing
	case IsInference(err):
		return KindInference
	}
	return ""
}
