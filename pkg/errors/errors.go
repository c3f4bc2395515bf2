package errors

import (
	"errors"
	"fmt"

	"github.com/kubev2v/logql-transpiler/pkg/logql"
)

// IsParseError checks if the error is a grammar error returned by logql.Parse.
func IsParseError(err error) bool {
	var e logql.ParseError
	return errors.As(err, &e)
}

// MacroResolutionError indicates a user macro could not be expanded.
type MacroResolutionError struct {
	Name   string
	Reason string
}

func NewMacroResolutionError(name, reason string) *MacroResolutionError {
	return &MacroResolutionError{Name: name, Reason: reason}
}

func (e *MacroResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve macro %s: %s", e.Name, e.Reason)
}

// IsMacroResolutionError checks if the error is a MacroResolutionError.
func IsMacroResolutionError(err error) bool {
	var e *MacroResolutionError
	return errors.As(err, &e)
}

// UnsupportedConstructError indicates a grammar rule the compiler refuses to handle.
type UnsupportedConstructError struct {
	Rule   string
	Reason string
}

func NewUnsupportedConstructError(rule, reason string) *UnsupportedConstructError {
	return &UnsupportedConstructError{Rule: rule, Reason: reason}
}

// NewTailNotSupportedError is returned when a tail query contains an aggregation or a macro.
func NewTailNotSupportedError(rule string) *UnsupportedConstructError {
	return NewUnsupportedConstructError(rule, fmt.Sprintf("%s is not supported. Only raw logs are supported", rule))
}

func (e *UnsupportedConstructError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s is not supported", e.Rule)
	}
	return e.Reason
}

func IsUnsupportedConstructError(err error) bool {
	var e *UnsupportedConstructError
	return errors.As(err, &e)
}

// UnsupportedOperatorError indicates a registry has no entry for the requested name.
type UnsupportedOperatorError struct {
	Kind string
	Name string
}

func NewUnsupportedOperatorError(kind, name string) *UnsupportedOperatorError {
	return &UnsupportedOperatorError{Kind: kind, Name: name}
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported %s: %s", e.Kind, e.Name)
}

func IsUnsupportedOperatorError(err error) bool {
	var e *UnsupportedOperatorError
	return errors.As(err, &e)
}

// InvalidExpressionError indicates a syntactically valid value that cannot be used,
// such as a malformed regular expression or an inverted time range.
type InvalidExpressionError struct {
	What  string
	Value string
	Err   error
}

func NewInvalidExpressionError(what, value string, err error) *InvalidExpressionError {
	return &InvalidExpressionError{What: what, Value: value, Err: err}
}

func (e *InvalidExpressionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invalid %s %q", e.What, e.Value)
	}
	return fmt.Sprintf("invalid %s %q: %v", e.What, e.Value, e.Err)
}

func (e *InvalidExpressionError) Unwrap() error {
	return e.Err
}

func IsInvalidExpressionError(err error) bool {
	var e *InvalidExpressionError
	return errors.As(err, &e)
}

// BatchTooLargeError indicates a batch request with more queries than allowed.
type BatchTooLargeError struct {
	Size int
	Max  int
}

func NewBatchTooLargeError(size, max int) *BatchTooLargeError {
	return &BatchTooLargeError{Size: size, Max: max}
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d queries exceeds the maximum of %d", e.Size, e.Max)
}

func IsBatchTooLargeError(err error) bool {
	var e *BatchTooLargeError
	return errors.As(err, &e)
}

// IsUserError reports whether err was caused by the query itself and not by the server.
func IsUserError(err error) bool {
	return IsParseError(err) ||
		IsMacroResolutionError(err) ||
		IsUnsupportedConstructError(err) ||
		IsUnsupportedOperatorError(err) ||
		IsInvalidExpressionError(err) ||
		IsBatchTooLargeError(err)
}
