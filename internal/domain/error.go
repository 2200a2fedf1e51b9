package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the machine-readable kind reported in tool error payloads.
type ErrorCode string

const (
	CodeMissingField     ErrorCode = "MISSING_FIELD"
	CodeInvalidEnum      ErrorCode = "INVALID_ENUM"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeWriteFailed      ErrorCode = "WRITE_FAILED"
	CodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodePermissionDenied ErrorCode = "PERMISSION_DENIED"
	CodeInternal         ErrorCode = "INTERNAL"
)

var (
	ErrToolNotFound       = errors.New("tool not found")
	ErrToolRegistered     = errors.New("tool already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidArguments   = errors.New("invalid arguments")
	ErrStoreUnavailable   = errors.New("comment store unavailable")
	ErrRegistryNotReady   = errors.New("registry not ready")
	ErrInitAlreadyHandled = errors.New("init signal already fired")
)

// sentinelCodes maps the package sentinels onto error kinds for errors
// that never passed through E.
var sentinelCodes = []struct {
	err  error
	code ErrorCode
}{
	{ErrInvalidArguments, CodeInvalidArgument},
	{ErrToolNotFound, CodeNotFound},
	{ErrToolRegistered, CodeAlreadyExists},
	{ErrPermissionDenied, CodePermissionDenied},
	{ErrStoreUnavailable, CodeUnavailable},
	{ErrRegistryNotReady, CodeUnavailable},
}

// Error is a coded failure. Op names the operation that produced it and
// Meta carries structured details surfaced in the error payload.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Meta    map[string]string
}

// Error renders "op: CODE: message", dropping empty parts.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	if e.Op != "" {
		parts = append(parts, e.Op)
	}
	parts = append(parts, string(e.Code))
	if msg := e.text(); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, ": ")
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *Error) text() string {
	if e.Message != "" || e.Cause == nil {
		return e.Message
	}
	return e.Cause.Error()
}

// E builds a coded error. An empty msg falls back to the cause's text.
func E(code ErrorCode, op, msg string, cause error) *Error {
	err := &Error{Code: code, Op: op, Message: msg, Cause: cause}
	err.Message = err.text()
	return err
}

// WithMeta attaches a metadata pair and returns the receiver.
func (e *Error) WithMeta(key, value string) *Error {
	if e == nil {
		return nil
	}
	if e.Meta == nil {
		e.Meta = make(map[string]string, 1)
	}
	e.Meta[key] = value
	return e
}

// Wrap returns err as a coded error. A coded error anywhere in the chain
// keeps its code; op is only filled in when the inner error has none.
func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var inner *Error
	if !errors.As(err, &inner) {
		return E(code, op, "", err)
	}
	if inner.Op != "" || op == "" {
		return inner
	}
	scoped := *inner
	scoped.Op = op
	return &scoped
}

// CodeFrom reports the kind of err, looking first for a coded error and
// then for a known sentinel.
func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var coded *Error
	if errors.As(err, &coded) && coded.Code != "" {
		return coded.Code, true
	}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			return s.code, true
		}
	}
	return "", false
}

// MissingFieldError reports required specification fields that are absent.
func MissingFieldError(op string, fields ...string) *Error {
	list := strings.Join(fields, ", ")
	return E(CodeMissingField, op, "missing required parameters: "+list, nil).WithMeta("fields", list)
}

// InvalidEnumError reports a value outside an enumerated set.
func InvalidEnumError(op, field, value string, allowed []string) *Error {
	msg := fmt.Sprintf("invalid %s %q: must be one of %s", field, value, strings.Join(allowed, ", "))
	return E(CodeInvalidEnum, op, msg, nil).WithMeta("field", field)
}
