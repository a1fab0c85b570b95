// Package errors defines AppError, the coded error carried across the domain,
// infrastructure and interface layers of hbond-profiler.  The code decides the
// HTTP status and CLI exit message; the message and detail describe the case.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

const maxFrames = 32

// stack renders the calling goroutine's frames above skip, dropping runtime
// frames.
func stack(skip int) string {
	pcs := make([]uintptr, maxFrames)
	n := runtime.Callers(skip, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for n > 0 {
		f, more := frames.Next()
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is a coded error.  Two AppErrors match under errors.Is when their
// codes are equal, so package sentinels compare by code.
type AppError struct {
	Code    ErrorCode
	Message string
	Detail  string // frame ids, atom indices and the like
	Cause   error
	Stack   string // not part of Error()
}

// build is called directly by every exported constructor so the recorded
// stack starts at the constructor's caller.
func build(code ErrorCode, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause, Stack: stack(4)}
}

// Error renders "[code] message[: detail][: cause]".
func (e *AppError) Error() string {
	parts := []string{fmt.Sprintf("[%s] %s", e.Code, e.Message)}
	if e.Detail != "" {
		parts = append(parts, e.Detail)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *AppError) Unwrap() error { return e.Cause }

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t != nil && t.Code == e.Code
}

func (e *AppError) clone() *AppError {
	c := *e
	return &c
}

// WithDetail returns a copy carrying detail.  Nil stays nil.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	c := e.clone()
	c.Detail = detail
	return c
}

func (e *AppError) WithDetailf(format string, args ...interface{}) *AppError {
	return e.WithDetail(fmt.Sprintf(format, args...))
}

// WithCause returns a copy wrapping err.  Nil stays nil.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	c := e.clone()
	c.Cause = err
	return c
}

func New(code ErrorCode, message string) *AppError {
	return build(code, message, nil)
}

func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return build(code, fmt.Sprintf(format, args...), nil)
}

// Wrap attaches code and message to err and returns nil for a nil err.
// CodeUnknown inherits the code of the first AppError in err's chain.
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		code = GetCode(err)
	}
	return build(code, message, err)
}

func NotFound(message string) *AppError       { return build(CodeNotFound, message, nil) }
func InvalidParam(message string) *AppError   { return build(CodeInvalidParam, message, nil) }
func Internal(message string) *AppError       { return build(CodeInternal, message, nil) }
func NotImplemented(message string) *AppError { return build(CodeNotImplemented, message, nil) }

// IsCode reports whether any AppError in err's chain has code, not only the
// outermost one.
func IsCode(err error, code ErrorCode) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if ae, ok := err.(*AppError); ok && ae.Code == code {
			return true
		}
	}
	return false
}

func IsNotFound(err error) bool { return IsCode(err, CodeNotFound) }

// GetCode returns the code of the first AppError in err's chain: CodeOK for
// nil, CodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Is and As forward to the standard library for callers that import this
// package as "errors".
func Is(err, target error) bool             { return errors.Is(err, target) }
func As(err error, target interface{}) bool { return errors.As(err, target) }

//Personal.AI order the ending
