package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeProtocolUnavailable ErrorCode = "PROTOCOL_UNAVAILABLE"
	CodeMalformedProtocol   ErrorCode = "MALFORMED_PROTOCOL"
	CodeMalformedRecord     ErrorCode = "MALFORMED_RECORD"
	CodeInvalidArgument     ErrorCode = "INVALID_ARGUMENT"
	CodeInternal            ErrorCode = "INTERNAL"
)

var (
	ErrCommandUnavailable = errors.New("command tldr output unavailable")
	ErrExecutableNotFound = errors.New("executable not found")
	ErrArchiveClosed      = errors.New("report archive is closed")
)

// Error is a coded failure. Line and Content locate the offending
// protocol text when the failure came from parsing.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Line    int
	Content string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
		if e.Content != "" {
			msg = fmt.Sprintf("%s: %q", msg, e.Content)
		}
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

// AtLine builds a coded error pinned to a 1-based protocol line.
func AtLine(code ErrorCode, op string, line int, content, msg string, cause error) *Error {
	err := E(code, op, msg, cause)
	err.Line = line
	err.Content = content
	return err
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
			Line:    existing.Line,
			Content: existing.Content,
		}
	}
	return E(code, op, "", err)
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrExecutableNotFound):
		return CodeProtocolUnavailable, true
	default:
		return "", false
	}
}
