package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies contract failures.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindState
	KindValue
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindState:
		return "state"
	case KindValue:
		return "value"
	case KindExternal:
		return "external"
	default:
		return "unknown"
	}
}

// Error is a typed contract failure. Two errors match under errors.Is when
// their codes are equal, so a parametrised error matches its sentinel.
type Error struct {
	Kind   Kind
	Code   string
	Msg    string
	Fields map[string]string
}

// New declares a sentinel contract error.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Msg
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s (%s)", e.Msg, strings.Join(parts, ", "))
}

func (e *Error) Is(target error) bool {
	var other *Error
	if !stderrors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// With returns a copy of e carrying the supplied key/value pairs. Values are
// formatted with %v.
func (e *Error) With(kv ...interface{}) *Error {
	out := &Error{Kind: e.Kind, Code: e.Code, Msg: e.Msg, Fields: make(map[string]string, len(e.Fields)+len(kv)/2)}
	for k, v := range e.Fields {
		out.Fields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		out.Fields[fmt.Sprint(kv[i])] = fmt.Sprint(kv[i+1])
	}
	return out
}

// Wrapf returns a copy of e with an extra message suffix.
func (e *Error) Wrapf(format string, args ...interface{}) *Error {
	out := e.With()
	out.Msg = fmt.Sprintf("%s: %s", e.Msg, fmt.Sprintf(format, args...))
	return out
}

// As extracts a contract error from err.
func As(err error) (*Error, bool) {
	var ce *Error
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Shared failures used by every contract.
var (
	ErrUnauthorized   = New(KindAuthorization, "unauthorized", "unauthorized")
	ErrInvalidMessage = New(KindValidation, "invalid_message", "invalid message")
	ErrInvalidAddress = New(KindValidation, "invalid_address", "invalid address")
	ErrOverflow       = New(KindValue, "overflow", "arithmetic overflow")
	ErrNotFound       = New(KindState, "not_found", "not found")
)
