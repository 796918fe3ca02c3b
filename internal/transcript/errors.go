package transcript

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type ErrorType int

const (
	ErrMetadataFetch ErrorType = iota
	ErrNoCaptionTrack
	ErrDownload
	ErrDecode
	ErrUsage
	ErrUnknown
)

func (t ErrorType) String() string {
	switch t {
	case ErrMetadataFetch:
		return "MetadataFetch"
	case ErrNoCaptionTrack:
		return "NoCaptionTrack"
	case ErrDownload:
		return "Download"
	case ErrDecode:
		return "Decode"
	case ErrUsage:
		return "Usage"
	default:
		return "Unknown"
	}
}

// Error is the typed failure of one transcript request.
type Error struct {
	Type    ErrorType
	Message string
	Context map[string]any
	Cause   error
}

func NewError(errorType ErrorType, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Context: make(map[string]any),
	}
}

func WrapError(err error, errorType ErrorType, message string) *Error {
	e := NewError(errorType, message)
	e.Cause = err
	return e
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Type, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, "context: "+strings.Join(ctxParts, ", "))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

func IsErrorType(err error, errorType ErrorType) bool {
	return err != nil && TypeOf(err) == errorType
}

// TypeOf returns the ErrorType carried by err, or ErrUnknown.
func TypeOf(err error) ErrorType {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.Type
	}
	return ErrUnknown
}

// SafeExecute runs fn and turns a panic into an ErrUnknown error.
func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(ErrUnknown, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
