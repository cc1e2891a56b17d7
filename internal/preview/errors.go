package preview

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyURL is returned for an empty input; no request is issued.
	ErrEmptyURL = errors.New("empty url")
	// ErrClosed is returned by operations on a destroyed card.
	ErrClosed = errors.New("card closed")
	// ErrAlreadyRegistered is returned when a tag is defined twice.
	ErrAlreadyRegistered = errors.New("tag already registered")
	// ErrInvalidTag is returned for tag names that are not valid custom element names.
	ErrInvalidTag = errors.New("invalid tag name")

	ErrNetwork    = errors.New("network failure")
	ErrHTTPStatus = errors.New("unsuccessful http status")
	ErrDecode     = errors.New("decode failure")
)

// ErrorKind classifies fetch failures.
type ErrorKind int

const (
	KindNetwork ErrorKind = iota
	KindHTTP
	KindDecode
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// FetchError describes a failed metadata request.
type FetchError struct {
	Kind   ErrorKind
	URL    string
	Status int // set for KindHTTP
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindHTTP:
		return fmt.Sprintf("metadata for %s: response status %d", e.URL, e.Status)
	default:
		return fmt.Sprintf("metadata for %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is lets errors.Is match the kind sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrHTTPStatus:
		return e.Kind == KindHTTP
	case ErrDecode:
		return e.Kind == KindDecode
	}
	return false
}

// KindOf returns the kind of a fetch error and false for any other error.
func KindOf(err error) (ErrorKind, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// Outcome labels a settlement error for metrics and statistics:
// "ok", "network", "http", "decode" or "unknown".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k, ok := KindOf(err); ok {
		return k.String()
	}
	return "unknown"
}
