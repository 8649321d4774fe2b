package repository

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a provider failure so callers can pick a log level.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable" // network error, timeout, 5xx, rate limit
	KindMalformed   ErrorKind = "malformed"   // payload did not decode
	KindNotFound    ErrorKind = "not_found"   // unknown symbol, empty series
)

// ProviderError wraps a failure from an external data source.
type ProviderError struct {
	Provider string
	Kind     ErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func Unavailable(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindUnavailable, Err: err}
}

func Malformed(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindMalformed, Err: err}
}

func NotFound(provider string, err error) error {
	return &ProviderError{Provider: provider, Kind: KindNotFound, Err: err}
}

// KindOf extracts the provider error kind; any other error counts as unavailable.
func KindOf(err error) ErrorKind {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnavailable
}

// ErrDocumentNotFound is returned by a DocumentStore that has nothing stored yet.
var ErrDocumentNotFound = errors.New("document not found")
