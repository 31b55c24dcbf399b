package gateway

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrProviderAuth matches failures caused by a missing or rejected credential.
	ErrProviderAuth = errors.New("provider auth error")
	// ErrProviderHTTP matches non-2xx upstream responses.
	ErrProviderHTTP = errors.New("provider http error")
	// ErrProviderParse matches responses whose shape did not carry text.
	ErrProviderParse = errors.New("provider parse error")
	// ErrProviderTransport matches network level failures.
	ErrProviderTransport = errors.New("provider transport error")
	// ErrAllProvidersFailed matches an exhausted fallback chain.
	ErrAllProvidersFailed = errors.New("all providers failed")
	// ErrNoProviders is the last error of a chain that had nothing to try.
	ErrNoProviders = errors.New("no providers configured")
	// ErrMissingCredential is reported when a provider outside the chain is called directly.
	ErrMissingCredential = errors.New("credential not configured")
)

// Kind classifies a provider failure.
type Kind string

const (
	KindAuth      Kind = "auth"
	KindHTTP      Kind = "http"
	KindParse     Kind = "parse"
	KindTransport Kind = "transport"
)

func (k Kind) sentinel() error {
	switch k {
	case KindAuth:
		return ErrProviderAuth
	case KindHTTP:
		return ErrProviderHTTP
	case KindParse:
		return ErrProviderParse
	default:
		return ErrProviderTransport
	}
}

// ProviderError is a single provider failure.
type ProviderError struct {
	Provider ProviderID
	Kind     Kind
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s error", e.Provider, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the kind sentinels.
func (e *ProviderError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newProviderError(id ProviderID, kind Kind, status int, err error) *ProviderError {
	return &ProviderError{Provider: id, Kind: kind, Status: status, Err: err}
}

// Attempt records one step of a fallback walk.
type Attempt struct {
	Provider ProviderID
	Err      error
	Duration time.Duration
}

// AllProvidersFailedError is returned once every provider in the chain failed.
type AllProvidersFailedError struct {
	Attempts []Attempt
	Last     error
}

func (e *AllProvidersFailedError) Error() string {
	if e.Last == nil {
		return ErrAllProvidersFailed.Error()
	}
	return fmt.Sprintf("%s after %d attempt(s): %v", ErrAllProvidersFailed, len(e.Attempts), e.Last)
}

func (e *AllProvidersFailedError) Unwrap() error {
	return e.Last
}

// Is lets errors.Is match ErrAllProvidersFailed.
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// outcome is the metrics label for a call result.
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return string(pe.Kind)
	}
	return string(KindTransport)
}
