package Models

import (
	"errors"
	"fmt"
)

// UpstreamErrorKind classifies a failed call to either external API.
// The adapter that made the call attaches the kind from the upstream's
// structured error code, so nothing downstream pattern-matches error text.
type UpstreamErrorKind int

const (
	UpstreamGeneric UpstreamErrorKind = iota
	UpstreamPermission
	UpstreamAuth
	UpstreamRateLimit
)

func (k UpstreamErrorKind) String() string {
	switch k {
	case UpstreamPermission:
		return "permission"
	case UpstreamAuth:
		return "auth"
	case UpstreamRateLimit:
		return "rate_limit"
	default:
		return "generic"
	}
}

// UpstreamError wraps a failure from the messaging platform or the
// completion API. Code is the upstream's own error code when it has one
// (e.g. "not_in_channel", "missing_scope").
type UpstreamError struct {
	Kind UpstreamErrorKind
	Op   string
	Code string
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Op, e.Code, e.Kind)
	}
	return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Kind)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func NewUpstreamError(kind UpstreamErrorKind, op, code string, err error) *UpstreamError {
	return &UpstreamError{Kind: kind, Op: op, Code: code, Err: err}
}

// NoContentError means there was nothing to summarize: an empty window,
// an empty thread, or a message without text. Not a failure.
type NoContentError struct {
	Reason string
}

func (e *NoContentError) Error() string {
	return "no content to summarize: " + e.Reason
}

func IsNoContent(err error) bool {
	var nc *NoContentError
	return errors.As(err, &nc)
}
