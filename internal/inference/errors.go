package inference

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the generation pipeline
type Kind int

const (
	KindUnknown Kind = iota
	// KindUpstream is a network fault, a timeout, a non-success status or a body that is not JSON
	KindUpstream
	// KindNoCandidates is a response without any candidate
	KindNoCandidates
	// KindDecode is a candidate without text, or embedded text that is not a JSON object
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindUpstream:
		return "upstream"
	case KindNoCandidates:
		return "no_candidates"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned by Client implementations
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given kind
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in the chain of err
func KindOf(err error) Kind {
	var inferenceErr *Error
	if errors.As(err, &inferenceErr) {
		return inferenceErr.Kind
	}
	return KindUnknown
}
