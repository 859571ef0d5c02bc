package model

import "fmt"

// Partial wraps one evaluator's output for one listing: either a payload or
// an error message, never both. It is never mutated after creation.
type Partial[T any] struct {
	Value T      `json:"value,omitzero"`
	Err   string `json:"error,omitempty"`
}

// Ok returns a successful Partial carrying v.
func Ok[T any](v T) Partial[T] {
	return Partial[T]{Value: v}
}

// Fail returns a failed Partial with the given message.
func Fail[T any](msg string) Partial[T] {
	return Partial[T]{Err: msg}
}

// Failf returns a failed Partial with a formatted message.
func Failf[T any](format string, args ...any) Partial[T] {
	return Partial[T]{Err: fmt.Sprintf(format, args...)}
}

// OK reports whether the Partial carries a payload.
func (p Partial[T]) OK() bool {
	return p.Err == ""
}
