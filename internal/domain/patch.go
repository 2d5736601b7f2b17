package domain

import (
	"bytes"
	"encoding/json"
)

// Patch is a JSON field that distinguishes "absent" from "null" from a value.
// The zero value is absent.
type Patch[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Value[T any](v T) Patch[T] { return Patch[T]{Set: true, Value: v} }

func Null[T any]() Patch[T] { return Patch[T]{Set: true, Null: true} }

// UnmarshalJSON is only invoked for keys present in the document, which is what marks Set.
func (p *Patch[T]) UnmarshalJSON(b []byte) error {
	p.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		p.Null = true
		var zero T
		p.Value = zero
		return nil
	}
	p.Null = false
	return json.Unmarshal(b, &p.Value)
}

func (p Patch[T]) MarshalJSON() ([]byte, error) {
	if !p.Set || p.Null {
		return []byte("null"), nil
	}
	return json.Marshal(p.Value)
}

// Ptr resolves a set patch to the value to store: nil for null.
func (p Patch[T]) Ptr() *T {
	if !p.Set || p.Null {
		return nil
	}
	v := p.Value
	return &v
}

// HasValue reports a present, non-null value.
func (p Patch[T]) HasValue() bool { return p.Set && !p.Null }
