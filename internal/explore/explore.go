// Package explore provides lazy pull-based iteration.
//
// A Source is a cursor: it is positioned on its current element until
// Advance is called, and can be queried any number of times in between.
// Combinators wrap a Source into another Source, so a processing pipeline
// is a chain of cursors where each stage is a valid iterator on its own.
// Nothing is computed before an element is pulled.
//
// Sources are not safe for concurrent use.
package explore

import (
	"errors"
	"iter"
	"strings"
)

// ErrExhausted is the panic value raised by Current on an exhausted source.
var ErrExhausted = errors.New("explore: iteration exhausted")

// Source is a pull iterator positioned on its current element.
type Source[T any] interface {
	// Valid reports whether Current may be called.
	Valid() bool
	// Current returns the element at the current position.
	// Panics with ErrExhausted when !Valid().
	Current() T
	// Advance moves to the next element. No-op when exhausted.
	Advance()
}

type sliceSource[T any] struct {
	items []T
	pos   int
}

// Slice iterates over items. The slice is not copied.
func Slice[T any](items []T) Source[T] {
	return &sliceSource[T]{items: items}
}

// Single yields exactly one element.
func Single[T any](v T) Source[T] {
	return &sliceSource[T]{items: []T{v}}
}

// Empty yields nothing.
func Empty[T any]() Source[T] {
	return &sliceSource[T]{}
}

func (s *sliceSource[T]) Valid() bool { return s.pos < len(s.items) }

func (s *sliceSource[T]) Current() T {
	if !s.Valid() {
		panic(ErrExhausted)
	}
	return s.items[s.pos]
}

func (s *sliceSource[T]) Advance() {
	if s.Valid() {
		s.pos++
	}
}

type numbers struct {
	curr, end int64
}

// Numbers yields the integers from, from+1, ..., end-1.
func Numbers(from, end int64) Source[int64] {
	return &numbers{curr: from, end: end}
}

func (n *numbers) Valid() bool { return n.curr < n.end }

func (n *numbers) Current() int64 {
	if !n.Valid() {
		panic(ErrExhausted)
	}
	return n.curr
}

func (n *numbers) Advance() {
	if n.Valid() {
		n.curr++
	}
}

// Transformer maps each element of a source. The mapped value is computed
// on first access and cached until the source advances, so repeated calls
// to Current observe the same value.
type Transformer[T, U any] struct {
	src    Source[T]
	fn     func(T) U
	cached bool
	val    U
}

// Transform lazily applies fn to every element of src.
func Transform[T, U any](src Source[T], fn func(T) U) *Transformer[T, U] {
	return &Transformer[T, U]{src: src, fn: fn}
}

func (t *Transformer[T, U]) Valid() bool { return t.src.Valid() }

func (t *Transformer[T, U]) Current() U {
	if !t.cached {
		t.val = t.fn(t.src.Current())
		t.cached = true
	}
	return t.val
}

func (t *Transformer[T, U]) Advance() {
	t.src.Advance()
	var zero U
	t.val, t.cached = zero, false
}

// Source returns the wrapped source.
func (t *Transformer[T, U]) Source() Source[T] { return t.src }

type filter[T any] struct {
	src  Source[T]
	pred func(T) bool
}

// Filter yields the elements of src satisfying pred.
func Filter[T any](src Source[T], pred func(T) bool) Source[T] {
	f := &filter[T]{src: src, pred: pred}
	f.skip()
	return f
}

func (f *filter[T]) skip() {
	for f.src.Valid() && !f.pred(f.src.Current()) {
		f.src.Advance()
	}
}

func (f *filter[T]) Valid() bool { return f.src.Valid() }
func (f *filter[T]) Current() T { return f.src.Current() }

func (f *filter[T]) Advance() {
	f.src.Advance()
	f.skip()
}

type take[T any] struct {
	src  Source[T]
	left int
}

// Take yields at most n elements of src.
func Take[T any](src Source[T], n int) Source[T] {
	return &take[T]{src: src, left: n}
}

func (t *take[T]) Valid() bool { return t.left > 0 && t.src.Valid() }

func (t *take[T]) Current() T {
	if t.left <= 0 {
		panic(ErrExhausted)
	}
	return t.src.Current()
}

func (t *take[T]) Advance() {
	if t.Valid() {
		t.left--
		t.src.Advance()
	}
}

// All adapts a source for use with range. Ranging consumes the source.
func All[T any](src Source[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for ; src.Valid(); src.Advance() {
			if !yield(src.Current()) {
				return
			}
		}
	}
}

// Collect drains src into a slice.
func Collect[T any](src Source[T]) []T {
	var out []T
	for v := range All(src) {
		out = append(out, v)
	}
	return out
}

// Count drains src and returns the number of elements seen.
func Count[T any](src Source[T]) int {
	n := 0
	for ; src.Valid(); src.Advance() {
		n++
	}
	return n
}

// Materialise drains src, rendering each element with format and joining
// the results with sep.
func Materialise[T any](src Source[T], sep string, format func(T) string) string {
	var parts []string
	for v := range All(src) {
		parts = append(parts, format(v))
	}
	return strings.Join(parts, sep)
}
