package explore

// Expander performs a depth-first pre-order walk over a tree that unfolds
// lazily from a root source.
//
// Each element is visited first; when the walk moves on, the element's
// children are pushed on an explicit stack and visited next. The element
// itself stays the current position of its own level until its whole
// subtree is exhausted, so the levels below the top of the stack always hold
// the ancestry of the current element.
type Expander[T any] struct {
	src    Source[T]
	expand func(T) Source[T]
	stack  []Source[T]
}

// ExpandAll walks src and, recursively, the children produced by expand.
// expand may return an invalid source for leaf elements.
func ExpandAll[T any](src Source[T], expand func(T) Source[T]) *Expander[T] {
	return &Expander[T]{src: src, expand: expand}
}

func (e *Expander[T]) top() Source[T] {
	if n := len(e.stack); n > 0 {
		return e.stack[n-1]
	}
	return e.src
}

func (e *Expander[T]) Valid() bool { return e.top().Valid() }

func (e *Expander[T]) Current() T { return e.top().Current() }

// Depth returns the nesting level of the current element; 0 for elements
// of the root source.
func (e *Expander[T]) Depth() int { return len(e.stack) }

// Advance descends into the children of the current element, or moves to
// the next sibling when there are none, popping exhausted levels.
func (e *Expander[T]) Advance() {
	if !e.Valid() {
		return
	}
	if children := e.expand(e.Current()); children != nil && children.Valid() {
		e.stack = append(e.stack, children)
		return
	}
	e.top().Advance()
	e.dropExhausted()
}

func (e *Expander[T]) dropExhausted() {
	for len(e.stack) > 0 && !e.top().Valid() {
		e.stack[len(e.stack)-1] = nil
		e.stack = e.stack[:len(e.stack)-1]
		// the parent was retained while its subtree was walked
		e.top().Advance()
	}
}

// Source returns the root source.
func (e *Expander[T]) Source() Source[T] { return e.src }
