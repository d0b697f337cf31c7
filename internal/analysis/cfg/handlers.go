package cfg

import "github.com/gnoverse/ccheck/internal/il"

// HandlerList is an immutable cons list of exception handlers, innermost
// first. The nil list is empty.
type HandlerList struct {
	Head *il.Handler
	Tail *HandlerList
}

// Cons returns a new list with h in front of l.
func (l *HandlerList) Cons(h *il.Handler) *HandlerList {
	return &HandlerList{Head: h, Tail: l}
}

// Len returns the number of handlers in l.
func (l *HandlerList) Len() int {
	n := 0
	for ; l != nil; l = l.Tail {
		n++
	}
	return n
}

// subroutineStack is the stack of subroutines under construction.
type subroutineStack struct {
	head *Subroutine
	tail *subroutineStack
}

func (s *subroutineStack) push(sub *Subroutine) *subroutineStack {
	return &subroutineStack{head: sub, tail: s}
}
