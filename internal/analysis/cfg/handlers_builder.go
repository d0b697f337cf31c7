package cfg

import "github.com/gnoverse/ccheck/internal/il"

// handlersBuilder builds method bodies. Fault and finally handlers become
// nested subroutines kept on a stack while their region is open. Catch and
// filter handlers become header blocks in the enclosing subroutine.
type handlersBuilder struct {
	*subroutineBuilder

	method il.Method
	stack  *subroutineStack

	// handlers by region boundary; tryStart is consumed as a stack, the
	// others as queues
	tryStart          map[il.Label][]*il.Handler
	tryEnd            map[il.Label][]*il.Handler
	handlerEnd        map[il.Label][]*il.Handler
	handlerStartingAt map[il.Label]*il.Handler

	// fallOff holds the last block of a try region that runs into its
	// fault or finally handler instead of leaving it with a branch
	fallOff map[*il.Handler]*Block
}

func newHandlersBuilder(mc *MethodCache, m il.Method, code il.MethodCodeProvider, entry il.Label) (*handlersBuilder, error) {
	b := &handlersBuilder{
		subroutineBuilder: newSubroutineBuilder(mc, code, entry),
		method:            m,
		tryStart:          make(map[il.Label][]*il.Handler),
		tryEnd:            make(map[il.Label][]*il.Handler),
		handlerEnd:        make(map[il.Label][]*il.Handler),
		handlerStartingAt: make(map[il.Label]*il.Handler),
		fallOff:           make(map[*il.Handler]*Block),
	}
	handlers := code.TryBlocks(m)
	if err := b.computeTryBlockStartAndEndInfo(handlers); err != nil {
		return nil, err
	}
	if err := gatherBlockStarts(b.subroutineBuilder, b, entry); err != nil {
		return nil, err
	}
	if err := b.checkHandlerLabels(handlers); err != nil {
		return nil, err
	}
	return b, nil
}

// checkHandlerLabels rejects regions that name labels outside the stream.
func (b *handlersBuilder) checkHandlerLabels(handlers []*il.Handler) error {
	for _, h := range handlers {
		starts := []il.Label{h.TryStart, h.HandlerStart}
		if h.IsFilter() {
			starts = append(starts, h.FilterStart)
		}
		for _, l := range starts {
			if !b.known(l) {
				return inconsistent(l, "unknown label")
			}
		}
		for _, l := range []il.Label{h.TryEnd, h.HandlerEnd} {
			if !b.knownEnd(l) {
				return inconsistent(l, "unknown label")
			}
		}
	}
	return nil
}

func (b *handlersBuilder) computeTryBlockStartAndEndInfo(handlers []*il.Handler) error {
	for _, h := range handlers {
		if h.IsFilter() {
			b.AddTargetLabel(h.FilterStart)
		}
		b.AddTargetLabel(h.HandlerStart)
		b.AddTargetLabel(h.HandlerEnd)

		b.tryStart[h.TryStart] = append(b.tryStart[h.TryStart], h)
		b.AddTargetLabel(h.TryStart)
		b.tryEnd[h.TryEnd] = append(b.tryEnd[h.TryEnd], h)
		b.AddTargetLabel(h.TryEnd)
		if h.IsFaultOrFinally() {
			b.handlerEnd[h.HandlerEnd] = append(b.handlerEnd[h.HandlerEnd], h)
		}

		if other, ok := b.handlerStartingAt[h.HandlerStart]; ok && other != h {
			return inconsistent(h.HandlerStart, "two handlers start at the same label")
		}
		b.handlerStartingAt[h.HandlerStart] = h
	}
	return nil
}

func (b *handlersBuilder) build(sub *Subroutine, entry il.Label) error {
	b.stack = b.stack.push(sub)
	_, err := buildBlocks(b.subroutineBuilder, b, entry)
	return err
}

func (b *handlersBuilder) current() *Subroutine {
	return b.stack.head
}

func (b *handlersBuilder) recordNewBlock(l il.Label, previous *Block) (*Block, error) {
	for range b.handlerEnd[l] {
		if b.stack.tail == nil {
			return nil, inconsistent(l, "handler end without an open handler")
		}
		h := b.stack.head.handler
		b.stack.head.commit()
		b.stack = b.stack.tail
		previous = b.fallOff[h]
	}
	// the try continues after its handler, through the finally edge
	if previous != nil && previous.Subroutine() != b.current() {
		previous = nil
	}

	sub := b.current()
	for _, h := range b.tryEnd[l] {
		if sub.currentProtecting == nil || sub.currentProtecting.Head != h {
			return nil, inconsistent(l, "try region closed out of order")
		}
		sub.currentProtecting = sub.currentProtecting.Tail
	}

	var block *Block
	if h, ok := b.handlerStartingAt[l]; ok {
		if h.IsFaultOrFinally() {
			kind := FinallySubroutine
			if h.IsFault() {
				kind = FaultSubroutine
			}
			handler := newSubroutineAt(b.mc.nextID(), kind, b.method, b.subroutineBuilder, l)
			handler.handler = h
			sub.faultFinally[h] = handler
			sub.faultFinallyOrder = append(sub.faultFinallyOrder, h)
			b.stack = b.stack.push(handler)
			if previous != nil {
				b.fallOff[h] = previous
			}
			previous = nil
		} else {
			block = sub.createCatchFilterHeader(h, l)
		}
	}

	if block == nil {
		var err error
		if block, err = b.linkBlock(b.current(), b, l, previous); err != nil {
			return nil, err
		}
	}

	sub = b.current()
	starting := b.tryStart[l]
	for i := len(starting) - 1; i >= 0; i-- {
		sub.currentProtecting = sub.currentProtecting.Cons(starting[i])
	}
	sub.protecting[block] = sub.currentProtecting
	return block, nil
}

func (b *handlersBuilder) sameInfoAs(ab, other *Block) {
	sub := b.current()
	if l, ok := sub.protecting[other]; ok {
		sub.protecting[ab] = l
	}
}

func (b *handlersBuilder) beginOldHook(il.Label) {}

func (b *handlersBuilder) endOldHook(il.Label) {}

func (b *handlersBuilder) finish() error {
	for b.stack.tail != nil {
		b.stack.head.commit()
		b.stack = b.stack.tail
	}
	if p := b.stack.head.currentProtecting; p != nil {
		return inconsistent(p.Head.TryStart, "%s: try region of %s handler is never closed", b.method, p.Head.Kind)
	}
	return nil
}
