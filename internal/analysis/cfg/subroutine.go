package cfg

import (
	"fmt"
	"slices"

	"github.com/gnoverse/ccheck/internal/il"
)

// Kind is the variant of a subroutine.
type Kind int

const (
	MethodSubroutine Kind = iota
	RequiresSubroutine
	EnsuresSubroutine
	OldValueSubroutine
	FaultSubroutine
	FinallySubroutine
)

func (k Kind) String() string {
	switch k {
	case MethodSubroutine:
		return "method"
	case RequiresSubroutine:
		return "requires"
	case EnsuresSubroutine:
		return "ensures"
	case OldValueSubroutine:
		return "old"
	case FaultSubroutine:
		return "fault"
	case FinallySubroutine:
		return "finally"
	default:
		return "unknown"
	}
}

// Subroutine is a block graph with a unique entry and exit block.
// Subroutines are shared by pointer; identity is meaningful.
type Subroutine struct {
	id      int
	kind    Kind
	method  il.Method
	handler *il.Handler
	code    il.CodeProvider
	start   il.Label

	entry              *Block
	exit               *Block
	exceptionExit      *Block
	entryAfterRequires *Block

	blocks     []*Block
	blockStart map[il.Label]*Block
	succ       map[*Block][]Edge
	pred       map[*Block][]Edge
	edgeSubs   map[edgeKey][]EdgeSubroutine
	returns    []*Block

	// exception handling, method and fault/finally subroutines only
	protecting         map[*Block]*HandlerList
	currentProtecting  *HandlerList
	catchFilterHeaders map[*il.Handler]*Block
	faultFinally       map[*il.Handler]*Subroutine
	faultFinallyOrder  []*il.Handler

	// old-value regions
	beginOld *Block
	endOld   *Block

	// sites is the construction state; nil once committed
	sites     *subroutineBuilder
	committed bool
}

func newSubroutine(id int, kind Kind, m il.Method, code il.CodeProvider) *Subroutine {
	s := &Subroutine{
		id:                 id,
		kind:               kind,
		method:             m,
		code:               code,
		blockStart:         make(map[il.Label]*Block),
		succ:               make(map[*Block][]Edge),
		pred:               make(map[*Block][]Edge),
		edgeSubs:           make(map[edgeKey][]EdgeSubroutine),
		protecting:         make(map[*Block]*HandlerList),
		catchFilterHeaders: make(map[*il.Handler]*Block),
		faultFinally:       make(map[*il.Handler]*Subroutine),
	}
	s.entry = s.newBlock(EntryBlock)
	s.exit = s.newBlock(ExitBlock)
	s.exceptionExit = s.newBlock(CatchFilterEntry)
	return s
}

// newSubroutineAt creates a subroutine whose body starts at start and links
// the synthetic entry block to it.
func newSubroutineAt(id int, kind Kind, m il.Method, b *subroutineBuilder, start il.Label) *Subroutine {
	s := newSubroutine(id, kind, m, b.code)
	s.sites = b
	s.start = start
	s.entryAfterRequires = s.getTargetBlock(start)
	s.addSuccessor(s.entry, Entry, s.entryAfterRequires)
	return s
}

func (s *Subroutine) ID() int             { return s.id }
func (s *Subroutine) Kind() Kind          { return s.kind }
func (s *Subroutine) Method() il.Method   { return s.method }
func (s *Subroutine) Handler() *il.Handler { return s.handler }

// Code returns the code provider the subroutine's labels belong to.
func (s *Subroutine) Code() il.CodeProvider { return s.code }

func (s *Subroutine) IsMethod() bool   { return s.kind == MethodSubroutine }
func (s *Subroutine) IsRequires() bool { return s.kind == RequiresSubroutine }
func (s *Subroutine) IsEnsures() bool  { return s.kind == EnsuresSubroutine }
func (s *Subroutine) IsOldValue() bool { return s.kind == OldValueSubroutine }

// IsContract reports whether s is a requires or ensures subroutine.
func (s *Subroutine) IsContract() bool {
	return s.kind == RequiresSubroutine || s.kind == EnsuresSubroutine
}

// IsFaultFinally reports whether s is a fault or finally handler.
func (s *Subroutine) IsFaultFinally() bool {
	return s.kind == FaultSubroutine || s.kind == FinallySubroutine
}

// Committed reports whether construction of s is complete.
func (s *Subroutine) Committed() bool { return s.committed }

func (s *Subroutine) Entry() *Block         { return s.entry }
func (s *Subroutine) Exit() *Block          { return s.exit }
func (s *Subroutine) ExceptionExit() *Block { return s.exceptionExit }

// EntryAfterRequires is the first block of the body proper. It is nil for
// synthetic subroutines without code.
func (s *Subroutine) EntryAfterRequires() *Block { return s.entryAfterRequires }

// BeginOld and EndOld are the first and last blocks of an old-value region.
func (s *Subroutine) BeginOld() *Block { return s.beginOld }
func (s *Subroutine) EndOld() *Block   { return s.endOld }

// Blocks returns all blocks of s in creation order.
func (s *Subroutine) Blocks() []*Block { return s.blocks }

// Succs returns the outgoing edges of b.
func (s *Subroutine) Succs(b *Block) []Edge { return s.succ[b] }

// Preds returns the incoming edges of b.
func (s *Subroutine) Preds(b *Block) []Edge { return s.pred[b] }

// ReturnBlocks returns the blocks that end in a return, in discovery order.
func (s *Subroutine) ReturnBlocks() []*Block { return s.returns }

// BlockAt returns the block registered for a target label.
func (s *Subroutine) BlockAt(l il.Label) (*Block, bool) {
	b, ok := s.blockStart[l]
	return b, ok
}

// ProtectingHandlers returns the handlers whose try region contains b,
// innermost first.
func (s *Subroutine) ProtectingHandlers(b *Block) *HandlerList {
	return s.protecting[b]
}

// FaultFinallySubroutines returns the fault and finally handlers nested
// directly in s, in the order they were opened.
func (s *Subroutine) FaultFinallySubroutines() []*Subroutine {
	out := make([]*Subroutine, 0, len(s.faultFinallyOrder))
	for _, h := range s.faultFinallyOrder {
		out = append(out, s.faultFinally[h])
	}
	return out
}

// CatchFilterHeader returns the header block of a catch or filter handler.
func (s *Subroutine) CatchFilterHeader(h *il.Handler) (*Block, bool) {
	b, ok := s.catchFilterHeaders[h]
	return b, ok
}

// ExceptionHandlers returns the blocks control may reach when an exception
// escapes b: the headers of the protecting catch and filter handlers,
// innermost first, then the exception exit. A catch-all handler ends the
// search.
func (s *Subroutine) ExceptionHandlers(b *Block) []*Block {
	var out []*Block
	for l := s.protecting[b]; l != nil; l = l.Tail {
		h := l.Head
		if h.IsFaultOrFinally() {
			continue
		}
		out = append(out, s.catchFilterHeaders[h])
		if h.IsCatchAll() {
			return out
		}
	}
	return append(out, s.exceptionExit)
}

// EdgeSubroutines returns the subroutines run when control moves from
// from to to: the finally (and, on exception edges, fault) handlers of the
// try regions being left, outermost first, followed by the subroutines
// attached to the edge.
func (s *Subroutine) EdgeSubroutines(from, to *Block) []EdgeSubroutine {
	ordinary := s.edgeSubs[edgeKey{from, to}]
	l1, l2 := s.protecting[from], s.protecting[to]
	if l1 == l2 {
		return ordinary
	}

	exceptional := to.Kind == CatchFilterEntry
	var leaving []EdgeSubroutine
	n1, n2 := l1.Len(), l2.Len()
	for l1 != l2 {
		if n1 >= n2 {
			h := l1.Head
			if h.IsFaultOrFinally() && (!h.IsFault() || exceptional) {
				leaving = append(leaving, EdgeSubroutine{Tag: Finally, Subroutine: s.faultFinally[h]})
			}
			l1 = l1.Tail
			n1--
		} else {
			l2 = l2.Tail
			n2--
		}
	}

	out := make([]EdgeSubroutine, 0, len(leaving)+len(ordinary))
	for i := len(leaving) - 1; i >= 0; i-- {
		out = append(out, leaving[i])
	}
	return append(out, ordinary...)
}

// UsedSubroutines returns the distinct subroutines referenced by s through
// edges or handlers.
func (s *Subroutine) UsedSubroutines() []*Subroutine {
	var out []*Subroutine
	seen := map[*Subroutine]bool{s: true}
	add := func(sub *Subroutine) {
		if sub != nil && !seen[sub] {
			seen[sub] = true
			out = append(out, sub)
		}
	}
	for _, sub := range s.FaultFinallySubroutines() {
		add(sub)
	}
	for _, b := range s.blocks {
		for _, e := range s.succ[b] {
			for _, es := range s.edgeSubs[edgeKey{b, e.To}] {
				add(es.Subroutine)
			}
		}
	}
	return out
}

func (s *Subroutine) String() string {
	if s.method != "" {
		return fmt.Sprintf("SR%d %s %s", s.id, s.kind, s.method)
	}
	return fmt.Sprintf("SR%d %s", s.id, s.kind)
}

func (s *Subroutine) newBlock(kind BlockKind) *Block {
	b := &Block{Index: len(s.blocks), Kind: kind, sub: s}
	s.blocks = append(s.blocks, b)
	return b
}

// getBlock returns the block for l, allocating one unless l is a target
// label seen before.
func (s *Subroutine) getBlock(l il.Label) *Block {
	if b, ok := s.blockStart[l]; ok {
		return b
	}
	var b *Block
	if site, ok := s.sites.callSites[l]; ok {
		b = s.newBlock(CallBlock)
		b.CalledMethod = site.method
		b.Virtual = site.virtual
		b.IsNewObj = site.newObj
	} else {
		b = s.newBlock(PlainBlock)
	}
	if s.sites.IsTargetLabel(l) {
		s.blockStart[l] = b
	}
	return b
}

func (s *Subroutine) getTargetBlock(l il.Label) *Block {
	return s.getBlock(l)
}

func (s *Subroutine) newAssumeBlock(branch il.Label, sense EdgeTag) *Block {
	b := s.newBlock(AssumeBlock)
	b.BranchLabel = branch
	b.Sense = sense
	return b
}

func (s *Subroutine) addSuccessor(from *Block, tag EdgeTag, to *Block) {
	from.sealed = true
	e := Edge{From: from, To: to, Tag: tag}
	s.succ[from] = append(s.succ[from], e)
	s.pred[to] = append(s.pred[to], e)
}

// AddEdgeSubroutine attaches sub to the edge from -> to. A nil sub is
// ignored.
func (s *Subroutine) AddEdgeSubroutine(from, to *Block, sub *Subroutine, tag EdgeTag) {
	if sub == nil {
		return
	}
	k := edgeKey{from, to}
	s.edgeSubs[k] = append(s.edgeSubs[k], EdgeSubroutine{Tag: tag, Subroutine: sub})
}

func (s *Subroutine) addReturnBlock(b *Block) {
	s.returns = append(s.returns, b)
}

// createCatchFilterHeader returns the header block of a catch or filter
// handler starting at l.
func (s *Subroutine) createCatchFilterHeader(h *il.Handler, l il.Label) *Block {
	if b, ok := s.blockStart[l]; ok {
		return b
	}
	b := s.newBlock(CatchFilterEntry)
	b.Handler = h
	s.catchFilterHeaders[h] = b
	s.blockStart[l] = b
	return b
}

func (s *Subroutine) commit() {
	s.committed = true
	s.sites = nil
}

// EdgeSubroutinesWithin is EdgeSubroutines for an edge reached through the
// given chain of enclosing subroutines. Contracts that are s itself or
// already on the chain are dropped, so recursive contracts expand once.
func (s *Subroutine) EdgeSubroutinesWithin(from, to *Block, enclosing []*Subroutine) []EdgeSubroutine {
	all := s.EdgeSubroutines(from, to)
	out := all[:0:0]
	for _, es := range all {
		if es.Subroutine.IsContract() && (es.Subroutine == s || slices.Contains(enclosing, es.Subroutine)) {
			continue
		}
		out = append(out, es)
	}
	return out
}
