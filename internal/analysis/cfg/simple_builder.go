package cfg

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/gnoverse/ccheck/internal/il"
)

// simpleBuilder builds contract subroutines. It supports one level of
// old-value regions: while a region is open, blocks go to a separate
// OldValue subroutine that is attached to the enclosing subroutine by an
// Old edge around the region.
type simpleBuilder struct {
	*subroutineBuilder

	sub        *Subroutine
	beginOld   mapset.Set[il.Label]
	endOld     mapset.Set[il.Label]
	old        *Subroutine
	priorToOld *Block
}

func newSimpleBuilder(mc *MethodCache, code il.CodeProvider, entry il.Label) (*simpleBuilder, error) {
	b := &simpleBuilder{
		subroutineBuilder: newSubroutineBuilder(mc, code, entry),
		beginOld:          mapset.NewThreadUnsafeSet[il.Label](),
		endOld:            mapset.NewThreadUnsafeSet[il.Label](),
	}
	if err := gatherBlockStarts(b.subroutineBuilder, b, entry); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *simpleBuilder) build(sub *Subroutine, entry il.Label) error {
	b.sub = sub
	_, err := buildBlocks(b.subroutineBuilder, b, entry)
	return err
}

func (b *simpleBuilder) current() *Subroutine {
	if b.old != nil {
		return b.old
	}
	return b.sub
}

func (b *simpleBuilder) recordNewBlock(l il.Label, previous *Block) (*Block, error) {
	if previous != nil {
		if last, ok := previous.LastLabel(); ok && b.endOld.Contains(last) {
			return b.closeOld(l, previous)
		}
	}
	if !b.beginOld.Contains(l) {
		return b.linkBlock(b.current(), b, l, previous)
	}

	if b.old != nil {
		return nil, inconsistent(l, "old-value region opened inside another one")
	}
	b.old = newSubroutineAt(b.mc.nextID(), OldValueSubroutine, b.sub.method, b.subroutineBuilder, l)
	b.priorToOld = previous
	if previous == nil && l == b.sub.start {
		b.priorToOld = b.sub.entryAfterRequires
	}
	block, err := b.linkBlock(b.old, b, l, nil)
	if err != nil {
		return nil, err
	}
	b.old.beginOld = block
	return block, nil
}

func (b *simpleBuilder) closeOld(l il.Label, last *Block) (*Block, error) {
	old := b.old
	if old == nil {
		return nil, inconsistent(l, "old-value region closed without being opened")
	}
	old.endOld = last
	old.commit()
	b.old = nil

	block, err := b.linkBlock(b.sub, b, l, b.priorToOld)
	if err != nil {
		return nil, err
	}
	if b.priorToOld != nil {
		b.sub.AddEdgeSubroutine(b.priorToOld, block, old, Old)
	}
	b.priorToOld = nil
	return block, nil
}

func (b *simpleBuilder) sameInfoAs(_, _ *Block) {}

func (b *simpleBuilder) beginOldHook(l il.Label) {
	b.beginOld.Add(l)
}

func (b *simpleBuilder) endOldHook(l il.Label) {
	b.endOld.Add(l)
}

func (b *simpleBuilder) finish() error {
	if b.old != nil {
		return inconsistent(b.old.start, "old-value region is never closed")
	}
	return nil
}
