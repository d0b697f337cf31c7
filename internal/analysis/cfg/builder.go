package cfg

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/gnoverse/ccheck/internal/il"
)

// linker is implemented by the subroutine builders. The block builder calls
// it at every block start.
type linker interface {
	// current returns the subroutine new blocks are allocated in.
	current() *Subroutine
	// recordNewBlock links the block starting at l after previous.
	recordNewBlock(l il.Label, previous *Block) (*Block, error)
	// sameInfoAs gives a synthetic block the bookkeeping of other.
	sameInfoAs(ab, other *Block)
	beginOldHook(l il.Label)
	endOldHook(l il.Label)
	// finish runs after the last label was processed.
	finish() error
}

type callSite struct {
	method  il.Method
	virtual bool
	newObj  bool
}

// subroutineBuilder holds the construction state shared by all subroutines
// built from one code provider.
type subroutineBuilder struct {
	mc   *MethodCache
	code il.CodeProvider

	blockStarts  mapset.Set[il.Label]
	targetLabels mapset.Set[il.Label]
	callSites    map[il.Label]callSite

	// labels of the stream and the label one past its last instruction
	labels mapset.Set[il.Label]
	end    il.Label
}

func newSubroutineBuilder(mc *MethodCache, code il.CodeProvider, entry il.Label) *subroutineBuilder {
	b := &subroutineBuilder{
		mc:           mc,
		code:         code,
		blockStarts:  mapset.NewThreadUnsafeSet[il.Label](),
		targetLabels: mapset.NewThreadUnsafeSet[il.Label](),
		callSites:    make(map[il.Label]callSite),
		labels:       mapset.NewThreadUnsafeSet[il.Label](),
	}
	b.AddTargetLabel(entry)
	return b
}

// AddTargetLabel marks l as a branch target. Target labels also start blocks.
func (b *subroutineBuilder) AddTargetLabel(l il.Label) {
	b.AddBlockStart(l)
	b.targetLabels.Add(l)
}

// AddBlockStart marks l as the first label of a block.
func (b *subroutineBuilder) AddBlockStart(l il.Label) {
	b.blockStarts.Add(l)
}

func (b *subroutineBuilder) IsBlockStart(l il.Label) bool {
	return b.blockStarts.Contains(l)
}

func (b *subroutineBuilder) IsTargetLabel(l il.Label) bool {
	return b.targetLabels.Contains(l)
}

// known reports whether l labels an instruction of the stream.
func (b *subroutineBuilder) known(l il.Label) bool {
	return b.labels.Contains(l)
}

// knownEnd is known for exclusive region ends, which may also name the
// label past the last instruction.
func (b *subroutineBuilder) knownEnd(l il.Label) bool {
	return b.known(l) || l == b.end
}

func (b *subroutineBuilder) recordCallSite(l il.Label, m il.Method, virtual, newObj bool) {
	b.AddBlockStart(l)
	b.callSites[l] = callSite{method: m, virtual: virtual, newObj: newObj}
}

// linkBlock is the base linking step: allocate the block for l in sub and
// connect it to previous. Two adjacent call sites get an empty block in
// between so that one call's postcondition edge and the next call's
// precondition edge never share an edge.
func (b *subroutineBuilder) linkBlock(sub *Subroutine, link linker, l il.Label, previous *Block) (*Block, error) {
	block := sub.getBlock(l)
	if previous == nil {
		return block, nil
	}

	newBlock, beforeBlock := block, previous
	if block.IsCall() && previous.IsCall() {
		ab := sub.newBlock(PlainBlock)
		link.sameInfoAs(ab, previous)
		newBlock, beforeBlock = ab, ab
		sub.addSuccessor(previous, FallThrough, ab)
		sub.addSuccessor(ab, FallThrough, block)
	} else {
		sub.addSuccessor(previous, FallThrough, block)
	}

	if err := b.insertPostconditionEdges(sub, previous, newBlock); err != nil {
		return nil, err
	}
	if err := b.insertPreconditionEdges(sub, beforeBlock, block); err != nil {
		return nil, err
	}
	return block, nil
}

func (b *subroutineBuilder) insertPreconditionEdges(sub *Subroutine, previous, block *Block) error {
	if !block.IsCall() || sub.IsContract() || sub.IsOldValue() {
		return nil
	}
	meta := b.mc.meta
	if sub.IsMethod() && meta.IsConstructor(sub.method) &&
		meta.IsPropertySetter(block.CalledMethod) && meta.IsAutoPropertyMember(block.CalledMethod) {
		return nil
	}

	requires, err := b.mc.GetRequires(block.CalledMethod)
	if err != nil {
		return err
	}
	tag := BeforeCall
	if block.IsNewObj {
		tag = BeforeNewObj
	}
	sub.AddEdgeSubroutine(previous, block, requires, tag)
	return nil
}

func (b *subroutineBuilder) insertPostconditionEdges(sub *Subroutine, previous, newBlock *Block) error {
	if !previous.IsCall() {
		return nil
	}
	meta := b.mc.meta
	if sub.IsMethod() && meta.IsConstructor(sub.method) &&
		meta.IsPropertyGetter(previous.CalledMethod) && meta.IsAutoPropertyMember(previous.CalledMethod) {
		return nil
	}

	ensures, err := b.mc.GetEnsures(previous.CalledMethod)
	if err != nil {
		return err
	}
	tag := AfterCall
	if previous.IsNewObj {
		tag = AfterNewObj
	}
	sub.AddEdgeSubroutine(previous, newBlock, ensures, tag)
	return nil
}
