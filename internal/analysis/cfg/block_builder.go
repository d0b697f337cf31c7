package cfg

import "github.com/gnoverse/ccheck/internal/il"

// blockBuilder is the second construction pass. It grows the current block
// one label at a time and wires the edges of control transfers.
type blockBuilder struct {
	b       *subroutineBuilder
	link    linker
	current *Block
}

// buildBlocks walks the stream from start and returns the last open block,
// or nil when no block was ever opened.
func buildBlocks(b *subroutineBuilder, link linker, start il.Label) (*Block, error) {
	bb := &blockBuilder{b: b, link: link}

	l := start
	for {
		if b.IsBlockStart(l) {
			block, err := link.recordNewBlock(l, bb.current)
			if err != nil {
				return nil, err
			}
			bb.current = block
		}
		if bb.current == nil {
			return nil, inconsistent(l, "instruction outside of any block")
		}
		sealed, err := bb.dispatch(l, b.code.Decode(l))
		if err != nil {
			return nil, err
		}
		if sealed {
			bb.current = nil
		}

		next, ok := b.code.Next(l)
		if !ok {
			break
		}
		l = next
	}

	if bb.current != nil {
		sub := link.current()
		sub.addSuccessor(bb.current, FallThroughReturn, sub.exit)
		sub.addReturnBlock(bb.current)
	}
	if err := link.finish(); err != nil {
		return nil, err
	}
	return bb.current, nil
}

// dispatch appends pc to the current block and reports whether the block
// is sealed.
func (bb *blockBuilder) dispatch(pc il.Label, ins il.Instruction) (bool, error) {
	sub := bb.link.current()
	cur := bb.current

	switch ins.Op {
	case il.OpNop:
		return false, nil

	case il.OpBranch:
		if err := cur.add(pc); err != nil {
			return false, err
		}
		sub.addSuccessor(cur, Branch, sub.getTargetBlock(ins.Target))
		return true, nil

	case il.OpBranchCond, il.OpBranchTrue:
		return false, bb.condBranch(sub, pc, ins.Target, True)

	case il.OpBranchFalse:
		return false, bb.condBranch(sub, pc, ins.Target, False)

	case il.OpSwitch:
		return false, bb.switchBranch(sub, pc, ins.Cases)

	case il.OpThrow, il.OpRethrow:
		return true, cur.add(pc)

	case il.OpEndFinally:
		if err := cur.add(pc); err != nil {
			return false, err
		}
		sub.addSuccessor(cur, EndSubroutine, sub.exit)
		return true, nil

	case il.OpReturn:
		if err := cur.add(pc); err != nil {
			return false, err
		}
		sub.addSuccessor(cur, Return, sub.exit)
		sub.addReturnBlock(cur)
		return true, nil

	case il.OpEndOld:
		if err := cur.add(pc); err != nil {
			return false, err
		}
		sub.addSuccessor(cur, EndOld, sub.exit)
		return false, nil

	case il.OpLdfld:
		if sub.IsMethod() && bb.b.mc.meta.IsPropertyGetter(sub.method) {
			bb.b.mc.addReads(sub.method, ins.Field)
		}
		return false, cur.add(pc)

	case il.OpStfld:
		if sub.IsMethod() && bb.b.mc.meta.IsPropertySetter(sub.method) {
			bb.b.mc.addModifies(sub.method, ins.Field)
		}
		return false, cur.add(pc)

	default:
		return false, cur.add(pc)
	}
}

// condBranch seals the current block and splits it into two assume blocks.
// The one tagged taken falls through to the target, the other becomes the
// current block and continues with the next label.
func (bb *blockBuilder) condBranch(sub *Subroutine, pc, target il.Label, taken EdgeTag) error {
	cur := bb.current
	if err := cur.add(pc); err != nil {
		return err
	}

	jump := sub.newAssumeBlock(pc, taken)
	bb.link.sameInfoAs(jump, cur)
	sub.addSuccessor(cur, taken, jump)
	sub.addSuccessor(jump, FallThrough, sub.getTargetBlock(target))

	stay := sub.newAssumeBlock(pc, taken.Negate())
	bb.link.sameInfoAs(stay, cur)
	sub.addSuccessor(cur, taken.Negate(), stay)

	bb.current = stay
	return nil
}

// switchBranch adds one assume block per case falling through to the case
// target, and a default assume block that becomes the current block.
func (bb *blockBuilder) switchBranch(sub *Subroutine, pc il.Label, cases []il.Label) error {
	cur := bb.current
	if err := cur.add(pc); err != nil {
		return err
	}

	for i, target := range cases {
		c := sub.newBlock(SwitchCaseBlock)
		c.BranchLabel = pc
		c.CaseIndex = i
		bb.link.sameInfoAs(c, cur)
		sub.addSuccessor(cur, Switch, c)
		sub.addSuccessor(c, FallThrough, sub.getTargetBlock(target))
	}

	def := sub.newBlock(SwitchDefaultBlock)
	def.BranchLabel = pc
	def.CaseCount = len(cases)
	bb.link.sameInfoAs(def, cur)
	sub.addSuccessor(cur, Default, def)

	bb.current = def
	return nil
}
