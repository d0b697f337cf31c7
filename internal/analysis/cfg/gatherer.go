package cfg

import "github.com/gnoverse/ccheck/internal/il"

// gatherBlockStarts walks the stream from entry once and registers every
// label that must start a block, every call site and every old-value
// region boundary. A branch or switch target outside the stream is an
// inconsistency.
func gatherBlockStarts(b *subroutineBuilder, link linker, entry il.Label) error {
	var jumps []il.Label
	current := entry
	for {
		b.labels.Add(current)
		ins := b.code.Decode(current)
		jumps = append(jumps, jumpTargets(ins)...)

		endsBlock := gatherInstruction(b, link, current, ins)
		next, ok := b.code.Next(current)
		if !ok {
			b.end = current + 1
			break
		}
		if endsBlock {
			b.AddBlockStart(next)
		}
		current = next
	}

	for _, l := range jumps {
		if !b.known(l) {
			return inconsistent(l, "unknown label")
		}
	}
	return nil
}

func jumpTargets(ins il.Instruction) []il.Label {
	switch ins.Op {
	case il.OpBranch, il.OpBranchCond, il.OpBranchTrue, il.OpBranchFalse:
		return []il.Label{ins.Target}
	case il.OpSwitch:
		return ins.Cases
	default:
		return nil
	}
}

// gatherInstruction reports whether the label after pc must start a block.
func gatherInstruction(b *subroutineBuilder, link linker, pc il.Label, ins il.Instruction) bool {
	switch ins.Op {
	case il.OpBranch, il.OpBranchCond, il.OpBranchTrue, il.OpBranchFalse:
		b.AddTargetLabel(ins.Target)
		return true

	case il.OpSwitch:
		for _, target := range ins.Cases {
			b.AddTargetLabel(target)
		}
		return true

	case il.OpThrow, il.OpRethrow, il.OpEndFinally, il.OpReturn:
		return true

	case il.OpCall:
		b.recordCallSite(pc, ins.Method, ins.Virtual, false)
		return true

	case il.OpConstrainedCall:
		b.recordCallSite(pc, ins.Method, true, false)
		return true

	case il.OpNewObj:
		b.recordCallSite(pc, ins.Method, false, true)
		return true

	case il.OpBeginOld:
		b.AddTargetLabel(pc)
		link.beginOldHook(pc)
		return false

	case il.OpEndOld:
		link.endOldHook(pc)
		return true

	default:
		return false
	}
}
