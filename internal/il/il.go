package il

import (
	"fmt"

	"github.com/gnoverse/ccheck/internal/minilogic"
)

// Label identifies a program point within one code provider.
type Label int

func (l Label) String() string {
	return fmt.Sprintf("L%d", l)
}

// Method identifies a method by its full name, e.g. "A.M".
type Method string

// Field identifies a field by its full name.
type Field string

// Type identifies a type by its full name.
type Type string

// Op is the kind of an instruction.
type Op int

const (
	OpNop Op = iota
	OpBranch
	OpBranchCond  // branch when the relational Cond holds
	OpBranchTrue  // branch when Cond is non-zero
	OpBranchFalse // branch when Cond is zero
	OpSwitch
	OpReturn
	OpThrow
	OpRethrow
	OpEndFinally
	OpCall
	OpConstrainedCall
	OpNewObj
	OpBeginOld
	OpEndOld
	OpLdfld
	OpStfld
	OpAssign
	OpAssert
	OpAssume
	OpRequires
	OpEnsures
)

var opNames = [...]string{
	OpNop:             "nop",
	OpBranch:          "br",
	OpBranchCond:      "brcond",
	OpBranchTrue:      "brtrue",
	OpBranchFalse:     "brfalse",
	OpSwitch:          "switch",
	OpReturn:          "ret",
	OpThrow:           "throw",
	OpRethrow:         "rethrow",
	OpEndFinally:      "endfinally",
	OpCall:            "call",
	OpConstrainedCall: "constrained.callvirt",
	OpNewObj:          "newobj",
	OpBeginOld:        "beginold",
	OpEndOld:          "endold",
	OpLdfld:           "ldfld",
	OpStfld:           "stfld",
	OpAssign:          "assign",
	OpAssert:          "assert",
	OpAssume:          "assume",
	OpRequires:        "requires",
	OpEnsures:         "ensures",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return "?"
}

// ParseOp returns the Op spelled name.
func ParseOp(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return Op(op), true
		}
	}
	return 0, false
}

// IsConditionalBranch reports whether op branches on a condition.
func (op Op) IsConditionalBranch() bool {
	return op == OpBranchCond || op == OpBranchTrue || op == OpBranchFalse
}

// IsCall reports whether op transfers control to another method.
func (op Op) IsCall() bool {
	return op == OpCall || op == OpConstrainedCall || op == OpNewObj
}

// Instruction is one decoded instruction. Only the fields relevant to Op
// are set.
type Instruction struct {
	Op Op

	// Target is the branch target.
	Target Label
	// Cases holds switch targets, indexed by case value.
	Cases []Label

	// Method is the callee of a call or the constructor of newobj.
	Method  Method
	Virtual bool

	// Field is the field read or written by ldfld and stfld.
	Field Field

	// Dest names the variable written by assign, ldfld, call and newobj.
	Dest string

	// Cond is the branch condition, switch selector, assigned value, or
	// asserted/assumed/contract condition.
	Cond minilogic.Expr

	// Tag qualifies assumptions, e.g. "user" for source-level assumptions.
	Tag string
}

func (ins Instruction) String() string {
	switch ins.Op {
	case OpBranch:
		return fmt.Sprintf("br %s", ins.Target)
	case OpBranchCond, OpBranchTrue, OpBranchFalse:
		return fmt.Sprintf("%s %s, %s", ins.Op, ins.Cond, ins.Target)
	case OpSwitch:
		return fmt.Sprintf("switch %s %v", ins.Cond, ins.Cases)
	case OpCall, OpConstrainedCall, OpNewObj:
		s := fmt.Sprintf("%s %s", ins.Op, ins.Method)
		if ins.Virtual {
			s += " (virtual)"
		}
		if ins.Dest != "" {
			s = ins.Dest + " = " + s
		}
		return s
	case OpLdfld:
		return fmt.Sprintf("%s = ldfld %s", ins.Dest, ins.Field)
	case OpStfld:
		return fmt.Sprintf("stfld %s, %s", ins.Field, ins.Cond)
	case OpAssign:
		return fmt.Sprintf("%s = %s", ins.Dest, ins.Cond)
	case OpAssume:
		if ins.Tag != "" {
			return fmt.Sprintf("assume[%s] %s", ins.Tag, ins.Cond)
		}
		return fmt.Sprintf("assume %s", ins.Cond)
	case OpAssert, OpRequires, OpEnsures:
		return fmt.Sprintf("%s %s", ins.Op, ins.Cond)
	default:
		return ins.Op.String()
	}
}

// UserAssumeTag marks assumptions written in source.
const UserAssumeTag = "user"
