package program

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnoverse/ccheck/internal/il"
	"github.com/gnoverse/ccheck/internal/minilogic"
)

// Code is an assembled instruction stream. Labels are instruction
// indexes starting at 0.
type Code struct {
	instrs []il.Instruction
}

// NewCode wraps already decoded instructions.
func NewCode(instrs ...il.Instruction) *Code {
	return &Code{instrs: instrs}
}

func (c *Code) Decode(l il.Label) il.Instruction {
	if int(l) < 0 || int(l) >= len(c.instrs) {
		return il.Instruction{Op: il.OpNop}
	}
	return c.instrs[l]
}

func (c *Code) Next(l il.Label) (il.Label, bool) {
	if int(l)+1 >= len(c.instrs) {
		return 0, false
	}
	return l + 1, true
}

// Len returns the number of instructions.
func (c *Code) Len() int {
	if c == nil {
		return 0
	}
	return len(c.instrs)
}

func assemble(lines []string) (*Code, error) {
	c := &Code{}
	for i, line := range lines {
		ins, err := ParseInstruction(line)
		if err != nil {
			return nil, fmt.Errorf("L%d: %w", i, err)
		}
		c.instrs = append(c.instrs, ins)
	}
	return c, nil
}

// assembleClauses accepts instructions as well as bare conditions, which
// become op clauses.
func assembleClauses(lines []string, op il.Op) (*Code, error) {
	c := &Code{}
	for i, line := range lines {
		var ins il.Instruction
		var err error
		if isInstruction(line) {
			ins, err = ParseInstruction(line)
		} else {
			ins.Op = op
			ins.Cond, err = minilogic.Parse(line)
		}
		if err != nil {
			return nil, fmt.Errorf("L%d: %w", i, err)
		}
		c.instrs = append(c.instrs, ins)
	}
	return c, nil
}

var mnemonics = map[string]il.Op{
	"nop":         il.OpNop,
	"br":          il.OpBranch,
	"brcond":      il.OpBranchCond,
	"brtrue":      il.OpBranchTrue,
	"brfalse":     il.OpBranchFalse,
	"switch":      il.OpSwitch,
	"ret":         il.OpReturn,
	"throw":       il.OpThrow,
	"rethrow":     il.OpRethrow,
	"endfinally":  il.OpEndFinally,
	"call":        il.OpCall,
	"callvirt":    il.OpCall,
	"constrained": il.OpConstrainedCall,
	"newobj":      il.OpNewObj,
	"beginold":    il.OpBeginOld,
	"endold":      il.OpEndOld,
	"ldfld":       il.OpLdfld,
	"stfld":       il.OpStfld,
	"assert":      il.OpAssert,
	"assume":      il.OpAssume,
	"requires":    il.OpRequires,
	"ensures":     il.OpEnsures,
}

func splitMnemonic(line string) (string, string) {
	line = strings.TrimSpace(line)
	word, rest, _ := strings.Cut(line, " ")
	return word, strings.TrimSpace(rest)
}

func isInstruction(line string) bool {
	if _, _, ok := cutAssignment(line); ok {
		return true
	}
	word, _ := splitMnemonic(line)
	if strings.HasPrefix(word, "assume[") {
		return true
	}
	_, ok := mnemonics[word]
	return ok
}

// cutAssignment splits "x = rhs". Comparisons such as "x == y" are not
// assignments.
func cutAssignment(line string) (string, string, bool) {
	lhs, rhs, ok := strings.Cut(line, " = ")
	if !ok {
		return "", "", false
	}
	lhs = strings.TrimSpace(lhs)
	if lhs == "" || strings.ContainsAny(lhs, " !<>=()") {
		return "", "", false
	}
	return lhs, strings.TrimSpace(rhs), true
}

// ParseInstruction decodes one line of assembly.
func ParseInstruction(line string) (il.Instruction, error) {
	dest, rhs, hasDest := cutAssignment(line)
	if !hasDest {
		rhs = line
	}
	word, rest := splitMnemonic(rhs)

	var tag string
	if strings.HasPrefix(word, "assume[") && strings.HasSuffix(word, "]") {
		tag = strings.TrimSuffix(strings.TrimPrefix(word, "assume["), "]")
		word = "assume"
	}

	op, ok := mnemonics[word]
	if !ok {
		if !hasDest {
			return il.Instruction{}, fmt.Errorf("unknown instruction %q", line)
		}
		cond, err := minilogic.Parse(rhs)
		if err != nil {
			return il.Instruction{}, err
		}
		return il.Instruction{Op: il.OpAssign, Dest: dest, Cond: cond}, nil
	}

	ins := il.Instruction{Op: op, Dest: dest, Tag: tag}
	if hasDest && op != il.OpCall && op != il.OpConstrainedCall && op != il.OpNewObj && op != il.OpLdfld {
		return il.Instruction{}, fmt.Errorf("%s does not produce a value", word)
	}

	var err error
	switch op {
	case il.OpNop, il.OpReturn, il.OpThrow, il.OpRethrow, il.OpEndFinally, il.OpBeginOld, il.OpEndOld:
		if rest != "" {
			return il.Instruction{}, fmt.Errorf("%s takes no operands", word)
		}

	case il.OpBranch:
		ins.Target, err = parseLabel(rest)

	case il.OpBranchCond, il.OpBranchTrue, il.OpBranchFalse:
		i := strings.LastIndex(rest, ",")
		if i < 0 {
			return il.Instruction{}, fmt.Errorf("%s needs a condition and a target", word)
		}
		if ins.Cond, err = minilogic.Parse(rest[:i]); err != nil {
			return il.Instruction{}, err
		}
		ins.Target, err = parseLabel(rest[i+1:])

	case il.OpSwitch:
		selector, targets, found := strings.Cut(rest, ":")
		if !found {
			return il.Instruction{}, fmt.Errorf("switch needs a selector and targets")
		}
		if ins.Cond, err = minilogic.Parse(selector); err != nil {
			return il.Instruction{}, err
		}
		for _, t := range strings.Split(targets, ",") {
			l, err := parseLabel(t)
			if err != nil {
				return il.Instruction{}, err
			}
			ins.Cases = append(ins.Cases, l)
		}

	case il.OpCall, il.OpConstrainedCall, il.OpNewObj:
		if rest == "" {
			return il.Instruction{}, fmt.Errorf("%s needs a method", word)
		}
		ins.Method = il.Method(rest)
		ins.Virtual = word == "callvirt" || word == "constrained"

	case il.OpLdfld:
		if !hasDest || rest == "" {
			return il.Instruction{}, fmt.Errorf("ldfld needs a destination and a field")
		}
		ins.Field = il.Field(rest)

	case il.OpStfld:
		field, value, found := strings.Cut(rest, ",")
		if !found {
			return il.Instruction{}, fmt.Errorf("stfld needs a field and a value")
		}
		ins.Field = il.Field(strings.TrimSpace(field))
		ins.Cond, err = minilogic.Parse(value)

	case il.OpAssert, il.OpAssume, il.OpRequires, il.OpEnsures:
		ins.Cond, err = minilogic.Parse(rest)
	}
	if err != nil {
		return il.Instruction{}, err
	}
	return ins, nil
}

func parseLabel(s string) (il.Label, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "L")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad label %q", s)
	}
	return il.Label(n), nil
}
