package cfg

import (
	"fmt"
	"strings"

	"github.com/gnoverse/ccheck/internal/il"
)

// BlockKind distinguishes ordinary blocks from synthetic ones.
type BlockKind int

const (
	PlainBlock BlockKind = iota
	EntryBlock
	ExitBlock
	// CatchFilterEntry is the header of a catch or filter handler, and the
	// kind of every subroutine's exception exit.
	CatchFilterEntry
	CallBlock
	// AssumeBlock holds no labels; it records which way a conditional branch
	// went.
	AssumeBlock
	SwitchCaseBlock
	SwitchDefaultBlock
)

func (k BlockKind) String() string {
	switch k {
	case PlainBlock:
		return "block"
	case EntryBlock:
		return "entry"
	case ExitBlock:
		return "exit"
	case CatchFilterEntry:
		return "catch-filter"
	case CallBlock:
		return "call"
	case AssumeBlock:
		return "assume"
	case SwitchCaseBlock:
		return "switch-case"
	case SwitchDefaultBlock:
		return "switch-default"
	default:
		return "unknown"
	}
}

// Block is a maximal straight-line run of labels within one subroutine.
// It becomes immutable once a successor edge from it has been added.
type Block struct {
	Index int
	Kind  BlockKind

	sub    *Subroutine
	labels []il.Label
	sealed bool

	// call sites
	CalledMethod il.Method
	Virtual      bool
	IsNewObj     bool

	// assume and switch blocks
	BranchLabel il.Label
	Sense       EdgeTag
	CaseIndex   int
	CaseCount   int

	// catch/filter headers
	Handler *il.Handler
}

// Subroutine returns the subroutine owning b.
func (b *Block) Subroutine() *Subroutine {
	return b.sub
}

// Labels returns the labels of b in program order.
func (b *Block) Labels() []il.Label {
	return b.labels
}

// Len returns the number of labels in b.
func (b *Block) Len() int {
	return len(b.labels)
}

// LastLabel returns the final label of b.
func (b *Block) LastLabel() (il.Label, bool) {
	if len(b.labels) == 0 {
		return 0, false
	}
	return b.labels[len(b.labels)-1], true
}

// IsCall reports whether b is a method call or object construction site.
func (b *Block) IsCall() bool {
	return b.Kind == CallBlock
}

// IsAssume reports whether b records the outcome of a branch or switch.
func (b *Block) IsAssume() bool {
	return b.Kind == AssumeBlock || b.Kind == SwitchCaseBlock || b.Kind == SwitchDefaultBlock
}

// Instruction decodes the i-th label of b.
func (b *Block) Instruction(i int) il.Instruction {
	return b.sub.code.Decode(b.labels[i])
}

func (b *Block) add(l il.Label) error {
	if b.sealed {
		return inconsistent(l, "label appended to sealed block %d", b.Index)
	}
	b.labels = append(b.labels, l)
	return nil
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "B%d", b.Index)
	switch b.Kind {
	case PlainBlock:
	case CallBlock:
		fmt.Fprintf(&sb, " call %s", b.CalledMethod)
		if b.IsNewObj {
			sb.WriteString(" (newobj)")
		}
	case AssumeBlock:
		fmt.Fprintf(&sb, " assume %s@%s", b.Sense, b.BranchLabel)
	case SwitchCaseBlock:
		fmt.Fprintf(&sb, " case %d@%s", b.CaseIndex, b.BranchLabel)
	case SwitchDefaultBlock:
		fmt.Fprintf(&sb, " default@%s", b.BranchLabel)
	default:
		fmt.Fprintf(&sb, " %s", b.Kind)
	}
	return sb.String()
}
