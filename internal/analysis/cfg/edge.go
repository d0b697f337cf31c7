package cfg

// EdgeTag is the semantic kind of a control-flow edge.
type EdgeTag int

const (
	FallThrough EdgeTag = iota
	Branch
	True
	False
	Return
	FallThroughReturn
	EndSubroutine
	EndOld
	BeforeCall
	AfterCall
	BeforeNewObj
	AfterNewObj
	Old
	Entry
	Exit
	Inherited
	Finally
	Switch
	Default
)

var edgeTagNames = [...]string{
	FallThrough:       "fallthrough",
	Branch:            "branch",
	True:              "true",
	False:             "false",
	Return:            "return",
	FallThroughReturn: "fallthrough-return",
	EndSubroutine:     "endsub",
	EndOld:            "endold",
	BeforeCall:        "beforeCall",
	AfterCall:         "afterCall",
	BeforeNewObj:      "beforeNewObj",
	AfterNewObj:       "afterNewObj",
	Old:               "old",
	Entry:             "entry",
	Exit:              "exit",
	Inherited:         "inherited",
	Finally:           "finally",
	Switch:            "switch",
	Default:           "default",
}

func (t EdgeTag) String() string {
	if t >= 0 && int(t) < len(edgeTagNames) {
		return edgeTagNames[t]
	}
	return "unknown"
}

// Negate maps True to False and back. Other tags are returned unchanged.
func (t EdgeTag) Negate() EdgeTag {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return t
	}
}

// Edge is a tagged control-flow edge between two blocks of the same
// subroutine.
type Edge struct {
	From *Block
	To   *Block
	Tag  EdgeTag
}

// EdgeSubroutine is a subroutine executed when control crosses an edge.
type EdgeSubroutine struct {
	Tag        EdgeTag
	Subroutine *Subroutine
}

type edgeKey struct {
	from, to *Block
}
