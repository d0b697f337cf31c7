package lattice

// ProofOutcome is the flat four-valued domain over booleans used to answer
// fact queries.
//
//	      Top
//	     /   \
//	  True   False
//	     \   /
//	    Bottom
//
// Bottom means the program point is unreachable, Top means unknown.
// True and False are incomparable.
//
// Join table (least upper bound):
//
//	        | Bottom  True   False  Top
//	Bottom  | Bottom  True   False  Top
//	True    | True    True   Top    Top
//	False   | False   Top    False  Top
//	Top     | Top     Top    Top    Top
//
// Meet table (greatest lower bound):
//
//	        | Bottom  True    False   Top
//	Bottom  | Bottom  Bottom  Bottom  Bottom
//	True    | Bottom  True    Bottom  True
//	False   | Bottom  Bottom  False   False
//	Top     | Bottom  True    False   Top
type ProofOutcome int

const (
	ProofBottom ProofOutcome = iota // unreachable
	ProofTrue
	ProofFalse
	ProofTop // unknown
)

func (p ProofOutcome) String() string {
	switch p {
	case ProofBottom:
		return "Bottom"
	case ProofTrue:
		return "True"
	case ProofFalse:
		return "False"
	case ProofTop:
		return "Top"
	default:
		return "Unknown"
	}
}

// FromBool lifts a definite answer into the lattice.
func FromBool(b bool) ProofOutcome {
	if b {
		return ProofTrue
	}
	return ProofFalse
}

func (p ProofOutcome) IsTrue() bool   { return p == ProofTrue }
func (p ProofOutcome) IsFalse() bool  { return p == ProofFalse }
func (p ProofOutcome) IsTop() bool    { return p == ProofTop }
func (p ProofOutcome) IsBottom() bool { return p == ProofBottom }

// IsDefinite reports whether p is True or False.
func (p ProofOutcome) IsDefinite() bool {
	return p == ProofTrue || p == ProofFalse
}

// Negate swaps True and False and leaves Top and Bottom alone.
func (p ProofOutcome) Negate() ProofOutcome {
	switch p {
	case ProofTrue:
		return ProofFalse
	case ProofFalse:
		return ProofTrue
	default:
		return p
	}
}

// LessEqual reports whether p ⊑ q.
func (p ProofOutcome) LessEqual(q ProofOutcome) bool {
	return p == ProofBottom || q == ProofTop || p == q
}

// Join returns the least upper bound of p and q.
func (p ProofOutcome) Join(q ProofOutcome) ProofOutcome {
	if p == ProofBottom {
		return q
	}
	if q == ProofBottom || p == q {
		return p
	}
	return ProofTop
}

// Meet returns the greatest lower bound of p and q.
func (p ProofOutcome) Meet(q ProofOutcome) ProofOutcome {
	if p == ProofTop {
		return q
	}
	if q == ProofTop || p == q {
		return p
	}
	return ProofBottom
}
