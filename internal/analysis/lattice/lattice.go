package lattice

// ValueKind models the zero-ness lattice for integer-like and reference
// values. Null references and false are Zero.
type ValueKind int

const (
	Bottom ValueKind = iota // unreachable
	Zero
	NonZero
	MaybeZero
	Top
)

func (v ValueKind) String() string {
	switch v {
	case Bottom:
		return "Bottom"
	case Zero:
		return "Zero"
	case NonZero:
		return "NonZero"
	case MaybeZero:
		return "MaybeZero"
	case Top:
		return "Top"
	default:
		return "Unknown"
	}
}

// Join returns the least upper bound in the lattice.
func Join(a, b ValueKind) ValueKind {
	if a == Bottom {
		return b
	}
	if b == Bottom {
		return a
	}
	if a == Top || b == Top {
		return Top
	}
	if a == b {
		return a
	}
	// Zero + NonZero, or either with MaybeZero.
	return MaybeZero
}

// Meet returns the greatest lower bound in the lattice.
func Meet(a, b ValueKind) ValueKind {
	if a == Bottom || b == Bottom {
		return Bottom
	}
	if a == Top || (a == MaybeZero && b != Top) {
		return b
	}
	if b == Top || b == MaybeZero {
		return a
	}
	if a == b {
		return a
	}
	return Bottom
}

// IsZero answers "is the value zero (null)" in the proof lattice.
func (v ValueKind) IsZero() ProofOutcome {
	switch v {
	case Bottom:
		return ProofBottom
	case Zero:
		return ProofTrue
	case NonZero:
		return ProofFalse
	default:
		return ProofTop
	}
}

// IsNonZero answers "is the value non-zero (non-null)" in the proof lattice.
func (v ValueKind) IsNonZero() ProofOutcome {
	return v.IsZero().Negate()
}

// AbstractState maps variable names to their zero-ness.
// Missing entries are interpreted as Top. A nil state is Bottom.
type AbstractState map[string]ValueKind

// Get returns the stored value or Top when absent.
func (s AbstractState) Get(name string) ValueKind {
	if s == nil {
		return Bottom
	}
	if val, ok := s[name]; ok {
		return val
	}
	return Top
}

// Set sets the entry or removes it when value is Top.
func (s AbstractState) Set(name string, value ValueKind) {
	if s == nil {
		return
	}
	if value == Top {
		delete(s, name)
		return
	}
	s[name] = value
}

// Clone returns a shallow copy of the state.
func (s AbstractState) Clone() AbstractState {
	if s == nil {
		return nil
	}
	out := make(AbstractState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// JoinStates merges two states. Variables missing from either side go to Top.
func JoinStates(a, b AbstractState) AbstractState {
	if a == nil {
		return b.Clone()
	}
	if b == nil {
		return a.Clone()
	}
	out := make(AbstractState)
	for name, va := range a {
		if vb, ok := b[name]; ok {
			out.Set(name, Join(va, vb))
		}
	}
	return out
}

// StateEqual reports whether two abstract states are identical.
func StateEqual(a, b AbstractState) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
