package il

// CodeProvider exposes a labeled instruction stream.
type CodeProvider interface {
	// Decode returns the instruction at l.
	Decode(l Label) Instruction
	// Next returns the label following l, or false at the end of the stream.
	Next(l Label) (Label, bool)
}

// HandlerKind distinguishes exception handler regions.
type HandlerKind int

const (
	CatchHandler HandlerKind = iota
	FilterHandler
	FaultHandler
	FinallyHandler
)

func (k HandlerKind) String() string {
	switch k {
	case CatchHandler:
		return "catch"
	case FilterHandler:
		return "filter"
	case FaultHandler:
		return "fault"
	case FinallyHandler:
		return "finally"
	default:
		return "unknown"
	}
}

// Handler describes one try region and its handler. End labels are
// exclusive: they name the first label after the region.
type Handler struct {
	Kind HandlerKind

	TryStart     Label
	TryEnd       Label
	HandlerStart Label
	HandlerEnd   Label

	// FilterStart is the first label of a filter's decision code.
	FilterStart Label
	// CatchType is the caught exception type; empty catches everything.
	CatchType Type
}

func (h *Handler) IsFault() bool   { return h.Kind == FaultHandler }
func (h *Handler) IsFinally() bool { return h.Kind == FinallyHandler }
func (h *Handler) IsFilter() bool  { return h.Kind == FilterHandler }
func (h *Handler) IsCatch() bool   { return h.Kind == CatchHandler }

// IsFaultOrFinally reports whether the handler runs as a subroutine on the
// way out of its try region.
func (h *Handler) IsFaultOrFinally() bool {
	return h.Kind == FaultHandler || h.Kind == FinallyHandler
}

// IsCatchAll reports whether a catch handler catches every exception.
func (h *Handler) IsCatchAll() bool {
	return h.Kind == CatchHandler && h.CatchType == ""
}

// MethodCodeProvider is a CodeProvider for a method body that also
// exposes its exception regions.
type MethodCodeProvider interface {
	CodeProvider
	// TryBlocks returns the handlers of m, innermost regions first.
	TryBlocks(m Method) []*Handler
}

// BodyProvider gives access to method bodies.
type BodyProvider interface {
	// MethodBody returns the code of m and its entry label, or false when
	// m has no body (abstract, extern or unknown).
	MethodBody(m Method) (MethodCodeProvider, Label, bool)
}

// Metadata answers structural questions about methods.
type Metadata interface {
	IsVirtual(m Method) bool
	IsConstructor(m Method) bool
	IsPropertyGetter(m Method) bool
	IsPropertySetter(m Method) bool
	// IsAutoPropertyMember reports whether m is a compiler-synthesized
	// accessor of an auto-property.
	IsAutoPropertyMember(m Method) bool
	DeclaringType(m Method) Type
	// RootMethod returns the method that m ultimately overrides.
	RootMethod(m Method) (Method, bool)
	// ImplementedMethods returns the interface methods m implements.
	ImplementedMethods(m Method) []Method
	// OverriddenAndImplementedMethods returns every method m overrides
	// or implements.
	OverriddenAndImplementedMethods(m Method) []Method
	// Unspecialized returns the generic definition of m.
	Unspecialized(m Method) Method
}

// ContractProvider exposes contract clauses.
type ContractProvider interface {
	HasRequires(m Method) bool
	HasEnsures(m Method) bool
	// CanInheritContracts reports whether the binding policy lets m
	// inherit contracts from the methods it overrides or implements.
	CanInheritContracts(m Method) bool
	AccessRequires(m Method) (CodeProvider, Label, bool)
	AccessEnsures(m Method) (CodeProvider, Label, bool)
}
