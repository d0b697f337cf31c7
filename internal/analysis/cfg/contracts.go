package cfg

import (
	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/internal/il"
)

// contractFactory memoizes the requires or ensures subroutine of each
// method. A nil entry means the method has no precondition.
type contractFactory struct {
	mc      *MethodCache
	kind    Kind
	entries map[il.Method]*contractEntry
}

type contractEntry struct {
	sub *Subroutine
	// resolving is set while the inherited contracts of the method are
	// being looked up. Seeing it again means the inheritance is cyclic.
	resolving bool
}

func newContractFactory(mc *MethodCache, kind Kind) *contractFactory {
	return &contractFactory{
		mc:      mc,
		kind:    kind,
		entries: make(map[il.Method]*contractEntry),
	}
}

func (f *contractFactory) get(m il.Method) (*Subroutine, error) {
	if e, ok := f.entries[m]; ok {
		if e.resolving {
			return nil, inconsistentMethod(m, "cyclic %s inheritance", f.kind)
		}
		return e.sub, nil
	}

	e := &contractEntry{resolving: true}
	f.entries[m] = e
	f.mc.record(func() { delete(f.entries, m) })

	inherited, err := f.inherited(m)
	if err != nil {
		return nil, err
	}

	contracts := f.mc.contracts
	own := f.kind == RequiresSubroutine && contracts.HasRequires(m) ||
		f.kind == EnsuresSubroutine && contracts.HasEnsures(m)
	if own {
		return f.buildOwn(e, m, inherited)
	}

	e.resolving = false
	switch {
	case len(inherited) == 1:
		e.sub = inherited[0]
	case len(inherited) > 1 || f.kind == EnsuresSubroutine:
		e.sub = f.aggregate(m, inherited)
	}
	return e.sub, nil
}

// inherited resolves the contracts m inherits, without duplicates, in
// lookup order. Preconditions come from the root method and the
// implemented interface methods, postconditions from every overridden or
// implemented method.
func (f *contractFactory) inherited(m il.Method) ([]*Subroutine, error) {
	meta := f.mc.meta
	if !f.mc.inherit || !meta.IsVirtual(m) || !f.mc.contracts.CanInheritContracts(m) {
		return nil, nil
	}

	var sources []il.Method
	if f.kind == RequiresSubroutine {
		if root, ok := meta.RootMethod(m); ok {
			sources = append(sources, root)
		}
		sources = append(sources, meta.ImplementedMethods(m)...)
	} else {
		sources = meta.OverriddenAndImplementedMethods(m)
	}

	seen := mapset.NewThreadUnsafeSet[*Subroutine]()
	var out []*Subroutine
	for _, src := range sources {
		sub, err := f.get(meta.Unspecialized(src))
		if err != nil {
			return nil, err
		}
		if sub != nil && seen.Add(sub) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// buildOwn builds the contract clauses of m. The subroutine is published
// before its body is built so that contracts reaching m again through call
// edges get the same instance.
func (f *contractFactory) buildOwn(e *contractEntry, m il.Method, inherited []*Subroutine) (*Subroutine, error) {
	access := f.mc.contracts.AccessRequires
	if f.kind == EnsuresSubroutine {
		access = f.mc.contracts.AccessEnsures
	}
	code, entry, ok := access(m)
	if !ok {
		return nil, unsupported(m, "%s clauses are not accessible", f.kind)
	}

	b, err := newSimpleBuilder(f.mc, code, entry)
	if err != nil {
		return nil, err
	}
	sub := newSubroutineAt(f.mc.nextID(), f.kind, m, b.subroutineBuilder, entry)
	for _, in := range inherited {
		sub.AddEdgeSubroutine(sub.entry, sub.entryAfterRequires, in, Inherited)
	}
	e.sub = sub
	e.resolving = false

	if err := b.build(sub, entry); err != nil {
		return nil, err
	}
	sub.commit()
	f.mc.logger.Debug("built contract",
		zap.String("method", string(m)),
		zap.Stringer("kind", f.kind),
		zap.Int("blocks", len(sub.blocks)),
		zap.Int("inherited", len(inherited)))
	return sub, nil
}

// aggregate returns a subroutine without code that runs each inherited
// contract on its single edge.
func (f *contractFactory) aggregate(m il.Method, inherited []*Subroutine) *Subroutine {
	sub := newSubroutine(f.mc.nextID(), f.kind, m, nil)
	sub.addSuccessor(sub.entry, Entry, sub.exit)
	for _, in := range inherited {
		sub.AddEdgeSubroutine(sub.entry, sub.exit, in, Inherited)
	}
	sub.commit()
	return sub
}

func (f *contractFactory) remove(m il.Method) bool {
	_, ok := f.entries[m]
	delete(f.entries, m)
	return ok
}

