package cfg

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/internal/il"
)

// MethodCache builds and memoizes method CFGs and contract subroutines for
// one verification run. It is not safe for concurrent use.
type MethodCache struct {
	meta      il.Metadata
	contracts il.ContractProvider
	bodies    il.BodyProvider
	logger    *zap.Logger
	inherit   bool

	ids      int
	requires *contractFactory
	ensures  *contractFactory
	cfgs     map[il.Method]*Subroutine
	reads    map[il.Method]mapset.Set[il.Field]
	modifies map[il.Method]mapset.Set[il.Field]

	// journal lists the cache entries added by the outermost call in
	// progress, so that a failed build leaves no partial subroutine behind.
	journal []func()
	depth   int
}

// Option configures a MethodCache.
type Option func(*MethodCache)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(mc *MethodCache) {
		if logger != nil {
			mc.logger = logger
		}
	}
}

// WithContractInheritance controls whether virtual methods inherit the
// contracts of the methods they override or implement. It is on by default.
func WithContractInheritance(inherit bool) Option {
	return func(mc *MethodCache) {
		mc.inherit = inherit
	}
}

func NewMethodCache(meta il.Metadata, contracts il.ContractProvider, bodies il.BodyProvider, opts ...Option) *MethodCache {
	mc := &MethodCache{
		meta:      meta,
		contracts: contracts,
		bodies:    bodies,
		logger:    zap.NewNop(),
		inherit:   true,
		cfgs:      make(map[il.Method]*Subroutine),
		reads:     make(map[il.Method]mapset.Set[il.Field]),
		modifies:  make(map[il.Method]mapset.Set[il.Field]),
	}
	mc.requires = newContractFactory(mc, RequiresSubroutine)
	mc.ensures = newContractFactory(mc, EnsuresSubroutine)
	for _, opt := range opts {
		opt(mc)
	}
	return mc
}

// GetCFG returns the method subroutine of m, building it on first use.
func (mc *MethodCache) GetCFG(m il.Method) (*Subroutine, error) {
	if sub, ok := mc.cfgs[m]; ok {
		return sub, nil
	}
	var sub *Subroutine
	err := mc.atomically(func() error {
		var err error
		sub, err = mc.buildCFG(m)
		return err
	})
	if err != nil {
		if IsInconsistent(err) {
			mc.logger.Warn("inconsistent method body", zap.String("method", string(m)), zap.Error(err))
		} else {
			mc.logger.Info("method skipped", zap.String("method", string(m)), zap.Error(err))
		}
		return nil, err
	}
	return sub, nil
}

func (mc *MethodCache) buildCFG(m il.Method) (*Subroutine, error) {
	code, entry, ok := mc.bodies.MethodBody(m)
	if !ok {
		return nil, unsupported(m, "method has no body")
	}

	b, err := newHandlersBuilder(mc, m, code, entry)
	if err != nil {
		return nil, err
	}
	sub := newSubroutineAt(mc.nextID(), MethodSubroutine, m, b.subroutineBuilder, entry)
	if err := b.build(sub, entry); err != nil {
		return nil, err
	}
	sub.commit()

	requires, err := mc.GetRequires(m)
	if err != nil {
		return nil, err
	}
	sub.AddEdgeSubroutine(sub.entry, sub.entryAfterRequires, requires, Entry)

	ensures, err := mc.GetEnsures(m)
	if err != nil {
		return nil, err
	}
	for _, rb := range sub.returns {
		sub.AddEdgeSubroutine(rb, sub.exit, ensures, Exit)
	}

	mc.cfgs[m] = sub
	mc.record(func() { delete(mc.cfgs, m) })
	mc.logger.Debug("built method cfg",
		zap.String("method", string(m)),
		zap.Int("blocks", len(sub.blocks)),
		zap.Int("handlers", len(sub.faultFinallyOrder)))
	return sub, nil
}

// GetRequires returns the precondition subroutine of m, or nil when m has
// none.
func (mc *MethodCache) GetRequires(m il.Method) (*Subroutine, error) {
	var sub *Subroutine
	err := mc.atomically(func() error {
		var err error
		sub, err = mc.requires.get(m)
		return err
	})
	return sub, err
}

// GetEnsures returns the postcondition subroutine of m. It is never nil on
// success; a method without postconditions gets an empty subroutine.
func (mc *MethodCache) GetEnsures(m il.Method) (*Subroutine, error) {
	var sub *Subroutine
	err := mc.atomically(func() error {
		var err error
		sub, err = mc.ensures.get(m)
		return err
	})
	return sub, err
}

// Reads returns the fields read by the property getter m, as seen while
// building its CFG.
func (mc *MethodCache) Reads(m il.Method) []il.Field {
	return fieldSlice(mc.reads[m])
}

// Modifies returns the fields written by the property setter m.
func (mc *MethodCache) Modifies(m il.Method) []il.Field {
	return fieldSlice(mc.modifies[m])
}

// Remove drops everything cached for m. Subroutines already handed out
// stay valid.
func (mc *MethodCache) Remove(m il.Method) bool {
	_, hadCFG := mc.cfgs[m]
	delete(mc.cfgs, m)
	delete(mc.reads, m)
	delete(mc.modifies, m)
	hadRequires := mc.requires.remove(m)
	hadEnsures := mc.ensures.remove(m)
	return hadCFG || hadRequires || hadEnsures
}

func (mc *MethodCache) nextID() int {
	mc.ids++
	return mc.ids
}

func (mc *MethodCache) addReads(m il.Method, f il.Field) {
	addField(mc.reads, m, f)
}

func (mc *MethodCache) addModifies(m il.Method, f il.Field) {
	addField(mc.modifies, m, f)
}

func addField(sets map[il.Method]mapset.Set[il.Field], m il.Method, f il.Field) {
	s, ok := sets[m]
	if !ok {
		s = mapset.NewThreadUnsafeSet[il.Field]()
		sets[m] = s
	}
	s.Add(f)
}

func fieldSlice(s mapset.Set[il.Field]) []il.Field {
	if s == nil {
		return nil
	}
	out := s.ToSlice()
	slices.Sort(out)
	return out
}

// atomically runs fn and undoes every cache entry recorded since the call
// started when fn fails.
func (mc *MethodCache) atomically(fn func() error) error {
	mark := len(mc.journal)
	mc.depth++
	err := fn()
	mc.depth--

	if err != nil {
		for i := len(mc.journal) - 1; i >= mark; i-- {
			mc.journal[i]()
		}
		mc.journal = mc.journal[:mark]
	}
	if mc.depth == 0 {
		mc.journal = mc.journal[:0]
	}
	return err
}

func (mc *MethodCache) record(undo func()) {
	mc.journal = append(mc.journal, undo)
}
