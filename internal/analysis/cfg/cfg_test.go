package cfg

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gnoverse/ccheck/internal/il"
	"github.com/gnoverse/ccheck/internal/program"
)

func newCache(t *testing.T, src string, opts ...Option) (*MethodCache, *program.Program) {
	t.Helper()
	p := program.MustParse(src)
	return NewMethodCache(p, p, p, opts...), p
}

func mustCFG(t *testing.T, mc *MethodCache, m il.Method) *Subroutine {
	t.Helper()
	sub, err := mc.GetCFG(m)
	require.NoError(t, err)
	require.NotNil(t, sub)
	return sub
}

func blockWithLabels(t *testing.T, sub *Subroutine, labels ...il.Label) *Block {
	t.Helper()
	for _, b := range sub.Blocks() {
		if assert.ObjectsAreEqual(labels, b.Labels()) {
			return b
		}
	}
	t.Fatalf("no block with labels %v in %s", labels, sub)
	return nil
}

func callBlock(t *testing.T, sub *Subroutine, m il.Method) *Block {
	t.Helper()
	for _, b := range sub.Blocks() {
		if b.IsCall() && b.CalledMethod == m {
			return b
		}
	}
	t.Fatalf("no call to %s in %s", m, sub)
	return nil
}

func tags(edges []Edge) []EdgeTag {
	out := make([]EdgeTag, len(edges))
	for i, e := range edges {
		out[i] = e.Tag
	}
	return out
}

func TestStraightLine(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body: ["x = 1", "y = 2", "z = x + y"]
`)
	sub := mustCFG(t, mc, "A.M")

	body := sub.EntryAfterRequires()
	assert.Equal(t, []il.Label{0, 1, 2}, body.Labels())
	require.Len(t, sub.Succs(body), 1)
	assert.Equal(t, FallThroughReturn, sub.Succs(body)[0].Tag)
	assert.Same(t, sub.Exit(), sub.Succs(body)[0].To)
	assert.Equal(t, []*Block{body}, sub.ReturnBlocks())

	withLabels := 0
	for _, b := range sub.Blocks() {
		if b.Len() > 0 {
			withLabels++
		}
	}
	assert.Equal(t, 1, withLabels)
	assert.True(t, sub.Committed())
	assert.True(t, sub.IsMethod())
}

func TestConditionalBranch(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body:
      - "brtrue x > 0, 3"
      - "y = 1"
      - ret
      - "y = 2"
      - ret
`)
	sub := mustCFG(t, mc, "A.M")

	head := sub.EntryAfterRequires()
	assert.Equal(t, []il.Label{0}, head.Labels())
	succs := sub.Succs(head)
	assert.Equal(t, []EdgeTag{True, False}, tags(succs))
	assert.Equal(t, False, True.Negate())
	assert.Equal(t, True, False.Negate())

	taken, notTaken := succs[0].To, succs[1].To
	assert.True(t, taken.IsAssume())
	assert.True(t, notTaken.IsAssume())
	assert.Equal(t, True, taken.Sense)
	assert.Equal(t, False, notTaken.Sense)
	assert.Zero(t, taken.Len())

	require.Len(t, sub.Succs(taken), 1)
	assert.Same(t, blockWithLabels(t, sub, 3, 4), sub.Succs(taken)[0].To)
	require.Len(t, sub.Succs(notTaken), 1)
	assert.Same(t, blockWithLabels(t, sub, 1, 2), sub.Succs(notTaken)[0].To)
	assert.Len(t, sub.ReturnBlocks(), 2)
}

func TestBlockStartsAreSets(t *testing.T) {
	t.Parallel()
	b := newSubroutineBuilder(nil, program.NewCode(il.Instruction{Op: il.OpReturn}), 0)

	b.AddBlockStart(5)
	b.AddBlockStart(5)
	b.AddTargetLabel(7)
	b.AddTargetLabel(7)

	assert.Equal(t, 3, b.blockStarts.Cardinality())
	assert.Equal(t, 2, b.targetLabels.Cardinality())
	assert.True(t, b.IsBlockStart(5))
	assert.False(t, b.IsTargetLabel(5))
	assert.True(t, b.IsTargetLabel(7))
}

const callListing = `
methods:
  - name: A.M
    requires: ["x > 0"]
    body:
      - "x = x - 1"
      - call A.f
      - call A.M
      - ret
  - name: A.f
    requires: ["y != null"]
    ensures: ["result >= 0"]
    body: [ret]
  - name: A.g
    requires: ["call A.f", "x > 0"]
    body: [ret]
`

func TestCallEdgesCarryContracts(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, callListing)
	sub := mustCFG(t, mc, "A.M")

	requiresF, err := mc.GetRequires("A.f")
	require.NoError(t, err)
	ensuresF, err := mc.GetEnsures("A.f")
	require.NoError(t, err)
	requiresM, err := mc.GetRequires("A.M")
	require.NoError(t, err)

	callF := callBlock(t, sub, "A.f")
	require.Len(t, sub.Preds(callF), 1)
	before := sub.Preds(callF)[0].From
	assert.Equal(t, []EdgeSubroutine{{Tag: BeforeCall, Subroutine: requiresF}}, sub.EdgeSubroutines(before, callF))

	// two adjacent calls are separated by an empty block
	callM := callBlock(t, sub, "A.M")
	require.Len(t, sub.Preds(callM), 1)
	between := sub.Preds(callM)[0].From
	assert.Equal(t, PlainBlock, between.Kind)
	assert.Zero(t, between.Len())
	assert.Equal(t, []EdgeSubroutine{{Tag: AfterCall, Subroutine: ensuresF}}, sub.EdgeSubroutines(callF, between))

	// a recursive call checks the same precondition as the method entry
	atCall := sub.EdgeSubroutines(between, callM)
	require.Len(t, atCall, 1)
	assert.Equal(t, BeforeCall, atCall[0].Tag)
	assert.Same(t, requiresM, atCall[0].Subroutine)
	atEntry := sub.EdgeSubroutines(sub.Entry(), sub.EntryAfterRequires())
	require.Len(t, atEntry, 1)
	assert.Equal(t, Entry, atEntry[0].Tag)
	assert.Same(t, requiresM, atEntry[0].Subroutine)

	ensuresM, err := mc.GetEnsures("A.M")
	require.NoError(t, err)
	for _, rb := range sub.ReturnBlocks() {
		assert.Equal(t, []EdgeSubroutine{{Tag: Exit, Subroutine: ensuresM}}, sub.EdgeSubroutines(rb, sub.Exit()))
	}
	assert.ElementsMatch(t, []*Subroutine{requiresM, requiresF, ensuresF, ensuresM}, sub.UsedSubroutines())
}

func TestNoPreconditionEdgesInsideContracts(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, callListing)

	requiresG, err := mc.GetRequires("A.g")
	require.NoError(t, err)
	require.NotNil(t, requiresG)
	assert.True(t, requiresG.IsRequires())

	var seen []EdgeTag
	for _, b := range requiresG.Blocks() {
		for _, e := range requiresG.Succs(b) {
			for _, es := range requiresG.EdgeSubroutines(e.From, e.To) {
				seen = append(seen, es.Tag)
			}
		}
	}
	assert.Equal(t, []EdgeTag{AfterCall}, seen)
}

func TestAutoPropertySetterInConstructor(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.ctor
    constructor: true
    body: ["x = 1", "call A.set_V", ret]
  - name: A.Other
    body: ["x = 1", "call A.set_V", ret]
  - name: A.set_V
    setter: true
    auto_property: true
    requires: ["value >= 0"]
    body: ["stfld A.v, value", ret]
`)
	ctor := mustCFG(t, mc, "A.ctor")
	call := callBlock(t, ctor, "A.set_V")
	assert.Empty(t, ctor.EdgeSubroutines(ctor.Preds(call)[0].From, call))

	other := mustCFG(t, mc, "A.Other")
	call = callBlock(t, other, "A.set_V")
	assert.Len(t, other.EdgeSubroutines(other.Preds(call)[0].From, call), 1)

	mustCFG(t, mc, "A.set_V")
	assert.Equal(t, []il.Field{"A.v"}, mc.Modifies("A.set_V"))
	assert.Empty(t, mc.Reads("A.set_V"))
}

func TestGetterReads(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.get_Sum
    getter: true
    body: ["w = ldfld A.w", "v = ldfld A.v", "w = ldfld A.w", ret]
  - name: A.Plain
    body: ["w = ldfld A.w", ret]
`)
	mustCFG(t, mc, "A.get_Sum")
	mustCFG(t, mc, "A.Plain")
	assert.Equal(t, []il.Field{"A.v", "A.w"}, mc.Reads("A.get_Sum"))
	assert.Empty(t, mc.Reads("A.Plain"))
}

const finallyListing = `
methods:
  - name: A.M
    body:
      - "x = 1"
      - br 4
      - "y = 2"
      - endfinally
      - ret
    handlers:
      - kind: finally
        try_start: 0
        try_end: 2
        handler_start: 2
        handler_end: 4
`

func TestTryFinally(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, finallyListing)
	sub := mustCFG(t, mc, "A.M")

	handlers := sub.FaultFinallySubroutines()
	require.Len(t, handlers, 1)
	fin := handlers[0]
	assert.Equal(t, FinallySubroutine, fin.Kind())
	assert.True(t, fin.IsFaultFinally())
	assert.True(t, fin.Committed())

	inMethod := map[*Block]bool{}
	for _, b := range sub.Blocks() {
		inMethod[b] = true
	}
	for _, b := range fin.Blocks() {
		assert.False(t, inMethod[b])
		assert.Same(t, fin, b.Subroutine())
	}
	assert.Equal(t, []il.Label{2, 3}, fin.EntryAfterRequires().Labels())

	endSub := 0
	for _, b := range fin.Blocks() {
		for _, e := range fin.Succs(b) {
			if e.Tag == EndSubroutine {
				endSub++
				assert.Same(t, fin.Exit(), e.To)
			}
		}
	}
	assert.Equal(t, 1, endSub)
	for _, b := range sub.Blocks() {
		assert.NotContains(t, tags(sub.Succs(b)), EndSubroutine)
	}

	try := blockWithLabels(t, sub, 0, 1)
	after := blockWithLabels(t, sub, 4)
	require.NotNil(t, sub.ProtectingHandlers(try))
	assert.True(t, sub.ProtectingHandlers(try).Head.IsFinally())
	assert.Nil(t, sub.ProtectingHandlers(after))
	assert.Equal(t, []EdgeSubroutine{{Tag: Finally, Subroutine: fin}}, sub.EdgeSubroutines(try, after))
	assert.Contains(t, sub.UsedSubroutines(), fin)
}

func TestCatchHeader(t *testing.T) {
	t.Parallel()
	mc, p := newCache(t, `
methods:
  - name: A.M
    body:
      - "x = 1"
      - br 4
      - "y = 2"
      - br 4
      - ret
    handlers:
      - kind: catch
        try_start: 0
        try_end: 2
        handler_start: 2
        handler_end: 4
`)
	sub := mustCFG(t, mc, "A.M")
	body, _, ok := p.MethodBody("A.M")
	require.True(t, ok)
	h := body.TryBlocks("A.M")[0]

	header, ok := sub.CatchFilterHeader(h)
	require.True(t, ok)
	assert.Equal(t, CatchFilterEntry, header.Kind)
	assert.Same(t, h, header.Handler)
	assert.Equal(t, []il.Label{2, 3}, header.Labels())
	assert.Empty(t, sub.Preds(header))

	try := blockWithLabels(t, sub, 0, 1)
	assert.Equal(t, []*Block{header}, sub.ExceptionHandlers(try))
	assert.Equal(t, []*Block{sub.ExceptionExit()}, sub.ExceptionHandlers(blockWithLabels(t, sub, 4)))
	assert.Empty(t, sub.FaultFinallySubroutines())
}

func TestTryRegionsClosedOutOfOrder(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body: ["x = 1", "x = 2", "x = 3", ret, ret]
    handlers:
      - {kind: catch, try_start: 0, try_end: 3, handler_start: 4, handler_end: 5}
      - {kind: catch, try_start: 0, try_end: 2, handler_start: 3, handler_end: 4}
`)
	_, err := mc.GetCFG("A.M")
	require.Error(t, err)
	assert.True(t, IsInconsistent(err))
	assert.Contains(t, err.Error(), "L2")
	assert.NotContains(t, mc.cfgs, il.Method("A.M"))
}

func TestUnknownLabels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		label  string
	}{
		{
			name:   "branch target",
			method: `body: ["x = 1", "br 99", ret]`,
			label:  "L99",
		},
		{
			name:   "conditional branch target",
			method: `body: ["brfalse p, 7", ret]`,
			label:  "L7",
		},
		{
			name:   "switch case",
			method: `body: ["switch k: 1, 9", ret]`,
			label:  "L9",
		},
		{
			name: "handler start",
			method: `body: ["x = 1", ret]
    handlers: [{kind: catch, try_start: 0, try_end: 1, handler_start: 8, handler_end: 9}]`,
			label: "L8",
		},
		{
			name: "try end past the stream end",
			method: `body: ["x = 1", ret]
    handlers: [{kind: catch, try_start: 0, try_end: 5, handler_start: 1, handler_end: 2}]`,
			label: "L5",
		},
		{
			name: "filter start",
			method: `body: ["x = 1", ret, ret]
    handlers: [{kind: filter, try_start: 0, try_end: 1, filter_start: 6, handler_start: 1, handler_end: 2}]`,
			label: "L6",
		},
		{
			name: "precondition branch",
			method: `requires: ["br 5", "p != null"]
    body: [ret]`,
			label: "L5",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mc, _ := newCache(t, "methods:\n  - name: A.M\n    "+tt.method+"\n")
			_, err := mc.GetCFG("A.M")
			require.Error(t, err)
			assert.True(t, IsInconsistent(err))
			assert.Contains(t, err.Error(), tt.label+": unknown label")
			assert.NotContains(t, mc.cfgs, il.Method("A.M"))
		})
	}
}

func TestRegionEndAtStreamEnd(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body: ["x = 1", ret, ret]
    handlers: [{kind: catch, try_start: 0, try_end: 2, handler_start: 2, handler_end: 3}]
`)
	mustCFG(t, mc, "A.M")
}

func TestTryFallingIntoFinally(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body:
      - "x = 0"
      - "y = 1"
      - endfinally
      - "assert x != 0"
      - ret
    handlers:
      - kind: finally
        try_start: 0
        try_end: 1
        handler_start: 1
        handler_end: 3
`)
	sub := mustCFG(t, mc, "A.M")
	handlers := sub.FaultFinallySubroutines()
	require.Len(t, handlers, 1)
	fin := handlers[0]
	assert.Equal(t, []il.Label{1, 2}, fin.EntryAfterRequires().Labels())

	try := blockWithLabels(t, sub, 0)
	after := blockWithLabels(t, sub, 3, 4)
	require.Len(t, sub.Succs(try), 1)
	assert.Equal(t, FallThrough, sub.Succs(try)[0].Tag)
	assert.Same(t, after, sub.Succs(try)[0].To)
	require.Len(t, sub.Preds(after), 1)
	assert.Same(t, try, sub.Preds(after)[0].From)
	assert.Equal(t, []EdgeSubroutine{{Tag: Finally, Subroutine: fin}}, sub.EdgeSubroutines(try, after))
}

func TestTryFallingIntoFault(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body: ["x = 0", "y = 1", endfinally, ret]
    handlers: [{kind: fault, try_start: 0, try_end: 1, handler_start: 1, handler_end: 3}]
`)
	sub := mustCFG(t, mc, "A.M")
	try := blockWithLabels(t, sub, 0)
	after := blockWithLabels(t, sub, 3)
	require.Len(t, sub.Succs(try), 1)
	assert.Same(t, after, sub.Succs(try)[0].To)
	// fault handlers run on exceptional exits only
	assert.Empty(t, sub.EdgeSubroutines(try, after))
}

func TestMethodWithoutBody(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: I.M
    virtual: true
`)
	_, err := mc.GetCFG("I.M")
	require.Error(t, err)
	assert.True(t, IsUnsupported(err))
	assert.False(t, IsInconsistent(err))
}

func TestBuildFailureLogLevel(t *testing.T) {
	t.Parallel()
	core, logs := observer.New(zapcore.DebugLevel)
	mc, _ := newCache(t, `
methods:
  - name: A.Bad
    body: ["br 99", ret]
  - name: I.M
    virtual: true
`, WithLogger(zap.New(core)))

	_, err := mc.GetCFG("A.Bad")
	require.Error(t, err)
	_, err = mc.GetCFG("I.M")
	require.Error(t, err)

	warned := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warned, 1)
	assert.Equal(t, "A.Bad", warned[0].ContextMap()["method"])

	skipped := logs.FilterLevelExact(zapcore.InfoLevel).All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "I.M", skipped[0].ContextMap()["method"])
}

func TestSwitch(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    body: ["switch k: 2, 3", ret, ret, ret]
`)
	sub := mustCFG(t, mc, "A.M")
	head := sub.EntryAfterRequires()
	succs := sub.Succs(head)
	assert.Equal(t, []EdgeTag{Switch, Switch, Default}, tags(succs))

	for i, target := range []il.Label{2, 3} {
		c := succs[i].To
		assert.Equal(t, SwitchCaseBlock, c.Kind)
		assert.Equal(t, i, c.CaseIndex)
		require.Len(t, sub.Succs(c), 1)
		assert.Same(t, blockWithLabels(t, sub, target), sub.Succs(c)[0].To)
	}
	def := succs[2].To
	assert.Equal(t, SwitchDefaultBlock, def.Kind)
	assert.Equal(t, 2, def.CaseCount)
	assert.Same(t, blockWithLabels(t, sub, 1), sub.Succs(def)[0].To)
	assert.Len(t, sub.ReturnBlocks(), 3)
}

func TestOldValueRegion(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.M
    ensures: [beginold, "o = x", endold, "result == o"]
    body: [ret]
`)
	ens, err := mc.GetEnsures("A.M")
	require.NoError(t, err)
	require.True(t, ens.IsEnsures())

	start := ens.EntryAfterRequires()
	assert.Zero(t, start.Len())
	require.Len(t, ens.Succs(start), 1)
	next := ens.Succs(start)[0].To
	assert.Equal(t, []il.Label{3}, next.Labels())

	subs := ens.EdgeSubroutines(start, next)
	require.Len(t, subs, 1)
	assert.Equal(t, Old, subs[0].Tag)
	old := subs[0].Subroutine
	assert.True(t, old.IsOldValue())
	assert.True(t, old.Committed())
	assert.Same(t, old.EntryAfterRequires(), old.BeginOld())
	assert.Same(t, old.BeginOld(), old.EndOld())
	assert.Equal(t, []il.Label{0, 1, 2}, old.BeginOld().Labels())
	assert.Equal(t, []EdgeTag{EndOld}, tags(old.Succs(old.EndOld())))
	assert.Same(t, old.Exit(), old.Succs(old.EndOld())[0].To)
}

func TestMalformedOldValueRegions(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"nested":   `[beginold, beginold, endold, endold]`,
		"unclosed": `[beginold, "o = x"]`,
	}
	for name, ensures := range tests {
		name, ensures := name, ensures
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			mc, _ := newCache(t, "methods:\n  - name: A.M\n    body: [ret]\n    ensures: "+ensures+"\n")
			_, err := mc.GetEnsures("A.M")
			require.Error(t, err)
			assert.True(t, IsInconsistent(err))
			assert.Empty(t, mc.ensures.entries)

			_, err = mc.GetCFG("A.M")
			assert.Error(t, err)
			assert.Empty(t, mc.cfgs)
		})
	}
}

const inheritanceListing = `
methods:
  - name: A.M
    virtual: true
    requires: ["x > 0"]
    ensures: ["result != null"]
    body: [ret]
  - name: B.M
    virtual: true
    overrides: A.M
    body: [ret]
  - name: I.M
    virtual: true
    requires: ["x != 3"]
  - name: C.M
    virtual: true
    overrides: A.M
    implements: [I.M]
    body: [ret]
  - name: D.M
    virtual: true
    overrides: A.M
    requires: ["x < 10"]
    body: [ret]
  - name: E.M
    virtual: true
    overrides: B.M
    implements: [A.M]
    body: [ret]
  - name: F.M
    body: [ret]
`

func TestInheritedContractIsShared(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, inheritanceListing)

	reqA, err := mc.GetRequires("A.M")
	require.NoError(t, err)
	require.NotNil(t, reqA)
	reqB, err := mc.GetRequires("B.M")
	require.NoError(t, err)
	assert.Same(t, reqA, reqB)

	ensA, err := mc.GetEnsures("A.M")
	require.NoError(t, err)
	ensB, err := mc.GetEnsures("B.M")
	require.NoError(t, err)
	assert.Same(t, ensA, ensB)

	// root A.M and the implemented A.M resolve to one instance
	reqE, err := mc.GetRequires("E.M")
	require.NoError(t, err)
	assert.Same(t, reqA, reqE)
}

func TestInheritedContractsAreAggregated(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, inheritanceListing)

	reqA, _ := mc.GetRequires("A.M")
	reqI, _ := mc.GetRequires("I.M")
	reqC, err := mc.GetRequires("C.M")
	require.NoError(t, err)
	require.NotNil(t, reqC)
	assert.NotSame(t, reqA, reqC)
	assert.Nil(t, reqC.EntryAfterRequires())
	assert.Equal(t, []EdgeTag{Entry}, tags(reqC.Succs(reqC.Entry())))
	assert.Equal(t, []EdgeSubroutine{
		{Tag: Inherited, Subroutine: reqA},
		{Tag: Inherited, Subroutine: reqI},
	}, reqC.EdgeSubroutines(reqC.Entry(), reqC.Exit()))

	reqD, err := mc.GetRequires("D.M")
	require.NoError(t, err)
	assert.Equal(t, []EdgeSubroutine{{Tag: Inherited, Subroutine: reqA}},
		reqD.EdgeSubroutines(reqD.Entry(), reqD.EntryAfterRequires()))
}

func TestMissingContracts(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, inheritanceListing)

	req, err := mc.GetRequires("F.M")
	require.NoError(t, err)
	assert.Nil(t, req)

	ens, err := mc.GetEnsures("F.M")
	require.NoError(t, err)
	require.NotNil(t, ens)
	assert.Len(t, ens.Blocks(), 3)
	assert.Equal(t, []EdgeTag{Entry}, tags(ens.Succs(ens.Entry())))
	assert.Empty(t, ens.EdgeSubroutines(ens.Entry(), ens.Exit()))
}

func TestContractInheritanceDisabled(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, inheritanceListing, WithContractInheritance(false))

	req, err := mc.GetRequires("B.M")
	require.NoError(t, err)
	assert.Nil(t, req)
}

func TestCyclicInheritance(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - {name: A.M, virtual: true, overrides: B.M, body: [ret]}
  - {name: B.M, virtual: true, overrides: A.M, body: [ret]}
`)
	for i := 0; i < 2; i++ {
		_, err := mc.GetRequires("A.M")
		require.Error(t, err)
		assert.True(t, IsInconsistent(err))
		assert.Contains(t, err.Error(), "cyclic")
		assert.Empty(t, mc.requires.entries)
	}
}

func TestMutuallyRecursiveEnsures(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, `
methods:
  - name: A.f
    ensures: ["call A.g", "result >= 0"]
    body: [ret]
  - name: A.g
    ensures: ["call A.f", "result >= 0"]
    body: [ret]
`)
	ensF, err := mc.GetEnsures("A.f")
	require.NoError(t, err)
	ensG, err := mc.GetEnsures("A.g")
	require.NoError(t, err)
	assert.True(t, ensF.Committed())
	assert.True(t, ensG.Committed())

	afterCall := func(sub *Subroutine) (*Block, *Block, *Subroutine) {
		call := sub.EntryAfterRequires()
		require.True(t, call.IsCall())
		next := sub.Succs(call)[0].To
		subs := sub.EdgeSubroutines(call, next)
		require.Len(t, subs, 1)
		assert.Equal(t, AfterCall, subs[0].Tag)
		return call, next, subs[0].Subroutine
	}
	_, _, fromF := afterCall(ensF)
	assert.Same(t, ensG, fromF)
	call, next, fromG := afterCall(ensG)
	assert.Same(t, ensF, fromG)

	assert.Empty(t, ensG.EdgeSubroutinesWithin(call, next, []*Subroutine{ensF}))
	assert.Len(t, ensG.EdgeSubroutinesWithin(call, next, nil), 1)
}

func TestRemove(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, callListing)
	first := mustCFG(t, mc, "A.M")

	assert.True(t, mc.Remove("A.M"))
	assert.False(t, mc.Remove("A.M"))
	second := mustCFG(t, mc, "A.M")
	assert.NotSame(t, first, second)
}

func TestPrintDot(t *testing.T) {
	t.Parallel()
	mc, _ := newCache(t, finallyListing)
	sub := mustCFG(t, mc, "A.M")

	var buf bytes.Buffer
	PrintDot(&buf, sub)
	out := buf.String()

	assert.Contains(t, out, "digraph mgraph {")
	assert.Contains(t, out, "label=\"SR1 method A.M\"")
	assert.Contains(t, out, "finally A.M")
	assert.Contains(t, out, "[label=\"branch [finally SR2]\"]")
	assert.Contains(t, out, "endsub")
	assert.Contains(t, out, "L3: endfinally")
}
