// Package program loads assembly listings written in YAML. A listing names
// methods with their metadata, contract clauses, bodies and exception
// regions, and serves all of them through the provider interfaces of
// package il.
package program

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnoverse/ccheck/internal/il"
)

// MethodSpec is one method entry of a listing.
type MethodSpec struct {
	Name        string `yaml:"name"`
	Virtual     bool   `yaml:"virtual"`
	Constructor bool   `yaml:"constructor"`
	Getter      bool   `yaml:"getter"`
	Setter      bool   `yaml:"setter"`
	// AutoProperty marks compiler-generated accessors of an auto-property.
	AutoProperty bool `yaml:"auto_property"`
	// Overrides names the method directly overridden by this one.
	Overrides  string   `yaml:"overrides"`
	Implements []string `yaml:"implements"`
	// InheritContracts defaults to true.
	InheritContracts *bool `yaml:"inherit_contracts"`

	Requires []string      `yaml:"requires"`
	Ensures  []string      `yaml:"ensures"`
	Body     []string      `yaml:"body"`
	Handlers []HandlerSpec `yaml:"handlers"`
}

// HandlerSpec is one exception region. End labels are exclusive.
type HandlerSpec struct {
	Kind         string `yaml:"kind"`
	TryStart     int    `yaml:"try_start"`
	TryEnd       int    `yaml:"try_end"`
	HandlerStart int    `yaml:"handler_start"`
	HandlerEnd   int    `yaml:"handler_end"`
	FilterStart  int    `yaml:"filter_start"`
	CatchType    string `yaml:"catch_type"`
}

// Listing is the document format.
type Listing struct {
	Name    string       `yaml:"name"`
	Methods []MethodSpec `yaml:"methods"`
}

// Program is a decoded listing.
type Program struct {
	Name string

	order   []il.Method
	methods map[il.Method]*method
}

type method struct {
	spec     MethodSpec
	body     *Code
	requires *Code
	ensures  *Code
	handlers []*il.Handler
}

// Load reads and decodes the listing at path.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a listing.
func Parse(data []byte) (*Program, error) {
	var listing Listing
	if err := yaml.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("decoding listing: %w", err)
	}
	return New(listing)
}

// MustParse is Parse for listings known to be valid.
func MustParse(src string) *Program {
	p, err := Parse([]byte(src))
	if err != nil {
		panic(err)
	}
	return p
}

// New builds a program from a decoded listing.
func New(listing Listing) (*Program, error) {
	p := &Program{
		Name:    listing.Name,
		methods: make(map[il.Method]*method),
	}
	for _, spec := range listing.Methods {
		name := il.Method(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("method without a name")
		}
		if _, dup := p.methods[name]; dup {
			return nil, fmt.Errorf("method %s declared twice", name)
		}

		m := &method{spec: spec}
		var err error
		if m.body, err = assemble(spec.Body); err != nil {
			return nil, fmt.Errorf("%s body: %w", name, err)
		}
		if m.requires, err = assembleClauses(spec.Requires, il.OpRequires); err != nil {
			return nil, fmt.Errorf("%s requires: %w", name, err)
		}
		if m.ensures, err = assembleClauses(spec.Ensures, il.OpEnsures); err != nil {
			return nil, fmt.Errorf("%s ensures: %w", name, err)
		}
		for i, hs := range spec.Handlers {
			h, err := hs.handler()
			if err != nil {
				return nil, fmt.Errorf("%s handler %d: %w", name, i, err)
			}
			m.handlers = append(m.handlers, h)
		}

		p.methods[name] = m
		p.order = append(p.order, name)
	}
	return p, nil
}

func (hs HandlerSpec) handler() (*il.Handler, error) {
	h := &il.Handler{
		TryStart:     il.Label(hs.TryStart),
		TryEnd:       il.Label(hs.TryEnd),
		HandlerStart: il.Label(hs.HandlerStart),
		HandlerEnd:   il.Label(hs.HandlerEnd),
		FilterStart:  il.Label(hs.FilterStart),
		CatchType:    il.Type(hs.CatchType),
	}
	switch hs.Kind {
	case "catch":
		h.Kind = il.CatchHandler
	case "filter":
		h.Kind = il.FilterHandler
	case "fault":
		h.Kind = il.FaultHandler
	case "finally":
		h.Kind = il.FinallyHandler
	default:
		return nil, fmt.Errorf("unknown handler kind %q", hs.Kind)
	}
	if h.TryStart >= h.TryEnd || h.HandlerStart >= h.HandlerEnd {
		return nil, fmt.Errorf("empty %s region", hs.Kind)
	}
	return h, nil
}

// Methods returns the method names in listing order.
func (p *Program) Methods() []il.Method {
	return p.order
}

// Has reports whether m is declared.
func (p *Program) Has(m il.Method) bool {
	_, ok := p.methods[m]
	return ok
}

// MethodBody implements il.BodyProvider.
func (p *Program) MethodBody(m il.Method) (il.MethodCodeProvider, il.Label, bool) {
	pm, ok := p.methods[m]
	if !ok || pm.body.Len() == 0 {
		return nil, 0, false
	}
	return methodCode{Code: pm.body, handlers: pm.handlers}, 0, true
}

type methodCode struct {
	*Code
	handlers []*il.Handler
}

func (c methodCode) TryBlocks(il.Method) []*il.Handler {
	return c.handlers
}

func (p *Program) spec(m il.Method) MethodSpec {
	if pm, ok := p.methods[m]; ok {
		return pm.spec
	}
	return MethodSpec{}
}

func (p *Program) IsVirtual(m il.Method) bool     { return p.spec(m).Virtual }
func (p *Program) IsConstructor(m il.Method) bool { return p.spec(m).Constructor }
func (p *Program) IsPropertyGetter(m il.Method) bool {
	return p.spec(m).Getter
}
func (p *Program) IsPropertySetter(m il.Method) bool {
	return p.spec(m).Setter
}
func (p *Program) IsAutoPropertyMember(m il.Method) bool {
	return p.spec(m).AutoProperty
}

// DeclaringType returns the part of the method name before the last dot.
func (p *Program) DeclaringType(m il.Method) il.Type {
	name := string(m)
	if i := strings.LastIndex(name, "."); i >= 0 {
		return il.Type(name[:i])
	}
	return ""
}

// RootMethod follows the override chain of m to its end. It reports false
// when m overrides nothing.
func (p *Program) RootMethod(m il.Method) (il.Method, bool) {
	seen := map[il.Method]bool{m: true}
	root := m
	for {
		next := il.Method(p.spec(root).Overrides)
		if next == "" || seen[next] {
			break
		}
		seen[next] = true
		root = next
	}
	return root, root != m
}

func (p *Program) ImplementedMethods(m il.Method) []il.Method {
	var out []il.Method
	for _, name := range p.spec(m).Implements {
		out = append(out, il.Method(name))
	}
	return out
}

func (p *Program) OverriddenAndImplementedMethods(m il.Method) []il.Method {
	var out []il.Method
	if o := p.spec(m).Overrides; o != "" {
		out = append(out, il.Method(o))
	}
	return append(out, p.ImplementedMethods(m)...)
}

// Unspecialized drops generic instantiation arguments: "List<int>.Add"
// becomes "List.Add".
func (p *Program) Unspecialized(m il.Method) il.Method {
	name := string(m)
	var sb strings.Builder
	depth := 0
	for _, r := range name {
		switch {
		case r == '<':
			depth++
		case r == '>' && depth > 0:
			depth--
		case depth == 0:
			sb.WriteRune(r)
		}
	}
	return il.Method(sb.String())
}

func (p *Program) HasRequires(m il.Method) bool {
	pm, ok := p.methods[m]
	return ok && pm.requires.Len() > 0
}

func (p *Program) HasEnsures(m il.Method) bool {
	pm, ok := p.methods[m]
	return ok && pm.ensures.Len() > 0
}

func (p *Program) CanInheritContracts(m il.Method) bool {
	inherit := p.spec(m).InheritContracts
	return inherit == nil || *inherit
}

func (p *Program) AccessRequires(m il.Method) (il.CodeProvider, il.Label, bool) {
	pm, ok := p.methods[m]
	if !ok || pm.requires.Len() == 0 {
		return nil, 0, false
	}
	return pm.requires, 0, true
}

func (p *Program) AccessEnsures(m il.Method) (il.CodeProvider, il.Label, bool) {
	pm, ok := p.methods[m]
	if !ok || pm.ensures.Len() == 0 {
		return nil, 0, false
	}
	return pm.ensures, 0, true
}
