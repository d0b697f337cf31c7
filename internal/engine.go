package internal

import (
	"fmt"
	"os"
	"path"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/internal/analysis/cfg"
	"github.com/gnoverse/ccheck/internal/il"
	"github.com/gnoverse/ccheck/internal/program"
	tt "github.com/gnoverse/ccheck/internal/types"
	"github.com/gnoverse/ccheck/internal/verify"
)

// Options configure an Engine.
type Options struct {
	// InheritContracts enables contract inheritance through overrides
	// and interface implementations.
	InheritContracts bool
	// Methods restricts verification to methods matching one of the
	// patterns. Empty selects every method.
	Methods []string
	// Skip excludes methods matching one of the patterns.
	Skip []string
	// CacheDir enables the result cache when set.
	CacheDir string
	// Dependencies are files whose change invalidates cached results,
	// typically the configuration file.
	Dependencies []string
}

// Engine verifies assembly listings.
type Engine struct {
	logger  *zap.Logger
	opts    Options
	cache   *Cache
	ignored map[string]bool

	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	watchDirs  []string
	isWatching bool
	// onReport receives the reports produced in watch mode.
	onReport func(filename string, reports []tt.MethodReport)
}

// NewEngine creates a verification engine. A nil logger is replaced by a
// no-op logger.
func NewEngine(logger *zap.Logger, opts Options) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger:  logger,
		opts:    opts,
		ignored: make(map[string]bool),
	}
	if opts.CacheDir != "" {
		cache, err := NewCache(opts.CacheDir, opts.Dependencies...)
		if err != nil {
			return nil, err
		}
		e.cache = cache
	}
	return e, nil
}

// IgnoreMethod excludes the methods matching pattern.
func (e *Engine) IgnoreMethod(pattern string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ignored[pattern] = true
}

// Run verifies the listing stored in filename.
func (e *Engine) Run(filename string) ([]tt.MethodReport, error) {
	if e.cache != nil {
		if reports, ok := e.cache.Get(filename); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return reports, nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading listing: %w", err)
	}
	reports, err := e.run(filename, source)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, reports); err != nil {
			e.logger.Warn("failed to cache results", zap.String("file", filename), zap.Error(err))
		}
	}
	return reports, nil
}

// RunSource verifies a listing held in memory.
func (e *Engine) RunSource(source []byte) ([]tt.MethodReport, error) {
	return e.run("", source)
}

func (e *Engine) run(filename string, source []byte) ([]tt.MethodReport, error) {
	p, err := program.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("error parsing listing: %w", err)
	}

	mc := cfg.NewMethodCache(p, p, p,
		cfg.WithLogger(e.logger.With(zap.String("file", filename))),
		cfg.WithContractInheritance(e.opts.InheritContracts))

	var reports []tt.MethodReport
	for _, m := range p.Methods() {
		if !e.selected(m) {
			continue
		}
		report, ok := e.verifyMethod(mc, p, m)
		if !ok {
			continue
		}
		report.Filename = filename
		reports = append(reports, report)
	}
	return reports, nil
}

// verifyMethod returns false when the method is skipped.
func (e *Engine) verifyMethod(mc *cfg.MethodCache, meta il.Metadata, m il.Method) (tt.MethodReport, bool) {
	report := tt.MethodReport{Method: string(m)}

	d, err := verify.NewDriver(mc, meta, m)
	switch {
	case cfg.IsUnsupported(err):
		e.logger.Info("skipping method", zap.String("method", string(m)), zap.Error(err))
		return report, false
	case err != nil:
		e.logger.Error("method analysis aborted", zap.String("method", string(m)), zap.Error(err))
		report.Err = err.Error()
		return report, true
	}

	results, unsat := d.Check()
	if unsat {
		report.Unsatisfiable = true
		report.Lines = []string{verify.PreconditionUnsatisfiable}
		return report, true
	}
	for _, r := range results {
		report.Lines = append(report.Lines, r.String())
		report.Obligations = append(report.Obligations, tt.ObligationReport{
			PC:      r.Obligation.PC.String(),
			Kind:    r.Obligation.Kind.String(),
			Cond:    r.Obligation.Cond.String(),
			Outcome: verify.OutcomeText(r.Outcome),
		})
	}
	return report, true
}

func (e *Engine) selected(m il.Method) bool {
	name := string(m)
	e.mu.Lock()
	defer e.mu.Unlock()
	for pattern := range e.ignored {
		if matchMethod(pattern, name) {
			return false
		}
	}
	for _, pattern := range e.opts.Skip {
		if matchMethod(pattern, name) {
			return false
		}
	}
	if len(e.opts.Methods) == 0 {
		return true
	}
	for _, pattern := range e.opts.Methods {
		if matchMethod(pattern, name) {
			return true
		}
	}
	return false
}

// matchMethod matches a method name against a shell pattern such as
// "Circle.*". A malformed pattern matches only itself.
func matchMethod(pattern, name string) bool {
	ok, err := path.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return ok
}
