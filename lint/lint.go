// Package lint drives verification over files and directories and loads
// the .ccheck.yaml configuration.
package lint

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/gnoverse/ccheck/internal"
	tt "github.com/gnoverse/ccheck/internal/types"
)

// DefaultConfigFile is the configuration file name looked up by the CLI.
const DefaultConfigFile = ".ccheck.yaml"

type VerifyEngine interface {
	Run(filePath string) ([]tt.MethodReport, error)
	RunSource(source []byte) ([]tt.MethodReport, error)
	IgnoreMethod(pattern string)
}

// New creates an engine configured from configurationPath. An empty path
// or a missing file uses the default configuration.
func New(logger *zap.Logger, configurationPath string) (*internal.Engine, error) {
	config := DefaultConfig()
	if configurationPath != "" {
		var err error
		config, err = LoadConfig(configurationPath)
		if err != nil {
			return nil, fmt.Errorf("error loading configuration: %w", err)
		}
	}
	return NewFromConfig(logger, config, configurationPath)
}

// NewFromConfig creates an engine from an already loaded configuration.
// configurationPath anchors a relative cache directory and invalidates
// cached results when the file changes.
func NewFromConfig(logger *zap.Logger, config Config, configurationPath string) (*internal.Engine, error) {
	return internal.NewEngine(logger, config.engineOptions(configurationPath))
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine VerifyEngine,
	sources [][]byte,
	processor func(VerifyEngine, []byte) ([]tt.MethodReport, error),
) ([]tt.MethodReport, error) {
	var all []tt.MethodReport
	for i, source := range sources {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		reports, err := processor(engine, source)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
			}
			return nil, err
		}
		all = append(all, reports...)
	}

	return all, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine VerifyEngine,
	paths []string,
	processor func(VerifyEngine, string) ([]tt.MethodReport, error),
) ([]tt.MethodReport, error) {
	var all []tt.MethodReport
	for _, path := range paths {
		reports, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return all, err
		}
		all = append(all, reports...)
	}

	return all, nil
}

// ProcessPath verifies a listing file, or every listing below a directory
// using one worker per CPU. On cancellation it returns the reports gathered
// so far together with the context error.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine VerifyEngine,
	path string,
	processor func(VerifyEngine, string) ([]tt.MethodReport, error),
) ([]tt.MethodReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		if !internal.IsListing(path) {
			return nil, nil
		}
		return processor(engine, path)
	}

	var files []string
	err = filepath.Walk(path, func(filePath string, fileInfo os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !fileInfo.IsDir() && internal.IsListing(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", path, err)
	}

	bar := newProgressBar(len(files), path, progressOutput)

	type result struct {
		reports []tt.MethodReport
		err     error
	}
	results := make(chan result, len(files))
	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup

	var cancelled error
	for _, filePath := range files {
		if cancelled = ctx.Err(); cancelled != nil {
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
		case sem <- struct{}{}:
		}
		if cancelled != nil {
			break
		}

		wg.Add(1)
		go func(fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			reports, err := processor(engine, fp)
			if err != nil && logger != nil {
				logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
			}
			results <- result{reports: reports, err: err}
			_ = bar.Add(1)
		}(filePath)
	}

	wg.Wait()
	close(results)

	reports := make([]tt.MethodReport, 0, len(files))
	for r := range results {
		if r.err != nil {
			continue
		}
		reports = append(reports, r.reports...)
	}
	_ = bar.Finish()

	return reports, cancelled
}

// progressOutput receives the progress bar of directory runs.
var progressOutput io.Writer = os.Stderr

func newProgressBar(n int, description string, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}

func ProcessFile(engine VerifyEngine, filePath string) ([]tt.MethodReport, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine VerifyEngine, source []byte) ([]tt.MethodReport, error) {
	return engine.RunSource(source)
}
