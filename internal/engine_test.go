package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	tt "github.com/gnoverse/ccheck/internal/types"
)

const shapesListing = `
name: shapes
methods:
  - name: Shape.Area
    virtual: true
    requires: ["scale != 0"]
  - name: Circle.Area
    virtual: true
    overrides: Shape.Area
    body:
      - "assert scale != 0"
      - ret
  - name: Circle.Broken
    body:
      - "x = 0"
      - "assert x != 0"
      - ret
  - name: Circle.Never
    requires: ["false"]
    body:
      - "assert x != 0"
      - ret
  - name: Circle.Bad
    body: ["x = 1", "x = 2", "x = 3", ret, ret]
    handlers:
      - {kind: catch, try_start: 0, try_end: 3, handler_start: 4, handler_end: 5}
      - {kind: catch, try_start: 0, try_end: 2, handler_start: 3, handler_end: 4}
`

func TestEngineRunSource(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(zap.NewNop(), Options{InheritContracts: true})
	require.NoError(t, err)

	reports, err := engine.RunSource([]byte(shapesListing))
	require.NoError(t, err)

	byMethod := make(map[string]tt.MethodReport)
	for _, r := range reports {
		byMethod[r.Method] = r
	}

	// abstract methods are skipped
	assert.NotContains(t, byMethod, "Shape.Area")

	area := byMethod["Circle.Area"]
	assert.Equal(t, []string{"L0: assert (scale != 0): true"}, area.Lines)
	assert.False(t, area.Failed())

	broken := byMethod["Circle.Broken"]
	assert.Equal(t, []string{"L1: assert (x != 0): false"}, broken.Lines)
	assert.True(t, broken.Failed())
	assert.Equal(t, 1, broken.Counts()["false"])

	never := byMethod["Circle.Never"]
	assert.True(t, never.Unsatisfiable)
	assert.Equal(t, []string{"Method precondition is unsatisfiable"}, never.Lines)

	bad := byMethod["Circle.Bad"]
	assert.NotEmpty(t, bad.Err)
	assert.True(t, bad.Failed())
}

func TestEngineContractInheritanceOption(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, Options{InheritContracts: false, Methods: []string{"Circle.Area"}})
	require.NoError(t, err)

	reports, err := engine.RunSource([]byte(shapesListing))
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"L0: assert (scale != 0): unproven"}, reports[0].Lines)
}

func TestEngineMethodSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     Options
		ignore   []string
		expected []string
	}{
		{
			name:     "all",
			expected: []string{"Circle.Area", "Circle.Broken", "Circle.Never", "Circle.Bad"},
		},
		{
			name:     "glob",
			opts:     Options{Methods: []string{"Circle.B*"}},
			expected: []string{"Circle.Broken", "Circle.Bad"},
		},
		{
			name:     "skip",
			opts:     Options{Skip: []string{"Circle.B*"}},
			expected: []string{"Circle.Area", "Circle.Never"},
		},
		{
			name:     "ignored",
			ignore:   []string{"Circle.Never", "Circle.Bad"},
			expected: []string{"Circle.Area", "Circle.Broken"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			engine, err := NewEngine(nil, tt.opts)
			require.NoError(t, err)
			for _, m := range tt.ignore {
				engine.IgnoreMethod(m)
			}

			reports, err := engine.RunSource([]byte(shapesListing))
			require.NoError(t, err)

			var methods []string
			for _, r := range reports {
				methods = append(methods, r.Method)
			}
			assert.Equal(t, tt.expected, methods)
		})
	}
}

func TestEngineRunUsesCache(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	filename := filepath.Join(tmpDir, "shapes.yaml")
	writeTestFile(t, filename, shapesListing)

	engine, err := NewEngine(nil, Options{CacheDir: filepath.Join(tmpDir, "cache")})
	require.NoError(t, err)

	first, err := engine.Run(filename)
	require.NoError(t, err)
	require.NotEmpty(t, first)
	assert.Equal(t, filename, first[0].Filename)

	cached, ok := engine.cache.Get(filename)
	require.True(t, ok)
	assert.Equal(t, first, cached)

	second, err := engine.Run(filename)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEngineRunErrors(t *testing.T) {
	t.Parallel()

	engine, err := NewEngine(nil, Options{})
	require.NoError(t, err)

	_, err = engine.Run(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = engine.RunSource([]byte("methods: ["))
	assert.Error(t, err)
}

func TestEngineWatch(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	engine, err := NewEngine(nil, Options{})
	require.NoError(t, err)

	got := make(chan []tt.MethodReport, 1)
	require.NoError(t, engine.Watch([]string{tmpDir}, func(_ string, reports []tt.MethodReport) {
		select {
		case got <- reports:
		default:
		}
	}))
	assert.Error(t, engine.Watch([]string{tmpDir}, nil))
	defer func() { assert.NoError(t, engine.StopWatching()) }()

	writeTestFile(t, filepath.Join(tmpDir, "shapes.yaml"), shapesListing)

	select {
	case reports := <-got:
		assert.NotEmpty(t, reports)
	case <-time.After(5 * time.Second):
		t.Fatal("no report received")
	}
}

func TestIsListing(t *testing.T) {
	t.Parallel()
	assert.True(t, IsListing("a.yaml"))
	assert.True(t, IsListing("dir/b.YML"))
	assert.False(t, IsListing(".ccheck.yaml"))
	assert.False(t, IsListing("a.go"))
}
