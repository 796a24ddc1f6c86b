package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEveryScenarioHasOneDefault(t *testing.T) {
	cat := Builtin()
	scenarios := cat.Scenarios()
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		defaults := 0
		for _, v := range cat.Variants(scenario) {
			require.NotEmpty(t, v.Name)
			require.NotEmpty(t, v.Description, "%s needs a description for semantic scoring", v.Name)
			if v.Default {
				defaults++
			}
		}
		assert.Equal(t, 1, defaults, "scenario %s", scenario)
	}
}

func TestLookup(t *testing.T) {
	cat := Builtin()

	v, err := cat.Lookup("trend", "trend-rgb-phase")
	require.NoError(t, err)
	assert.True(t, v.PrefersPhaseData)
	assert.True(t, v.NeedsTimeseries)

	_, err = cat.Lookup("trend", "trend-hologram")
	assert.Error(t, err)
}

func TestDefaultVariant(t *testing.T) {
	cat := Builtin()

	v, ok := cat.DefaultVariant("kpi")
	require.True(t, ok)
	assert.Equal(t, "kpi-single", v.Name)

	_, ok = cat.DefaultVariant("nonexistent")
	assert.False(t, ok)
}

func TestVariantsReturnsCopy(t *testing.T) {
	cat := Builtin()
	first := cat.Variants("trend")
	first[0].Name = "mutated"

	assert.NotEqual(t, "mutated", cat.Variants("trend")[0].Name)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  trend:
    - name: trend-line
      description: basic line chart
      default: true
      needs_timeseries: true
      ideal_entity_count: {min: 1, max: 3}
    - name: trend-custom
      description: custom chart
      prefers_phase_data: true
`), 0644))

	cat, err := LoadFile(path)
	require.NoError(t, err)

	v, err := cat.Lookup("trend", "trend-line")
	require.NoError(t, err)
	assert.True(t, v.Default)
	assert.True(t, v.NeedsTimeseries)
	assert.Equal(t, Range{Min: 1, Max: 3}, v.IdealEntityCount)

	custom, err := cat.Lookup("trend", "trend-custom")
	require.NoError(t, err)
	assert.True(t, custom.PrefersPhaseData)
}

func TestLoadFileRejectsBadCatalogs(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("scenarios: {}\n"), 0644))
	_, err := LoadFile(empty)
	assert.Error(t, err)

	unnamed := filepath.Join(dir, "unnamed.yaml")
	require.NoError(t, os.WriteFile(unnamed, []byte(`
scenarios:
  trend:
    - description: missing name
`), 0644))
	_, err = LoadFile(unnamed)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestReplaceSwapsTable(t *testing.T) {
	cat := New(map[string][]VariantProfile{
		"a": {{Name: "a-one"}},
	})
	cat.Replace(map[string][]VariantProfile{
		"b": {{Name: "b-one"}},
	})

	assert.Empty(t, cat.Variants("a"))
	require.Len(t, cat.Variants("b"), 1)
}

func TestRunWatchLoadsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scenarios:
  trend:
    - name: trend-line
      description: basic line chart
      default: true
`), 0644))

	cat := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunWatch(ctx, cat, path) }()

	require.Eventually(t, func() bool {
		return len(cat.Variants("trend")) == 1
	}, 2*time.Second, 10*time.Millisecond, "initial load")

	// Rewrite inside the poll loop: the watcher registers asynchronously and
	// an edit that lands before registration produces no event.
	require.Eventually(t, func() bool {
		if err := os.WriteFile(path, []byte(`
scenarios:
  kpi:
    - name: kpi-single
      description: single value tile
      default: true
`), 0644); err != nil {
			return false
		}
		return len(cat.Variants("kpi")) == 1
	}, 5*time.Second, 50*time.Millisecond, "reload after edit")

	cancel()
	require.NoError(t, <-done)
}

func TestRunWatchRejectsBrokenInitialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios: {}\n"), 0644))

	err := RunWatch(context.Background(), New(nil), path)
	assert.Error(t, err)
}

func TestWatcherLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	cat := Builtin()

	w, err := NewWatcher(cat, path)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	assert.Equal(t, 0, w.ReloadCount())
	assert.NoError(t, w.Close())
}
