package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *EmbedCache {
	t.Helper()
	cache, err := OpenEmbedCache(filepath.Join(t.TempDir(), "embed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestEmbedCacheRoundtrip(t *testing.T) {
	cache := openTestCache(t)
	vec := []float32{0.25, -1.5, 3.75}

	require.NoError(t, cache.Put("ollama:embeddinggemma", "axial vibration", vec))

	got, ok, err := cache.Get("ollama:embeddinggemma", "axial vibration")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, vec, got)
}

func TestEmbedCacheMissIsNotAnError(t *testing.T) {
	cache := openTestCache(t)

	_, ok, err := cache.Get("ollama:embeddinggemma", "never stored")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbedCacheKeyedByModel(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.Put("model-a", "text", []float32{1}))

	_, ok, err := cache.Get("model-b", "text")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbedCachePutOverwrites(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.Put("m", "text", []float32{1, 2}))
	require.NoError(t, cache.Put("m", "text", []float32{3, 4}))

	got, ok, err := cache.Get("m", "text")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{3, 4}, got)
}

func TestEmbedCacheInvalidate(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.Put("m", "one", []float32{1}))
	require.NoError(t, cache.Put("other", "two", []float32{2}))

	require.NoError(t, cache.Invalidate("m"))

	_, ok, err := cache.Get("m", "one")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = cache.Get("other", "two")
	require.NoError(t, err)
	assert.True(t, ok)
}
