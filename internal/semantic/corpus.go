package semantic

import (
	"context"
	"errors"
	"sync"

	"vizsel/internal/embedding"
	"vizsel/internal/logging"
	"vizsel/internal/store"
)

var errShortBatch = errors.New("embedding backend returned short batch")

// CorpusCache caches embeddings of the static variant-description corpus for
// the process lifetime, keyed by model identity. The corpus does not change
// per request, so only the query embedding is computed per selection. An
// optional sqlite cache persists vectors across restarts.
type CorpusCache struct {
	mu         sync.Mutex
	modelKey   string
	vecs       map[string][]float32
	persistent *store.EmbedCache
}

// NewCorpusCache creates a cache. persistent may be nil.
func NewCorpusCache(persistent *store.EmbedCache) *CorpusCache {
	return &CorpusCache{
		vecs:       make(map[string][]float32),
		persistent: persistent,
	}
}

// Invalidate drops the in-memory cache. Tests construct a fresh cache instead;
// this exists for model hot-swaps.
func (c *CorpusCache) Invalidate() {
	c.mu.Lock()
	c.modelKey = ""
	c.vecs = make(map[string][]float32)
	c.mu.Unlock()
}

// Vectors returns embeddings for texts via eng, serving cached entries where
// possible. A model identity change resets the in-memory cache.
func (c *CorpusCache) Vectors(ctx context.Context, eng embedding.Engine, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.modelKey != eng.Name() {
		c.modelKey = eng.Name()
		c.vecs = make(map[string][]float32)
	}

	out := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if vec, ok := c.vecs[text]; ok {
			out[i] = vec
			continue
		}
		if c.persistent != nil {
			if vec, ok, err := c.persistent.Get(c.modelKey, text); err == nil && ok {
				c.vecs[text] = vec
				out[i] = vec
				continue
			}
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	logging.SemanticDebug("CorpusCache: embedding %d/%d texts (model=%s)", len(missing), len(texts), c.modelKey)
	vecs, err := eng.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, errShortBatch
	}

	for j, vec := range vecs {
		text := missing[j]
		c.vecs[text] = vec
		out[missingIdx[j]] = vec
		if c.persistent != nil {
			if err := c.persistent.Put(c.modelKey, text, vec); err != nil {
				logging.StoreDebug("CorpusCache: persist failed: %v", err)
			}
		}
	}
	return out, nil
}
