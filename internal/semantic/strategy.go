// Package semantic scores a query against variant descriptions using the best
// available strategy: a caller-supplied embedding client, a token-level
// late-interaction scorer, a sentence-level embedding scorer, or a pure-lexical
// TF-IDF fallback that needs no model and is always available.
package semantic

import (
	"context"
	"sync"
	"time"

	"vizsel/internal/logging"
)

// Scorer is one scoring strategy. Score returns one unit-interval score per
// candidate; an empty result means the strategy is unavailable for this
// request and the next strategy in the chain should be tried.
type Scorer interface {
	Name() string
	Score(ctx context.Context, query string, candidates []string) ([]float64, error)
}

// Gate throttles reconnection probing to a flaky backend. After a failure the
// backend is considered unavailable for the cooldown window instead of being
// re-probed on every request.
type Gate struct {
	mu          sync.Mutex
	lastFailure time.Time
	cooldown    time.Duration
}

// NewGate creates a gate with the given cooldown window.
func NewGate(cooldown time.Duration) *Gate {
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Gate{cooldown: cooldown}
}

// Available reports whether the backend may be probed.
func (g *Gate) Available() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastFailure.IsZero() || time.Since(g.lastFailure) >= g.cooldown
}

// RecordFailure starts a cooldown window.
func (g *Gate) RecordFailure() {
	g.mu.Lock()
	g.lastFailure = time.Now()
	g.mu.Unlock()
}

// RecordSuccess clears any pending cooldown.
func (g *Gate) RecordSuccess() {
	g.mu.Lock()
	g.lastFailure = time.Time{}
	g.mu.Unlock()
}

// Chain tries scorers in priority order until one produces a full result set.
type Chain struct {
	scorers []Scorer
}

// NewChain builds a chain from the given strategies, tried in order.
func NewChain(scorers ...Scorer) *Chain {
	return &Chain{scorers: scorers}
}

// Score runs the chain. Returns the winning strategy's scores and name.
// Returns (nil, "") only when the chain holds no strategy that can answer,
// which cannot happen when the lexical scorer terminates the chain.
func (c *Chain) Score(ctx context.Context, query string, candidates []string) ([]float64, string) {
	for _, s := range c.scorers {
		if s == nil {
			continue
		}
		scores, err := s.Score(ctx, query, candidates)
		if err != nil {
			logging.Get(logging.CategorySemantic).Warn("Strategy %s failed: %v", s.Name(), err)
			continue
		}
		if len(scores) != len(candidates) {
			logging.SemanticDebug("Strategy %s unavailable, trying next", s.Name())
			continue
		}
		logging.Semantic("Semantic scores produced by strategy %s", s.Name())
		return scores, s.Name()
	}
	return nil, ""
}
