package semantic

import (
	"context"
	"strings"

	"vizsel/internal/embedding"
	"vizsel/internal/logging"
)

// =============================================================================
// SENTENCE-LEVEL SCORER
// =============================================================================

// SentenceScorer scores query-candidate pairs by cosine similarity of
// sentence-level embeddings. It serves two chain positions: wrapped around a
// caller-supplied engine (optionally with a precomputed query vector, avoiding
// a redundant model call) and around the process-configured engine.
type SentenceScorer struct {
	name     string
	engine   embedding.Engine
	corpus   *CorpusCache
	gate     *Gate
	queryVec []float32
}

// NewSentenceScorer creates a sentence-level scorer. engine may be nil, in
// which case the scorer reports itself unavailable. queryVec may be nil.
func NewSentenceScorer(name string, engine embedding.Engine, corpus *CorpusCache, gate *Gate, queryVec []float32) *SentenceScorer {
	return &SentenceScorer{name: name, engine: engine, corpus: corpus, gate: gate, queryVec: queryVec}
}

// Name returns the strategy name.
func (s *SentenceScorer) Name() string { return s.name }

// Score embeds the query and compares it to cached candidate embeddings.
func (s *SentenceScorer) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if s.engine == nil || len(candidates) == 0 {
		return nil, nil
	}
	if !s.gate.Available() {
		logging.SemanticDebug("%s: backend in cooldown, skipping", s.name)
		return nil, nil
	}

	queryVec := s.queryVec
	if len(queryVec) == 0 {
		vec, err := s.engine.Embed(ctx, query)
		if err != nil {
			s.gate.RecordFailure()
			return nil, err
		}
		queryVec = vec
	}

	candVecs, err := s.corpus.Vectors(ctx, s.engine, candidates)
	if err != nil {
		s.gate.RecordFailure()
		return nil, err
	}
	s.gate.RecordSuccess()

	scores := make([]float64, len(candidates))
	for i, vec := range candVecs {
		sim, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			return nil, err
		}
		scores[i] = embedding.SimilarityToUnit(sim)
	}
	return scores, nil
}

// =============================================================================
// LATE-INTERACTION SCORER
// =============================================================================

// LateInteractionScorer reranks the query against candidate texts at token
// level: every token of both sides is embedded, each query token is matched to
// its best candidate token (max-sim), and the per-token maxima are averaged.
// Preferred over sentence-level scoring because it resists false positives
// from sentence-level paraphrase collisions.
type LateInteractionScorer struct {
	engine embedding.Engine
	corpus *CorpusCache
	gate   *Gate
}

// NewLateInteractionScorer creates a token-level scorer. engine may be nil.
func NewLateInteractionScorer(engine embedding.Engine, corpus *CorpusCache, gate *Gate) *LateInteractionScorer {
	return &LateInteractionScorer{engine: engine, corpus: corpus, gate: gate}
}

// Name returns the strategy name.
func (s *LateInteractionScorer) Name() string { return "late-interaction" }

// Score computes max-sim token matching between query and each candidate.
func (s *LateInteractionScorer) Score(ctx context.Context, query string, candidates []string) ([]float64, error) {
	if s.engine == nil || len(candidates) == 0 {
		return nil, nil
	}
	if !s.gate.Available() {
		logging.SemanticDebug("late-interaction: backend in cooldown, skipping")
		return nil, nil
	}

	queryTokens := contentTokens(query)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	queryVecs, err := s.corpus.Vectors(ctx, s.engine, queryTokens)
	if err != nil {
		s.gate.RecordFailure()
		return nil, err
	}

	scores := make([]float64, len(candidates))
	for i, cand := range candidates {
		candTokens := contentTokens(cand)
		if len(candTokens) == 0 {
			scores[i] = 0
			continue
		}
		candVecs, err := s.corpus.Vectors(ctx, s.engine, candTokens)
		if err != nil {
			s.gate.RecordFailure()
			return nil, err
		}

		var total float64
		for _, qv := range queryVecs {
			best := -1.0
			for _, cv := range candVecs {
				sim, err := embedding.CosineSimilarity(qv, cv)
				if err != nil {
					continue
				}
				if sim > best {
					best = sim
				}
			}
			total += embedding.SimilarityToUnit(best)
		}
		scores[i] = total / float64(len(queryVecs))
	}
	s.gate.RecordSuccess()
	return scores, nil
}

// contentTokens lowercases and splits text into alphanumeric tokens, dropping
// stopwords so token matching works on content words.
func contentTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 1 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "to": true, "in": true,
	"for": true, "on": true, "with": true, "at": true, "by": true, "from": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true,
	"and": true, "or": true, "but": true, "as": true, "that": true, "this": true,
	"it": true, "its": true, "what": true, "how": true, "show": true, "me": true,
}
