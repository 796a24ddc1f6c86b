package semantic

import (
	"context"
	"math"
)

// LexicalScorer is the model-free TF-IDF cosine fallback. It is always
// available, so it terminates every strategy chain. Callers on a
// latency-sensitive path can force it to avoid cold-starting a model.
type LexicalScorer struct{}

// NewLexicalScorer creates the TF-IDF fallback scorer.
func NewLexicalScorer() *LexicalScorer { return &LexicalScorer{} }

// Name returns the strategy name.
func (s *LexicalScorer) Name() string { return "lexical" }

// Score computes TF-IDF cosine similarity between the query and each
// candidate, with IDF weights derived from the candidate corpus plus query.
func (s *LexicalScorer) Score(_ context.Context, query string, candidates []string) ([]float64, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	docs := make([][]string, 0, len(candidates)+1)
	docs = append(docs, contentTokens(query))
	for _, c := range candidates {
		docs = append(docs, contentTokens(c))
	}

	idf := inverseDocFrequency(docs)
	queryVec := tfidfVector(docs[0], idf)

	scores := make([]float64, len(candidates))
	for i := range candidates {
		scores[i] = sparseCosine(queryVec, tfidfVector(docs[i+1], idf))
	}
	return scores, nil
}

// inverseDocFrequency computes smoothed IDF weights over the document set.
func inverseDocFrequency(docs [][]string) map[string]float64 {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, tok := range doc {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for tok, count := range df {
		idf[tok] = math.Log((n+1)/(float64(count)+1)) + 1
	}
	return idf
}

func tfidfVector(doc []string, idf map[string]float64) map[string]float64 {
	if len(doc) == 0 {
		return nil
	}
	tf := make(map[string]float64, len(doc))
	for _, tok := range doc {
		tf[tok]++
	}
	vec := make(map[string]float64, len(tf))
	for tok, count := range tf {
		vec[tok] = (count / float64(len(doc))) * idf[tok]
	}
	return vec
}

// sparseCosine computes cosine similarity between sparse vectors. Components
// are non-negative, so the result lies in [0,1].
func sparseCosine(a, b map[string]float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, magA, magB float64
	for tok, va := range a {
		magA += va * va
		if vb, ok := b[tok]; ok {
			dot += va * vb
		}
	}
	for _, vb := range b {
		magB += vb * vb
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
