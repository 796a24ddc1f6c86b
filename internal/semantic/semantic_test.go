package semantic

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalScorerRanksOverlappingDescription(t *testing.T) {
	candidates := []string{
		"Three-phase electrical time series chart plotting phase readings together.",
		"Donut chart breaking a whole into percentage shares.",
		"Side-by-side bar chart comparing entities.",
	}

	scores, err := NewLexicalScorer().Score(context.Background(),
		"three phase electrical readings over time", candidates)
	require.NoError(t, err)
	require.Len(t, scores, len(candidates))

	for _, s := range scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Greater(t, scores[0], scores[1])
	assert.Greater(t, scores[0], scores[2])
}

func TestLexicalScorerEmptyCandidates(t *testing.T) {
	scores, err := NewLexicalScorer().Score(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Nil(t, scores)
}

func TestLexicalScorerNoOverlap(t *testing.T) {
	scores, err := NewLexicalScorer().Score(context.Background(),
		"quantum flux capacitor", []string{"donut chart of percentage shares"})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 0.0, scores[0])
}

// stubScorer is a fixed-response strategy for chain tests.
type stubScorer struct {
	name   string
	scores []float64
	err    error
}

func (s *stubScorer) Name() string { return s.name }
func (s *stubScorer) Score(context.Context, string, []string) ([]float64, error) {
	return s.scores, s.err
}

func TestChainFallsThroughToLexical(t *testing.T) {
	chain := NewChain(
		nil,
		&stubScorer{name: "broken", err: errors.New("backend down")},
		&stubScorer{name: "empty"},
		NewLexicalScorer(),
	)

	scores, strategy := chain.Score(context.Background(), "bar chart",
		[]string{"bar chart comparing entities", "donut chart"})

	require.Len(t, scores, 2)
	assert.Equal(t, "lexical", strategy)
}

func TestChainFirstFullResultWins(t *testing.T) {
	chain := NewChain(
		&stubScorer{name: "primary", scores: []float64{0.9, 0.1}},
		NewLexicalScorer(),
	)

	scores, strategy := chain.Score(context.Background(), "q", []string{"a", "b"})
	assert.Equal(t, "primary", strategy)
	assert.Equal(t, []float64{0.9, 0.1}, scores)
}

func TestChainRejectsShortResult(t *testing.T) {
	chain := NewChain(
		&stubScorer{name: "short", scores: []float64{0.9}},
		&stubScorer{name: "full", scores: []float64{0.5, 0.5, 0.5}},
	)

	_, strategy := chain.Score(context.Background(), "q", []string{"a", "b", "c"})
	assert.Equal(t, "full", strategy)
}

func TestChainExhausted(t *testing.T) {
	chain := NewChain(&stubScorer{name: "empty"})
	scores, strategy := chain.Score(context.Background(), "q", []string{"a"})
	assert.Nil(t, scores)
	assert.Equal(t, "", strategy)
}

func TestGateCooldown(t *testing.T) {
	gate := NewGate(time.Hour)
	assert.True(t, gate.Available())

	gate.RecordFailure()
	assert.False(t, gate.Available())

	gate.RecordSuccess()
	assert.True(t, gate.Available())
}

func TestGateCooldownExpires(t *testing.T) {
	gate := NewGate(time.Nanosecond)
	gate.RecordFailure()
	time.Sleep(time.Millisecond)
	assert.True(t, gate.Available())
}

func TestContentTokensDropsStopwords(t *testing.T) {
	tokens := contentTokens("Show me the bearing vibration trend!")
	assert.Equal(t, []string{"bearing", "vibration", "trend"}, tokens)
}
