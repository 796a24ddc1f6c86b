package reasoning

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient returns canned responses: the first call gets selection, the
// second gets verdict.
type scriptedClient struct {
	selection string
	verdict   string
	err       error
	calls     int
}

func (c *scriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

func (c *scriptedClient) CompleteWithSystem(_ context.Context, _, _ string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if c.calls == 1 {
		return c.selection, nil
	}
	return c.verdict, nil
}

func tieBreakRequest() Request {
	return Request{
		Query:            "phase current trend",
		ShapeDescription: "entities=1 metrics=1; time series present; three-phase data",
		QueryType:        "trend",
		QuestionIntent:   "trend",
		Candidates: []Candidate{
			{Name: "trend-line", Description: "basic line chart", Composite: 0.52},
			{Name: "trend-rgb-phase", Description: "three-phase chart", Composite: 0.50},
		},
	}
}

func TestDecideApprovedPick(t *testing.T) {
	client := &scriptedClient{
		selection: "The data is three-phase.\nSELECTED: trend-rgb-phase\nRATIONALE: shape has three-phase data",
		verdict:   "VERDICT: APPROVE",
	}
	breaker := NewTieBreaker(client)

	d, err := breaker.Decide(context.Background(), tieBreakRequest())
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "trend-rgb-phase", d.Variant)
	assert.Equal(t, "shape has three-phase data", d.Rationale)
	assert.Equal(t, 2, client.calls)
}

func TestDecideVetoedPick(t *testing.T) {
	client := &scriptedClient{
		selection: "SELECTED: trend-line\nRATIONALE: looks fine",
		verdict:   "VERDICT: VETO",
	}
	d, err := NewTieBreaker(client).Decide(context.Background(), tieBreakRequest())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDecidePickOutsideCandidateSet(t *testing.T) {
	client := &scriptedClient{
		selection: "SELECTED: pie-chart\nRATIONALE: invented",
		verdict:   "VERDICT: APPROVE",
	}
	d, err := NewTieBreaker(client).Decide(context.Background(), tieBreakRequest())
	require.NoError(t, err)
	assert.Nil(t, d)
	// The validation call must not run for a discarded pick.
	assert.Equal(t, 1, client.calls)
}

func TestDecideBackendFailureIsNoOp(t *testing.T) {
	client := &scriptedClient{err: errors.New("model offline")}
	d, err := NewTieBreaker(client).Decide(context.Background(), tieBreakRequest())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDecideUnparseableOutput(t *testing.T) {
	client := &scriptedClient{selection: "I think the line chart is nice."}
	d, err := NewTieBreaker(client).Decide(context.Background(), tieBreakRequest())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDecideNilClientDefers(t *testing.T) {
	var breaker *TieBreaker
	assert.False(t, breaker.Available())

	d, err := NewTieBreaker(nil).Decide(context.Background(), tieBreakRequest())
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestParseSelection(t *testing.T) {
	variant, rationale := parseSelection(
		"reasoning text\nSELECTED: `trend-band`\nRATIONALE: high variance present\n")
	assert.Equal(t, "trend-band", variant)
	assert.Equal(t, "high variance present", rationale)

	variant, _ = parseSelection("no structured lines here")
	assert.Equal(t, "", variant)
}

func TestBuildSelectionPromptRanksCandidates(t *testing.T) {
	prompt := buildSelectionPrompt(tieBreakRequest())

	first := strings.Index(prompt, "trend-line")
	second := strings.Index(prompt, "trend-rgb-phase")
	require.Positive(t, first)
	require.Positive(t, second)
	assert.Less(t, first, second, "higher composite must be listed first")
	assert.Contains(t, prompt, "SELECTED:")
}
