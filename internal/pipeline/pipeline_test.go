package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizsel/internal/catalog"
	"vizsel/internal/config"
	"vizsel/internal/logging"
	"vizsel/internal/profile"
)

func testRequestLogger() *logging.RequestLogger {
	return logging.WithRequestID(logging.CategoryPipeline, "test")
}

func newTestSelector(t *testing.T, cat *catalog.Catalog, mutate func(*config.Config)) *Selector {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	sel, err := New(&cfg, cat, nil, nil, nil)
	require.NoError(t, err)
	return sel
}

func timeseriesShape() profile.DataShapeProfile {
	return profile.DataShapeProfile{
		EntityCount:   1,
		MetricCount:   1,
		InstanceCount: 100,
		HasTimeseries: true,
	}
}

// twoVariantCatalog builds a scenario whose two variants are structurally
// indistinguishable, forcing a composite-score tie.
func twoVariantCatalog() *catalog.Catalog {
	return catalog.New(map[string][]catalog.VariantProfile{
		"tied": {
			{Name: "tied-one", Description: "generic chart of a metric"},
			{Name: "tied-two", Description: "generic chart of a metric"},
		},
	})
}

func TestRunSelectionTotality(t *testing.T) {
	sel := newTestSelector(t, nil, nil)
	shapes := []profile.DataShapeProfile{
		{},
		timeseriesShape(),
		{EntityCount: 6, MetricCount: 3, InstanceCount: 500, HasTimeseries: true, HasHighVariance: true},
		{EntityCount: 2, MetricCount: 1, HasAlerts: true},
	}

	for _, scenario := range sel.Catalog().Scenarios() {
		names := map[string]bool{}
		for _, v := range sel.Catalog().Variants(scenario) {
			names[v.Name] = true
		}
		for _, shape := range shapes {
			result := sel.RunSelection(context.Background(), Request{
				Scenario: scenario,
				Query:    "how is it performing",
				Shape:    shape,
			})
			assert.True(t, names[result.Variant],
				"scenario %s returned %q, not in catalog", scenario, result.Variant)
			assert.NotEmpty(t, result.Method)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		}
	}
}

func TestRunSelectionEmptyCatalog(t *testing.T) {
	sel := newTestSelector(t, catalog.New(nil), nil)
	result := sel.RunSelection(context.Background(), Request{Scenario: "trend", Query: "trend"})

	assert.Equal(t, "trend", result.Variant)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestRunSelectionSingleVariantCatalog(t *testing.T) {
	cat := catalog.New(map[string][]catalog.VariantProfile{
		"solo": {{Name: "solo-table", Description: "plain table"}},
	})
	sel := newTestSelector(t, cat, nil)

	result := sel.RunSelection(context.Background(), Request{Scenario: "solo", Query: "show data"})
	assert.Equal(t, "solo-table", result.Variant)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, MethodSingleVariant, result.Method)
}

func TestFilterShortCircuit(t *testing.T) {
	cat := catalog.New(map[string][]catalog.VariantProfile{
		"mixed": {
			{Name: "mixed-snapshot", Description: "point-in-time view"},
			{Name: "mixed-history", Description: "historical view", NeedsTimeseries: true},
		},
	})
	sel := newTestSelector(t, cat, nil)

	// No timeseries eliminates mixed-history, leaving exactly one survivor.
	result := sel.RunSelection(context.Background(), Request{
		Scenario: "mixed",
		Query:    "what is the value",
		Shape:    profile.DataShapeProfile{EntityCount: 1, MetricCount: 1},
	})

	assert.Equal(t, "mixed-snapshot", result.Variant)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, MethodFilterOnly, result.Method)
	assert.Contains(t, result.Eliminations, "mixed-history")
}

func TestOverfilterRetainsCandidates(t *testing.T) {
	cat := catalog.New(map[string][]catalog.VariantProfile{
		"strict": {
			{Name: "strict-a", Description: "needs history", NeedsTimeseries: true},
			{Name: "strict-b", Description: "needs fleet", NeedsMultipleEntities: true},
		},
	})
	sel := newTestSelector(t, cat, nil)

	result := sel.RunSelection(context.Background(), Request{
		Scenario: "strict",
		Query:    "value",
		Shape:    profile.DataShapeProfile{EntityCount: 1, MetricCount: 1},
	})

	// Both variants violate prerequisites; the filter must retain them
	// rather than return nothing.
	assert.Contains(t, []string{"strict-a", "strict-b"}, result.Variant)
}

func TestCompositeScoreBounds(t *testing.T) {
	sel := newTestSelector(t, nil, nil)
	s := &State{
		Scenario:   "trend",
		Query:      "vibration trend over time",
		Shape:      timeseriesShape(),
		Candidates: sel.Catalog().Variants("trend"),
	}
	s.log = testRequestLogger()

	ctx := context.Background()
	sel.profileData(ctx, s)
	sel.hardFilter(ctx, s)
	sel.scoreShape(ctx, s)
	sel.scoreIntent(ctx, s)
	sel.applyPenalties(ctx, s)
	sel.rankNode(ctx, s)

	require.Len(t, s.CompositeScores, len(s.Survivors))
	for name, score := range s.CompositeScores {
		assert.GreaterOrEqual(t, score, 0.0, name)
		assert.LessOrEqual(t, score, 1.0, name)
	}
	for _, v := range s.Survivors {
		assert.Contains(t, s.CompositeScores, v.Name)
	}
}

func TestAmbiguityTriggersEscalation(t *testing.T) {
	sel := newTestSelector(t, twoVariantCatalog(), nil)

	result := sel.RunSelection(context.Background(), Request{
		Scenario: "tied",
		Query:    "show the metric",
		Shape:    profile.DataShapeProfile{EntityCount: 1, MetricCount: 1},
	})

	// A zero gap must escalate past plain ranking.
	assert.NotEqual(t, MethodGraph, result.Method)
	assert.Contains(t, result.Trace, nodeSemanticTieBrk)
}

func TestFallbackSafetyAllBackendsDisabled(t *testing.T) {
	sel := newTestSelector(t, twoVariantCatalog(), func(c *config.Config) {
		c.Pipeline.SemanticEnabled = false
	})

	result := sel.RunSelection(context.Background(), Request{
		Scenario: "tied",
		Query:    "show the metric",
		Shape:    profile.DataShapeProfile{EntityCount: 1, MetricCount: 1},
	})

	assert.Contains(t, []string{MethodGraph, MethodGraphValidated}, result.Method)
	// Tie broken deterministically by name.
	assert.Equal(t, "tied-one", result.Variant)
}

func TestPhaseDataPrefersRGBVariant(t *testing.T) {
	sel := newTestSelector(t, nil, func(c *config.Config) {
		c.Pipeline.SemanticEnabled = false
	})

	shape := timeseriesShape()
	shape.HasPhaseData = true

	result := sel.RunSelection(context.Background(), Request{
		Scenario:  "trend",
		Query:     "phase current trend",
		Intent:    profile.IntentTrend,
		QueryType: profile.QueryTrend,
		Shape:     shape,
	})

	assert.Equal(t, "trend-rgb-phase", result.Variant)
}

func TestRankConfidenceFormula(t *testing.T) {
	s := &State{
		CompositeScores: map[string]float64{"a": 0.60, "b": 0.40},
	}
	s.rank(defaultAmbiguityGap, defaultMinTopScore)

	assert.Equal(t, "a", s.TopVariant)
	assert.InDelta(t, 0.20, s.Gap, 1e-9)
	// min(1.0, 0.60*1.5 + 0.20)
	assert.InDelta(t, 1.0, s.Confidence, 1e-9)
	assert.False(t, s.Ambiguous)
}

func TestRankAmbiguousWhenTopScoreLow(t *testing.T) {
	s := &State{
		CompositeScores: map[string]float64{"a": 0.40, "b": 0.20},
	}
	s.rank(defaultAmbiguityGap, defaultMinTopScore)

	// Gap is wide but the winner is weak in absolute terms.
	assert.True(t, s.Ambiguous)
}

func TestRankEmptySurvivors(t *testing.T) {
	s := &State{CompositeScores: map[string]float64{}}
	s.rank(defaultAmbiguityGap, defaultMinTopScore)

	assert.Equal(t, "", s.TopVariant)
	assert.Equal(t, 0.0, s.Confidence)
}

func TestRankSingleEntryGapIsZero(t *testing.T) {
	s := &State{CompositeScores: map[string]float64{"a": 0.60}}
	s.rank(defaultAmbiguityGap, defaultMinTopScore)

	assert.Equal(t, "a", s.TopVariant)
	assert.Equal(t, 0.0, s.Gap)
	// min(1.0, 0.60*1.5 + 0), not inflated by a phantom gap
	assert.InDelta(t, 0.90, s.Confidence, 1e-9)
	assert.False(t, s.Ambiguous)
}

func TestFinalizeWithoutScoresDegradesToScenario(t *testing.T) {
	sel := newTestSelector(t, twoVariantCatalog(), nil)
	s := &State{Scenario: "tied", log: testRequestLogger()}
	sel.finalizeNode(context.Background(), s)

	assert.Equal(t, "tied", s.Selected)
	assert.Equal(t, MethodGraph, s.Method)
}
