package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vizsel/internal/catalog"
	"vizsel/internal/profile"
)

func TestPreferenceFitness(t *testing.T) {
	shape := profile.DataShapeProfile{HasPhaseData: true, HasHighVariance: true}

	// No declared preferences is neutral.
	assert.Equal(t, 0.5, preferenceFitness(catalog.VariantProfile{}, shape))

	// All declared preferences satisfied.
	full := catalog.VariantProfile{PrefersPhaseData: true, PrefersHighVariance: true}
	assert.Equal(t, 1.0, preferenceFitness(full, shape))

	// Half satisfied.
	half := catalog.VariantProfile{PrefersPhaseData: true, PrefersHierarchy: true}
	assert.Equal(t, 0.5, preferenceFitness(half, shape))

	// Declared but unsatisfied.
	miss := catalog.VariantProfile{PrefersAlerts: true}
	assert.Equal(t, 0.0, preferenceFitness(miss, shape))
}

func TestRangeCloseness(t *testing.T) {
	r := catalog.Range{Min: 2, Max: 6}

	center := rangeCloseness(4, r)
	edge := rangeCloseness(2, r)
	near := rangeCloseness(7, r)
	far := rangeCloseness(20, r)

	assert.Equal(t, 1.0, center)
	assert.Greater(t, center, edge)
	assert.GreaterOrEqual(t, edge, 0.7)
	assert.Greater(t, edge, near)
	assert.Greater(t, near, far)
	assert.Greater(t, far, 0.0)
}

func TestRangeClosenessOpenEnded(t *testing.T) {
	r := catalog.Range{Min: 3}
	assert.Equal(t, 1.0, rangeCloseness(3, r))
	assert.Equal(t, 1.0, rangeCloseness(50, r))
	assert.Less(t, rangeCloseness(1, r), 1.0)
}

func TestCountFitnessUndeclared(t *testing.T) {
	assert.Equal(t, 0.6, countFitness(catalog.VariantProfile{}, profile.DataShapeProfile{EntityCount: 3}))
}

func TestShapeScoreBounds(t *testing.T) {
	shapes := []profile.DataShapeProfile{
		{},
		{EntityCount: 1, MetricCount: 1, HasPhaseData: true},
		{EntityCount: 100, MetricCount: 50, InstanceCount: 10000},
	}
	for _, scenario := range catalog.Builtin().Scenarios() {
		for _, v := range catalog.Builtin().Variants(scenario) {
			for _, shape := range shapes {
				score := ShapeScore(v, shape)
				assert.GreaterOrEqual(t, score, 0.0, v.Name)
				assert.LessOrEqual(t, score, 1.0, v.Name)
			}
		}
	}
}

func TestIntentScoreLookup(t *testing.T) {
	assert.Equal(t, 0.95, IntentScore("trend-line", profile.IntentTrend))

	// Unlisted variant of a known family uses the family table.
	assert.Equal(t, 0.85, IntentScore("trend-experimental", profile.IntentTrend))

	// Unknown variant and family is neutral.
	assert.Equal(t, 0.5, IntentScore("mystery-widget", profile.IntentTrend))
}

func TestQueryTypeScoreLookup(t *testing.T) {
	assert.Equal(t, 0.95, QueryTypeScore("kpi-single", profile.QueryStatus))
	assert.Equal(t, 0.95, QueryTypeScore("trend-band", profile.QueryTrend))
	assert.Equal(t, 0.5, QueryTypeScore("kpi-single", profile.QueryDiagnostic))
}

func TestVariantFamily(t *testing.T) {
	assert.Equal(t, "trend", variantFamily("trend-rgb-phase"))
	assert.Equal(t, "kpi", variantFamily("kpi-single"))
	assert.Equal(t, "table", variantFamily("table"))
}
