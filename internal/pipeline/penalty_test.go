package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"vizsel/internal/profile"
)

func TestPenaltyNeutralWithoutMatchingRules(t *testing.T) {
	score := PenaltyScore(DefaultRules(), "no-such-variant", profile.DataShapeProfile{}, nil)
	assert.Equal(t, 0.5, score)
}

func TestPenaltyPhaseDataPair(t *testing.T) {
	shape := profile.DataShapeProfile{HasTimeseries: true, HasPhaseData: true}

	boosted := PenaltyScore(DefaultRules(), "trend-rgb-phase", shape, nil)
	penalized := PenaltyScore(DefaultRules(), "trend-line", shape, nil)

	// +0.50 boost saturates the accumulator; -0.35 shifts to 0.15.
	assert.Equal(t, 1.0, boosted)
	assert.InDelta(t, 0.15, penalized, 1e-9)
}

func TestPenaltyAccumulatorClamps(t *testing.T) {
	always := Predicate{"always", func(profile.DataShapeProfile) bool { return true }}
	rules := []Rule{
		{"v", always, +0.4},
		{"v", always, +0.4},
		{"w", always, -0.4},
		{"w", always, -0.4},
	}

	assert.Equal(t, 1.0, PenaltyScore(rules, "v", profile.DataShapeProfile{}, nil))
	assert.Equal(t, 0.0, PenaltyScore(rules, "w", profile.DataShapeProfile{}, nil))
}

func TestPenaltyRulesAreAdditive(t *testing.T) {
	shape := profile.DataShapeProfile{HasAlerts: true, HasHighVariance: true}

	// alert-list collects only its alert boost; variance rules target other
	// variants and must not leak in.
	assert.InDelta(t, 0.8, PenaltyScore(DefaultRules(), "alert-list", shape, nil), 1e-9)
}

func TestPenaltyAlertWidgetsWithoutAlerts(t *testing.T) {
	score := PenaltyScore(DefaultRules(), "alert-list", profile.DataShapeProfile{}, nil)
	assert.InDelta(t, 0.05, score, 1e-9)
}
