package pipeline

import (
	"vizsel/internal/logging"
	"vizsel/internal/profile"
)

// =============================================================================
// PENALTY / BOOST ENGINE
// =============================================================================
//
// Context rules adjust survivors up or down based on shape facts the blunt
// affinity tables cannot express. Rules are data, not code: each one names a
// variant, a shape predicate, and a signed delta. Per-variant deltas
// accumulate, clamp to [-0.5, 0.5], and shift into [0, 1] as 0.5 + sum so the
// neutral score is 0.5.

// Predicate is a named test over the measured shape.
type Predicate struct {
	Name string
	Test func(profile.DataShapeProfile) bool
}

// Rule applies Delta to Variant whenever When holds.
type Rule struct {
	Variant string
	When    Predicate
	Delta   float64
}

var (
	hasPhaseData  = Predicate{"has_phase_data", func(s profile.DataShapeProfile) bool { return s.HasPhaseData }}
	noPhaseData   = Predicate{"no_phase_data", func(s profile.DataShapeProfile) bool { return !s.HasPhaseData }}
	hasAlerts     = Predicate{"has_alerts", func(s profile.DataShapeProfile) bool { return s.HasAlerts }}
	noAlerts      = Predicate{"no_alerts", func(s profile.DataShapeProfile) bool { return !s.HasAlerts }}
	hasCumulative = Predicate{"has_cumulative_metric", func(s profile.DataShapeProfile) bool { return s.HasCumulativeMetric }}
	noCumulative  = Predicate{"no_cumulative_metric", func(s profile.DataShapeProfile) bool { return !s.HasCumulativeMetric }}
	hasBinary     = Predicate{"has_binary_metric", func(s profile.DataShapeProfile) bool { return s.HasBinaryMetric }}
	hasPercentage = Predicate{"has_percentage_metric", func(s profile.DataShapeProfile) bool { return s.HasPercentageMetric }}
	noPercentage  = Predicate{"no_percentage_metric", func(s profile.DataShapeProfile) bool { return !s.HasPercentageMetric }}
	hasHierarchy  = Predicate{"has_hierarchy", func(s profile.DataShapeProfile) bool { return s.HasHierarchy }}
	noHierarchy   = Predicate{"no_hierarchy", func(s profile.DataShapeProfile) bool { return !s.HasHierarchy }}
	hasFlow       = Predicate{"has_flow_metric", func(s profile.DataShapeProfile) bool { return s.HasFlowMetric }}
	noFlow        = Predicate{"no_flow_metric", func(s profile.DataShapeProfile) bool { return !s.HasFlowMetric }}
	hasRate       = Predicate{"has_rate_metric", func(s profile.DataShapeProfile) bool { return s.HasRateMetric }}
	highVariance  = Predicate{"has_high_variance", func(s profile.DataShapeProfile) bool { return s.HasHighVariance }}
	lowVariance   = Predicate{"low_variance", func(s profile.DataShapeProfile) bool { return !s.HasHighVariance }}
	multiNumeric  = Predicate{"multi_numeric_potential", func(s profile.DataShapeProfile) bool { return s.MultiNumericPotential }}
	singleNumeric = Predicate{"single_numeric", func(s profile.DataShapeProfile) bool { return !s.MultiNumericPotential }}
	singleEntity  = Predicate{"single_entity", func(s profile.DataShapeProfile) bool { return s.EntityCount <= 1 }}
	manyEntities  = Predicate{"many_entities", func(s profile.DataShapeProfile) bool { return s.EntityCount >= 5 }}
	fewInstances  = Predicate{"few_instances", func(s profile.DataShapeProfile) bool { return s.InstanceCount > 0 && s.InstanceCount < 10 }}
	manyInstances = Predicate{"many_instances", func(s profile.DataShapeProfile) bool { return s.InstanceCount >= 200 }}
	manyMetrics   = Predicate{"many_metrics", func(s profile.DataShapeProfile) bool { return s.MetricCount >= 4 }}
	singleMetric  = Predicate{"single_metric", func(s profile.DataShapeProfile) bool { return s.MetricCount == 1 }}
)

// DefaultRules is the shipped rule table. Phase-aware trend handling is the
// load-bearing pair: three-phase electrical data should always surface the
// per-phase variant over a flat line.
func DefaultRules() []Rule {
	return []Rule{
		// Phase data dominates trend rendering.
		{"trend-rgb-phase", hasPhaseData, +0.50},
		{"trend-line", hasPhaseData, -0.35},
		{"trend-multi-series", hasPhaseData, -0.15},
		{"trend-rgb-phase", noPhaseData, -0.40},

		// Cumulative metrics want accumulation-aware variants.
		{"trend-area-cumulative", hasCumulative, +0.35},
		{"kpi-accumulated", hasCumulative, +0.30},
		{"trend-area-cumulative", noCumulative, -0.30},
		{"kpi-accumulated", noCumulative, -0.25},
		{"trend-line", hasCumulative, -0.10},

		// Alert-bearing shapes favor alert surfaces; alert widgets without
		// alert data are useless.
		{"alert-list", hasAlerts, +0.30},
		{"alert-severity-matrix", hasAlerts, +0.25},
		{"alert-list", noAlerts, -0.45},
		{"alert-severity-matrix", noAlerts, -0.45},

		// Binary on/off series read best as strips or event tables.
		{"event-log-binary-strip", hasBinary, +0.35},
		{"trend-line", hasBinary, -0.15},
		{"event-log-binary-strip", singleMetric, +0.10},

		// Percentage metrics suit gauges and donuts.
		{"kpi-gauge", hasPercentage, +0.30},
		{"composition-donut", hasPercentage, +0.15},
		{"kpi-gauge", noPercentage, -0.25},
		{"flow-gauge-rate", hasRate, +0.30},

		// Hierarchy unlocks treemaps; flat data does not.
		{"composition-treemap", hasHierarchy, +0.35},
		{"composition-treemap", noHierarchy, -0.40},
		{"composition-stacked-area", hasCumulative, +0.15},

		// Flow metrics feed sankeys.
		{"flow-sankey", hasFlow, +0.40},
		{"flow-sankey", noFlow, -0.45},

		// Variance shaping.
		{"trend-band", highVariance, +0.30},
		{"distribution-histogram", highVariance, +0.20},
		{"distribution-box", highVariance, +0.20},
		{"trend-band", lowVariance, -0.20},
		{"kpi-sparkline", lowVariance, +0.10},

		// Correlation surfaces need several numeric series.
		{"matrix-correlation", multiNumeric, +0.30},
		{"matrix-correlation", singleNumeric, -0.40},
		{"trend-multi-series", multiNumeric, +0.20},
		{"trend-multi-series", singleNumeric, -0.30},
		{"comparison-radar", manyMetrics, +0.25},
		{"comparison-radar", singleMetric, -0.35},

		// Entity cardinality shaping.
		{"kpi-single", singleEntity, +0.20},
		{"comparison-bar", manyEntities, +0.15},
		{"comparison-bar", singleEntity, -0.30},
		{"matrix-heatmap", manyEntities, +0.25},
		{"category-bar-horizontal", manyEntities, +0.15},

		// Sample size shaping.
		{"distribution-histogram", manyInstances, +0.15},
		{"distribution-histogram", fewInstances, -0.25},
		{"distribution-box", fewInstances, -0.20},
		{"kpi-sparkline", fewInstances, +0.10},
	}
}

// PenaltyScore accumulates all rule deltas for one variant against the shape,
// clamps the sum to [-0.5, 0.5], and shifts it into the unit interval.
func PenaltyScore(rules []Rule, variant string, shape profile.DataShapeProfile, log *logging.RequestLogger) float64 {
	var sum float64
	for _, r := range rules {
		if r.Variant != variant || !r.When.Test(shape) {
			continue
		}
		sum += r.Delta
		if log != nil {
			log.Debug("Rule %s/%s: %+.2f (sum %+.2f)", variant, r.When.Name, r.Delta, sum)
		}
	}
	if sum > 0.5 {
		sum = 0.5
	} else if sum < -0.5 {
		sum = -0.5
	}
	return 0.5 + sum
}
