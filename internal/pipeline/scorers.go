package pipeline

import (
	"strings"

	"vizsel/internal/catalog"
	"vizsel/internal/profile"
)

// Blend weights for the composite score.
const (
	weightShape   = 0.35
	weightIntent  = 0.20
	weightQType   = 0.10
	weightPenalty = 0.30
	weightDefault = 0.05
)

// =============================================================================
// SHAPE-FITNESS SCORE
// =============================================================================

// ShapeScore measures how well a variant's intrinsic data-shape preferences
// and ideal count ranges match the measured profile.
func ShapeScore(v catalog.VariantProfile, shape profile.DataShapeProfile) float64 {
	return clamp01(0.6*preferenceFitness(v, shape) + 0.4*countFitness(v, shape))
}

// preferenceFitness is the fraction of the variant's declared shape
// preferences the profile satisfies. Variants declaring no preferences score
// a neutral 0.5.
func preferenceFitness(v catalog.VariantProfile, shape profile.DataShapeProfile) float64 {
	pairs := []struct {
		wants bool
		has   bool
	}{
		{v.PrefersHighVariance, shape.HasHighVariance},
		{v.PrefersHierarchy, shape.HasHierarchy},
		{v.PrefersCumulative, shape.HasCumulativeMetric},
		{v.PrefersPhaseData, shape.HasPhaseData},
		{v.PrefersBinary, shape.HasBinaryMetric},
		{v.PrefersPercentage, shape.HasPercentageMetric},
		{v.PrefersAlerts, shape.HasAlerts},
		{v.PrefersFlow, shape.HasFlowMetric},
		{v.PrefersRate, shape.HasRateMetric},
		{v.PrefersMultiNumeric, shape.MultiNumericPotential},
	}

	declared, matched := 0, 0
	for _, p := range pairs {
		if !p.wants {
			continue
		}
		declared++
		if p.has {
			matched++
		}
	}
	if declared == 0 {
		return 0.5
	}
	return float64(matched) / float64(declared)
}

// countFitness measures closeness of the profile's counts to the variant's
// ideal ranges: 1.0 at the center of a range decaying to 0.7 at its edges,
// degrading further with distance outside the range, never negative.
// Undeclared ranges are skipped; a variant declaring none scores 0.6.
func countFitness(v catalog.VariantProfile, shape profile.DataShapeProfile) float64 {
	var total float64
	var declared int

	for _, dim := range []struct {
		count int
		r     catalog.Range
	}{
		{shape.EntityCount, v.IdealEntityCount},
		{shape.MetricCount, v.IdealMetricCount},
		{shape.InstanceCount, v.IdealInstanceCount},
	} {
		if !dim.r.Declared() {
			continue
		}
		declared++
		total += rangeCloseness(dim.count, dim.r)
	}

	if declared == 0 {
		return 0.6
	}
	return total / float64(declared)
}

func rangeCloseness(count int, r catalog.Range) float64 {
	min, max := r.Min, r.Max
	if min <= 0 {
		min = 1
	}
	if max == 0 || max < min {
		// Open-ended range: anything at or above min is ideal.
		if count >= min {
			return 1.0
		}
		max = min
	}

	width := max - min + 1
	if count >= min && count <= max {
		center := float64(min+max) / 2
		half := float64(max-min)/2 + 1
		return 1.0 - 0.3*abs(float64(count)-center)/half
	}

	dist := min - count
	if count > max {
		dist = count - max
	}
	return 0.7 * float64(width) / float64(width+2*dist)
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// =============================================================================
// INTENT AND QUERY-TYPE AFFINITY
// =============================================================================

// intentAffinities maps variant name to per-intent affinities. Variants or
// intents not listed fall back to the family table, then to 0.5.
var intentAffinities = map[string]map[profile.QuestionIntent]float64{
	"kpi-single":             {profile.IntentBaseline: 0.95, profile.IntentHealth: 0.75, profile.IntentTrend: 0.30},
	"kpi-accumulated":        {profile.IntentBaseline: 0.85, profile.IntentTrend: 0.45},
	"kpi-sparkline":          {profile.IntentTrend: 0.75, profile.IntentBaseline: 0.70},
	"kpi-gauge":              {profile.IntentHealth: 0.90, profile.IntentBaseline: 0.75},
	"trend-line":             {profile.IntentTrend: 0.95, profile.IntentAnomaly: 0.65, profile.IntentBaseline: 0.50},
	"trend-rgb-phase":        {profile.IntentTrend: 0.85, profile.IntentAnomaly: 0.75, profile.IntentHealth: 0.60},
	"trend-area-cumulative":  {profile.IntentTrend: 0.85, profile.IntentBaseline: 0.55},
	"trend-multi-series":     {profile.IntentCorrelation: 0.90, profile.IntentTrend: 0.80, profile.IntentComparison: 0.65},
	"trend-band":             {profile.IntentAnomaly: 0.90, profile.IntentTrend: 0.75},
	"comparison-bar":         {profile.IntentComparison: 0.95, profile.IntentBaseline: 0.55},
	"comparison-waterfall":   {profile.IntentComparison: 0.80, profile.IntentCorrelation: 0.55},
	"comparison-radar":       {profile.IntentComparison: 0.85, profile.IntentHealth: 0.70},
	"comparison-delta":       {profile.IntentComparison: 0.90, profile.IntentAnomaly: 0.55},
	"distribution-histogram": {profile.IntentAnomaly: 0.80, profile.IntentBaseline: 0.55},
	"distribution-box":       {profile.IntentComparison: 0.75, profile.IntentAnomaly: 0.75},
	"alert-list":             {profile.IntentAnomaly: 0.90, profile.IntentHealth: 0.80},
	"alert-severity-matrix":  {profile.IntentHealth: 0.85, profile.IntentComparison: 0.65},
	"matrix-correlation":     {profile.IntentCorrelation: 0.95, profile.IntentComparison: 0.60},
}

// familyIntentAffinities covers variants absent from the explicit table, keyed
// by the widget family prefix of the variant name.
var familyIntentAffinities = map[string]map[profile.QuestionIntent]float64{
	"kpi":          {profile.IntentBaseline: 0.85, profile.IntentHealth: 0.65},
	"trend":        {profile.IntentTrend: 0.85, profile.IntentAnomaly: 0.60},
	"comparison":   {profile.IntentComparison: 0.85},
	"distribution": {profile.IntentAnomaly: 0.70, profile.IntentBaseline: 0.55},
	"composition":  {profile.IntentBaseline: 0.65, profile.IntentComparison: 0.60},
	"alert":        {profile.IntentAnomaly: 0.85, profile.IntentHealth: 0.75},
	"timeline":     {profile.IntentTrend: 0.70, profile.IntentHealth: 0.55},
	"event":        {profile.IntentAnomaly: 0.65, profile.IntentBaseline: 0.55},
	"category":     {profile.IntentComparison: 0.75, profile.IntentBaseline: 0.60},
	"flow":         {profile.IntentCorrelation: 0.60, profile.IntentBaseline: 0.60},
	"matrix":       {profile.IntentCorrelation: 0.75, profile.IntentComparison: 0.70},
}

// IntentScore looks up the (variant, intent) affinity.
func IntentScore(variant string, intent profile.QuestionIntent) float64 {
	if table, ok := intentAffinities[variant]; ok {
		if score, ok := table[intent]; ok {
			return score
		}
	}
	if table, ok := familyIntentAffinities[variantFamily(variant)]; ok {
		if score, ok := table[intent]; ok {
			return score
		}
	}
	return 0.5
}

// queryTypeAffinities is the analogous lookup for operational query types,
// kept at family granularity.
var queryTypeAffinities = map[string]map[profile.QueryType]float64{
	"kpi":          {profile.QueryStatus: 0.95, profile.QueryOverview: 0.75, profile.QueryTrend: 0.35},
	"trend":        {profile.QueryTrend: 0.95, profile.QueryAnalysis: 0.70, profile.QueryForecast: 0.75, profile.QueryStatus: 0.40},
	"comparison":   {profile.QueryComparison: 0.95, profile.QueryAnalysis: 0.65},
	"distribution": {profile.QueryAnalysis: 0.85, profile.QueryDiagnostic: 0.70},
	"composition":  {profile.QueryOverview: 0.80, profile.QueryAnalysis: 0.70},
	"alert":        {profile.QueryAlert: 0.95, profile.QueryDiagnostic: 0.75, profile.QueryStatus: 0.60},
	"timeline":     {profile.QueryOverview: 0.70, profile.QueryDiagnostic: 0.65},
	"event":        {profile.QueryDiagnostic: 0.75, profile.QueryAlert: 0.65},
	"category":     {profile.QueryComparison: 0.80, profile.QueryOverview: 0.65},
	"flow":         {profile.QueryOverview: 0.70, profile.QueryStatus: 0.60},
	"matrix":       {profile.QueryAnalysis: 0.80, profile.QueryOverview: 0.70},
}

// QueryTypeScore looks up the (variant, query type) affinity.
func QueryTypeScore(variant string, qt profile.QueryType) float64 {
	if table, ok := queryTypeAffinities[variantFamily(variant)]; ok {
		if score, ok := table[qt]; ok {
			return score
		}
	}
	return 0.5
}

// variantFamily extracts the widget family prefix from a variant name, e.g.
// "trend-rgb-phase" -> "trend".
func variantFamily(variant string) string {
	if i := strings.Index(variant, "-"); i > 0 {
		return variant[:i]
	}
	return variant
}
