// Package profile defines the measured facts about a dataset that drive
// variant selection. A DataShapeProfile is computed once per request from the
// data catalog, is never mutated, and is discarded when the pipeline finishes.
package profile

import (
	"fmt"
	"strings"
)

// DataShapeProfile captures the structural facts about the data backing a
// widget. All booleans are derived from the measured data, not the query text.
type DataShapeProfile struct {
	EntityCount   int `json:"entity_count"`
	MetricCount   int `json:"metric_count"`
	InstanceCount int `json:"instance_count"`

	HasTimeseries   bool    `json:"has_timeseries"`
	TemporalDensity float64 `json:"temporal_density"` // samples per unit time

	HasCumulativeMetric bool `json:"has_cumulative_metric"`
	HasBinaryMetric     bool `json:"has_binary_metric"`
	HasPercentageMetric bool `json:"has_percentage_metric"`
	HasAlerts           bool `json:"has_alerts"`
	HasPhaseData        bool `json:"has_phase_data"`
	HasHighVariance     bool `json:"has_high_variance"`
	HasFlowMetric       bool `json:"has_flow_metric"`
	HasRateMetric       bool `json:"has_rate_metric"`
	HasHierarchy        bool `json:"has_hierarchy"`

	CrossEntityComparable bool `json:"cross_entity_comparable"`
	MultiNumericPotential bool `json:"multi_numeric_potential"`
}

// Describe renders the profile as plain shape facts for reasoning prompts.
func (p DataShapeProfile) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "entities=%d metrics=%d instances=%d", p.EntityCount, p.MetricCount, p.InstanceCount)
	if p.HasTimeseries {
		fmt.Fprintf(&b, "; time series present (density %.2f samples/unit)", p.TemporalDensity)
	} else {
		b.WriteString("; no time series")
	}
	flags := []struct {
		on   bool
		name string
	}{
		{p.HasCumulativeMetric, "cumulative metric"},
		{p.HasBinaryMetric, "binary metric"},
		{p.HasPercentageMetric, "percentage metric"},
		{p.HasAlerts, "active alerts"},
		{p.HasPhaseData, "three-phase data"},
		{p.HasHighVariance, "high variance"},
		{p.HasFlowMetric, "flow metric"},
		{p.HasRateMetric, "rate metric"},
		{p.HasHierarchy, "hierarchical grouping"},
		{p.CrossEntityComparable, "cross-entity comparable"},
		{p.MultiNumericPotential, "multiple numeric series possible"},
	}
	var present []string
	for _, f := range flags {
		if f.on {
			present = append(present, f.name)
		}
	}
	if len(present) > 0 {
		b.WriteString("; ")
		b.WriteString(strings.Join(present, ", "))
	}
	return b.String()
}

// QuestionIntent classifies what the analytic question is asking for.
type QuestionIntent string

const (
	IntentBaseline    QuestionIntent = "baseline"
	IntentTrend       QuestionIntent = "trend"
	IntentAnomaly     QuestionIntent = "anomaly"
	IntentComparison  QuestionIntent = "comparison"
	IntentCorrelation QuestionIntent = "correlation"
	IntentHealth      QuestionIntent = "health"
)

// QueryType classifies the operational flavor of the query.
type QueryType string

const (
	QueryStatus     QueryType = "status"
	QueryAnalysis   QueryType = "analysis"
	QueryComparison QueryType = "comparison"
	QueryTrend      QueryType = "trend"
	QueryDiagnostic QueryType = "diagnostic"
	QueryOverview   QueryType = "overview"
	QueryAlert      QueryType = "alert"
	QueryForecast   QueryType = "forecast"
)

// InferIntent derives a best-effort intent from a free-form question.
// Used when the caller has no upstream intent classifier; explicit intents
// from the caller always win.
func InferIntent(question string) QuestionIntent {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "compare", "versus", " vs ", "difference between", "against"):
		return IntentComparison
	case containsAny(q, "trend", "over time", "history", "evolution", "trajectory"):
		return IntentTrend
	case containsAny(q, "anomal", "spike", "outlier", "unusual", "abnormal", "deviation"):
		return IntentAnomaly
	case containsAny(q, "correlat", "relationship", "depends on", "impact of"):
		return IntentCorrelation
	case containsAny(q, "health", "condition", "status of", "state of", "overall"):
		return IntentHealth
	default:
		return IntentBaseline
	}
}

// InferQueryType derives a best-effort query type from a free-form question.
func InferQueryType(question string) QueryType {
	q := strings.ToLower(question)
	switch {
	case containsAny(q, "alert", "alarm", "warning", "triggered"):
		return QueryAlert
	case containsAny(q, "forecast", "predict", "expected", "next week", "next month"):
		return QueryForecast
	case containsAny(q, "compare", "versus", " vs "):
		return QueryComparison
	case containsAny(q, "trend", "over time", "history"):
		return QueryTrend
	case containsAny(q, "why", "diagnos", "root cause", "investigate"):
		return QueryDiagnostic
	case containsAny(q, "overview", "summary", "dashboard", "all "):
		return QueryOverview
	case containsAny(q, "analy", "breakdown", "distribution"):
		return QueryAnalysis
	default:
		return QueryStatus
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
