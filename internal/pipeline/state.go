// Package pipeline implements the variant selection engine: a directed
// decision graph with escalating resolution layers (hard elimination,
// deterministic scoring, semantic tie-break, reasoned tie-break, deterministic
// validation) that always terminates with a concrete variant.
package pipeline

import (
	"math"

	"vizsel/internal/catalog"
	"vizsel/internal/embedding"
	"vizsel/internal/logging"
	"vizsel/internal/profile"
)

// Resolution method labels. These are stable identifiers consumed by the
// offline quality dashboards; do not rename.
const (
	MethodFilterOnly             = "filter_only"
	MethodSingleVariant          = "single_variant"
	MethodGraph                  = "graph"
	MethodGraphSemantic          = "graph+semantic"
	MethodGraphReasoned          = "graph+dspy"
	MethodGraphSemanticReasoned  = "graph+semantic+dspy"
	MethodGraphValidated         = "graph+autogen"
	MethodGraphSemanticValidated = "graph+semantic+autogen"
)

// Request carries the inputs of one selection run.
type Request struct {
	Scenario string
	Query    string

	// Intent and QueryType may be empty; the pipeline infers them from the
	// query text when the caller has no upstream classifier.
	Intent    profile.QuestionIntent
	QueryType profile.QueryType

	Shape profile.DataShapeProfile

	// QueryEmbedding, if provided, lets the semantic tie-breaker skip the
	// query embedding call.
	QueryEmbedding []float32

	// Engine, if provided, is the caller-supplied embedding client tried
	// ahead of any process-configured backend.
	Engine embedding.Engine
}

// Result is the packaged outcome of a selection run.
type Result struct {
	Variant    string
	Confidence float64
	Method     string

	// Rationale is present only for reasoning-assisted selections.
	Rationale string

	// Eliminations maps each hard-filtered variant to its named reasons.
	// Observability only; it never affects control flow.
	Eliminations map[string][]string

	// Trace is the visited node path, for offline quality monitoring.
	Trace []string
}

// State is the per-request mutable state threaded through the graph.
// It is owned exclusively by one run and never shared across requests.
type State struct {
	RequestID string

	Scenario  string
	Query     string
	Intent    profile.QuestionIntent
	QueryType profile.QueryType
	Shape     profile.DataShapeProfile

	QueryEmbedding []float32
	Engine         embedding.Engine

	// Candidates is the scenario's full variant table; Survivors shrinks as
	// the hard filter runs. Every score map is keyed by the survivor set.
	Candidates []catalog.VariantProfile
	Survivors  []catalog.VariantProfile

	Eliminations map[string][]string

	ShapeScores     map[string]float64
	IntentScores    map[string]float64
	QTypeScores     map[string]float64
	PenaltyScores   map[string]float64
	CompositeScores map[string]float64
	SemanticScores  map[string]float64

	TopVariant string
	Gap        float64
	Confidence float64
	Ambiguous  bool

	SemanticApplied  bool
	ReasoningApplied bool
	ValidatorApplied bool
	Rationale        string

	Selected string
	Method   string

	Trace []string

	log *logging.RequestLogger
}

// survivor returns the survivor profile by name.
func (s *State) survivor(name string) (catalog.VariantProfile, bool) {
	for _, v := range s.Survivors {
		if v.Name == name {
			return v, true
		}
	}
	return catalog.VariantProfile{}, false
}

// result packages the final selection.
func (s *State) result() Result {
	return Result{
		Variant:      s.Selected,
		Confidence:   s.Confidence,
		Method:       s.Method,
		Rationale:    s.Rationale,
		Eliminations: s.Eliminations,
		Trace:        s.Trace,
	}
}

// round4 rounds a composite score to 4 decimal places.
func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

// clamp01 clamps a score into the unit interval.
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
