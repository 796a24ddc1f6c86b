package pipeline

import (
	"context"

	"vizsel/internal/logging"
	"vizsel/internal/profile"
	"vizsel/internal/reasoning"
	"vizsel/internal/semantic"
)

// Node identifiers. Trace entries use these names verbatim.
const (
	nodeProfileData    = "profile_data"
	nodeHardFilter     = "hard_filter"
	nodeScoreShape     = "score_shape"
	nodeScoreIntent    = "score_intent"
	nodeApplyPenalties = "apply_penalties"
	nodeRank           = "rank"
	nodeSemanticTieBrk = "semantic_tiebreak"
	nodeReason         = "reason"
	nodeValidate       = "validate"
	nodeFinalize       = "finalize"
)

// profileData backfills intent and query type from the question text when the
// caller supplied no upstream classifier output.
func (sel *Selector) profileData(_ context.Context, s *State) {
	if s.Intent == "" {
		s.Intent = profile.InferIntent(s.Query)
	}
	if s.QueryType == "" {
		s.QueryType = profile.InferQueryType(s.Query)
	}
	s.log.Debug("Profiled: intent=%s qtype=%s shape=%s", s.Intent, s.QueryType, s.Shape.Describe())
}

// hardFilter drops variants whose structural prerequisites the shape violates.
func (sel *Selector) hardFilter(_ context.Context, s *State) {
	s.Survivors, s.Eliminations = HardFilter(s.Candidates, s.Shape)
	s.log.Info("Hard filter: %d/%d survivors", len(s.Survivors), len(s.Candidates))
}

// scoreShape scores each survivor's shape fitness.
func (sel *Selector) scoreShape(_ context.Context, s *State) {
	s.ShapeScores = make(map[string]float64, len(s.Survivors))
	for _, v := range s.Survivors {
		s.ShapeScores[v.Name] = ShapeScore(v, s.Shape)
	}
}

// scoreIntent scores each survivor's intent and query-type affinity.
func (sel *Selector) scoreIntent(_ context.Context, s *State) {
	s.IntentScores = make(map[string]float64, len(s.Survivors))
	s.QTypeScores = make(map[string]float64, len(s.Survivors))
	for _, v := range s.Survivors {
		s.IntentScores[v.Name] = IntentScore(v.Name, s.Intent)
		s.QTypeScores[v.Name] = QueryTypeScore(v.Name, s.QueryType)
	}
}

// applyPenalties runs the context rule table per survivor.
func (sel *Selector) applyPenalties(_ context.Context, s *State) {
	s.PenaltyScores = make(map[string]float64, len(s.Survivors))
	for _, v := range s.Survivors {
		s.PenaltyScores[v.Name] = PenaltyScore(sel.rules, v.Name, s.Shape, s.log)
	}
}

// rankNode blends the component scores into composites, then ranks them.
func (sel *Selector) rankNode(_ context.Context, s *State) {
	s.CompositeScores = make(map[string]float64, len(s.Survivors))
	for _, v := range s.Survivors {
		defaultFlag := 0.0
		if v.Default {
			defaultFlag = 1.0
		}
		composite := weightShape*s.ShapeScores[v.Name] +
			weightIntent*s.IntentScores[v.Name] +
			weightQType*s.QTypeScores[v.Name] +
			weightPenalty*s.PenaltyScores[v.Name] +
			weightDefault*defaultFlag
		s.CompositeScores[v.Name] = round4(composite)
		s.log.Debug("Composite %s: shape=%.4f intent=%.4f qtype=%.4f penalty=%.4f default=%.0f -> %.4f",
			v.Name, s.ShapeScores[v.Name], s.IntentScores[v.Name], s.QTypeScores[v.Name],
			s.PenaltyScores[v.Name], defaultFlag, s.CompositeScores[v.Name])
	}
	s.rank(sel.cfg.AmbiguityGap, sel.cfg.MinTopScore)
}

// semanticTieBreak blends semantic similarity into the composites of an
// ambiguous run and re-ranks. Disabled or unavailable backends leave the
// state untouched so the run escalates with its deterministic scores.
func (sel *Selector) semanticTieBreak(ctx context.Context, s *State) {
	if !sel.cfg.SemanticEnabled {
		s.log.Debug("Semantic layer disabled, escalating unchanged")
		return
	}

	descriptions := make([]string, len(s.Survivors))
	for i, v := range s.Survivors {
		descriptions[i] = v.Description
	}

	chain := sel.buildChain(s)
	scores, strategy := chain.Score(ctx, s.Query, descriptions)
	if scores == nil {
		s.log.Warn("No semantic strategy available, escalating unchanged")
		return
	}

	s.SemanticScores = make(map[string]float64, len(s.Survivors))
	blend := sel.cfg.SemanticBlend
	for i, v := range s.Survivors {
		s.SemanticScores[v.Name] = round4(scores[i])
		s.CompositeScores[v.Name] = round4((1-blend)*s.CompositeScores[v.Name] + blend*scores[i])
	}
	s.SemanticApplied = true

	s.rank(sel.cfg.AmbiguityGap, sel.cfg.MinTopScore)
	s.log.Info("Semantic tie-break via %s: top=%s conf=%.4f ambiguous=%v",
		strategy, s.TopVariant, s.Confidence, s.Ambiguous)
}

// buildChain assembles the strategy chain for one request: the caller's
// engine first, then the configured backend at token and sentence level, then
// the model-free lexical fallback.
func (sel *Selector) buildChain(s *State) *semantic.Chain {
	lexical := semantic.NewLexicalScorer()
	if sel.cfg.SemanticStrategy == "lexical" {
		return semantic.NewChain(lexical)
	}

	var client semantic.Scorer
	if s.Engine != nil {
		client = semantic.NewSentenceScorer("client", s.Engine, sel.clientCorpus, sel.clientGate, s.QueryEmbedding)
	}
	var late, sentence semantic.Scorer
	if sel.engine != nil {
		late = semantic.NewLateInteractionScorer(sel.engine, sel.corpus, sel.gate)
		sentence = semantic.NewSentenceScorer("sentence", sel.engine, sel.corpus, sel.gate, nil)
	}
	return semantic.NewChain(client, late, sentence, lexical)
}

// reasonNode asks the LLM tie-breaker to pick among the survivors. A
// successful, validated pick ends the run with a confidence bonus; any
// failure escalates to the deterministic validator.
func (sel *Selector) reasonNode(ctx context.Context, s *State) {
	if !sel.breaker.Available() {
		s.log.Debug("Reasoning backend unavailable, escalating to validator")
		return
	}

	candidates := make([]reasoning.Candidate, 0, len(s.Survivors))
	for _, v := range s.Survivors {
		candidates = append(candidates, reasoning.Candidate{
			Name:        v.Name,
			Description: v.Description,
			Composite:   s.CompositeScores[v.Name],
		})
	}

	decision, _ := sel.breaker.Decide(ctx, reasoning.Request{
		Query:            s.Query,
		ShapeDescription: s.Shape.Describe(),
		QueryType:        string(s.QueryType),
		QuestionIntent:   string(s.Intent),
		Candidates:       candidates,
	})
	if decision == nil {
		return
	}

	s.Selected = decision.Variant
	s.Rationale = decision.Rationale
	s.Confidence = round4(clamp01(s.Confidence + sel.cfg.ReasoningBonus))
	s.ReasoningApplied = true
	s.log.Info("Reasoned selection: %s conf=%.4f", s.Selected, s.Confidence)
}

// ValidationPolicy is the terminal deterministic fallback. It must return a
// survivor name; it runs only when every smarter layer has declined.
type ValidationPolicy func(s *State) string

// topCompositePolicy picks the composite-ranking winner.
func topCompositePolicy(s *State) string {
	return s.TopVariant
}

// validateNode applies the deterministic fallback policy.
func (sel *Selector) validateNode(_ context.Context, s *State) {
	s.Selected = sel.validator(s)
	s.ValidatorApplied = true
	s.log.Info("Validator selection: %s", s.Selected)
}

// finalizeNode stamps the selected variant, confidence, and method label.
func (sel *Selector) finalizeNode(_ context.Context, s *State) {
	switch {
	case len(s.Candidates) == 1:
		s.Selected = s.Candidates[0].Name
		s.Confidence = 1.0
		s.Method = MethodSingleVariant
	case len(s.Survivors) == 1:
		s.Selected = s.Survivors[0].Name
		s.Confidence = 1.0
		s.Method = MethodFilterOnly
	default:
		if s.Selected == "" {
			s.Selected = s.TopVariant
		}
		if s.Selected == "" {
			// Nothing was ranked at all; degrade to the scenario name.
			s.Selected = s.Scenario
		}
		s.Method = methodLabel(s)
	}
	logging.Pipeline("[%s] Selected %s via %s (conf=%.4f)", s.RequestID, s.Selected, s.Method, s.Confidence)
}

// methodLabel derives the resolution method from which layers contributed.
func methodLabel(s *State) string {
	switch {
	case s.ReasoningApplied && s.SemanticApplied:
		return MethodGraphSemanticReasoned
	case s.ReasoningApplied:
		return MethodGraphReasoned
	case s.ValidatorApplied && s.SemanticApplied:
		return MethodGraphSemanticValidated
	case s.ValidatorApplied:
		return MethodGraphValidated
	case s.SemanticApplied:
		return MethodGraphSemantic
	default:
		return MethodGraph
	}
}
