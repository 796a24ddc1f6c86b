package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vizsel/internal/catalog"
	"vizsel/internal/config"
	"vizsel/internal/embedding"
	"vizsel/internal/logging"
	"vizsel/internal/reasoning"
	"vizsel/internal/semantic"
	"vizsel/internal/store"
)

// Executor runs one selection flow over a prepared state.
type Executor interface {
	Run(ctx context.Context, s *State) error
}

// Selector is the variant selection engine. One Selector serves many
// concurrent requests; all per-request state lives in State.
type Selector struct {
	cfg     config.PipelineConfig
	catalog *catalog.Catalog
	rules   []Rule

	engine       embedding.Engine
	corpus       *semantic.CorpusCache
	clientCorpus *semantic.CorpusCache
	gate         *semantic.Gate
	clientGate   *semantic.Gate

	breaker   *reasoning.TieBreaker
	validator ValidationPolicy

	executor Executor
}

// Option customizes selector construction.
type Option func(*Selector)

// WithRules replaces the shipped penalty rule table.
func WithRules(rules []Rule) Option {
	return func(s *Selector) { s.rules = rules }
}

// WithValidationPolicy replaces the terminal deterministic fallback.
func WithValidationPolicy(p ValidationPolicy) Option {
	return func(s *Selector) { s.validator = p }
}

// New wires a selector from config. engine and breaker may be nil; cache may
// be nil to disable persistent corpus embeddings.
func New(cfg *config.Config, cat *catalog.Catalog, engine embedding.Engine, breaker *reasoning.TieBreaker, cache *store.EmbedCache, opts ...Option) (*Selector, error) {
	if cat == nil {
		cat = catalog.Builtin()
	}

	sel := &Selector{
		cfg:          cfg.Pipeline,
		catalog:      cat,
		rules:        DefaultRules(),
		engine:       engine,
		corpus:       semantic.NewCorpusCache(cache),
		clientCorpus: semantic.NewCorpusCache(nil),
		gate:         semantic.NewGate(cfg.Cooldown()),
		clientGate:   semantic.NewGate(cfg.Cooldown()),
		breaker:      breaker,
		validator:    topCompositePolicy,
	}
	for _, opt := range opts {
		opt(sel)
	}

	if sel.cfg.UseGraphEngine {
		graph, err := sel.buildGraph()
		if err != nil {
			return nil, fmt.Errorf("failed to build selection graph: %w", err)
		}
		sel.executor = graph
	} else {
		sel.executor = NewChainExecutor(sel)
	}
	return sel, nil
}

// Catalog exposes the variant table backing this selector.
func (sel *Selector) Catalog() *catalog.Catalog { return sel.catalog }

// RunSelection selects a variant for the scenario. It always returns a
// usable result: every escalation layer has a deterministic fallback, and an
// unknown or empty scenario degrades to the scenario name at zero confidence
// rather than failing the widget.
func (sel *Selector) RunSelection(ctx context.Context, req Request) Result {
	requestID := uuid.NewString()[:8]
	log := logging.WithRequestID(logging.CategoryPipeline, requestID)

	candidates := sel.catalog.Variants(req.Scenario)
	if len(candidates) == 0 {
		log.Warn("No variants cataloged for scenario %q", req.Scenario)
		return Result{
			Variant:    req.Scenario,
			Confidence: 0,
			Method:     MethodGraph,
			Trace:      []string{nodeFinalize},
		}
	}

	s := &State{
		RequestID:      requestID,
		Scenario:       req.Scenario,
		Query:          req.Query,
		Intent:         req.Intent,
		QueryType:      req.QueryType,
		Shape:          req.Shape,
		QueryEmbedding: req.QueryEmbedding,
		Engine:         req.Engine,
		Candidates:     candidates,
		log:            log,
	}

	timer := logging.StartTimer(logging.CategoryPipeline, "RunSelection")
	defer timer.Stop()

	if err := sel.executor.Run(ctx, s); err != nil {
		// Only a malformed topology can land here, and construction already
		// validated it. Degrade to the scenario default rather than failing.
		log.Error("Executor failed: %v", err)
		if def, ok := sel.catalog.DefaultVariant(req.Scenario); ok {
			return Result{Variant: def.Name, Confidence: 0, Method: MethodGraph, Trace: s.Trace}
		}
		return Result{Variant: candidates[0].Name, Confidence: 0, Method: MethodGraph, Trace: s.Trace}
	}

	return s.result()
}
