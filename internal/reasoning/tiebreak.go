package reasoning

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"vizsel/internal/logging"
)

// Candidate is one ranked survivor offered to the model.
type Candidate struct {
	Name        string
	Description string
	Composite   float64
}

// Request carries the structured inputs for a reasoned tie-break.
type Request struct {
	Query            string
	ShapeDescription string
	QueryType        string
	QuestionIntent   string
	Candidates       []Candidate
}

// Decision is a successful tie-break outcome.
type Decision struct {
	Variant   string
	Rationale string
}

// TieBreaker runs the two-call reasoned selection.
type TieBreaker struct {
	client Client
}

// NewTieBreaker wraps a client; a nil client yields a breaker whose Decide
// always defers.
func NewTieBreaker(client Client) *TieBreaker {
	return &TieBreaker{client: client}
}

// Available reports whether a backend is configured.
func (t *TieBreaker) Available() bool {
	return t != nil && t.client != nil
}

// Decide asks the model to pick one candidate and justify it from shape
// facts, then validates the pick with an independent call. Returns (nil, nil)
// whenever no usable selection was produced: missing backend, malformed
// output, a pick outside the candidate set, or a validation veto. Errors are
// logged, never propagated.
func (t *TieBreaker) Decide(ctx context.Context, req Request) (*Decision, error) {
	if !t.Available() || len(req.Candidates) == 0 {
		return nil, nil
	}

	timer := logging.StartTimer(logging.CategoryReasoning, "Decide")
	defer timer.Stop()

	raw, err := t.client.CompleteWithSystem(ctx, selectionSystemPrompt, buildSelectionPrompt(req))
	if err != nil {
		logging.Get(logging.CategoryReasoning).Warn("Selection call failed: %v", err)
		return nil, nil
	}

	variant, rationale := parseSelection(raw)
	if variant == "" {
		logging.Get(logging.CategoryReasoning).Warn("Selection output unparseable: %q", truncate(raw, 200))
		return nil, nil
	}
	if !candidateNamed(req.Candidates, variant) {
		logging.Get(logging.CategoryReasoning).Warn("Model picked %q, not in candidate set; discarding", variant)
		return nil, nil
	}

	ok, err := t.validate(ctx, req, variant, rationale)
	if err != nil {
		logging.Get(logging.CategoryReasoning).Warn("Validation call failed: %v", err)
		return nil, nil
	}
	if !ok {
		logging.Reasoning("Validation vetoed pick %q", variant)
		return nil, nil
	}

	logging.Reasoning("Reasoned pick: %s", variant)
	return &Decision{Variant: variant, Rationale: rationale}, nil
}

// validate runs the independent structural-appropriateness check.
func (t *TieBreaker) validate(ctx context.Context, req Request, variant, rationale string) (bool, error) {
	var desc string
	for _, c := range req.Candidates {
		if c.Name == variant {
			desc = c.Description
			break
		}
	}

	prompt := fmt.Sprintf(
		"A visualization variant was selected for a dashboard widget.\n\n"+
			"Data shape: %s\n"+
			"Selected variant: %s\n"+
			"Variant purpose: %s\n"+
			"Selection rationale: %s\n\n"+
			"Is this variant structurally appropriate for that data shape? "+
			"A variant requiring data the shape does not have is inappropriate.\n"+
			"Answer with exactly one line: VERDICT: APPROVE or VERDICT: VETO",
		req.ShapeDescription, variant, desc, rationale)

	raw, err := t.client.Complete(ctx, prompt)
	if err != nil {
		return false, err
	}
	upper := strings.ToUpper(raw)
	if strings.Contains(upper, "VERDICT: VETO") {
		return false, nil
	}
	return strings.Contains(upper, "VERDICT: APPROVE"), nil
}

const selectionSystemPrompt = "You select dashboard visualization variants. " +
	"Reason step by step from the measured data-shape facts only, then commit " +
	"to exactly one candidate. Do not invent facts about the data."

func buildSelectionPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", req.Query)
	fmt.Fprintf(&b, "Question intent: %s\n", req.QuestionIntent)
	fmt.Fprintf(&b, "Query type: %s\n", req.QueryType)
	fmt.Fprintf(&b, "Measured data shape: %s\n\n", req.ShapeDescription)

	b.WriteString("Candidates, ranked by composite score:\n")
	ranked := make([]Candidate, len(req.Candidates))
	copy(ranked, req.Candidates)
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Composite > ranked[j].Composite })
	for _, c := range ranked {
		fmt.Fprintf(&b, "- %s (score %.4f): %s\n", c.Name, c.Composite, c.Description)
	}

	b.WriteString("\nThink through which candidate fits the data shape, citing specific " +
		"shape properties. Then answer on the final two lines exactly as:\n" +
		"SELECTED: <candidate name>\n" +
		"RATIONALE: <one sentence citing shape properties>\n")
	return b.String()
}

// parseSelection extracts the SELECTED/RATIONALE lines from model output.
func parseSelection(raw string) (variant, rationale string) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "SELECTED:"); ok {
			variant = strings.Trim(strings.TrimSpace(v), "`*\"'")
		} else if r, ok := strings.CutPrefix(line, "RATIONALE:"); ok {
			rationale = strings.TrimSpace(r)
		}
	}
	return variant, rationale
}

func candidateNamed(candidates []Candidate, name string) bool {
	for _, c := range candidates {
		if c.Name == name {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
