package pipeline

import (
	"context"
	"fmt"
)

// =============================================================================
// DECLARATIVE GRAPH EXECUTOR
// =============================================================================
//
// The selection flow is a small directed graph: nodes mutate State, edges
// carry optional guard conditions evaluated after the node runs. The first
// matching edge wins; a node with no edges is terminal. The same node
// functions also back the sequential chain executor, so the two executors
// cannot drift apart in behavior.

type nodeFunc func(ctx context.Context, s *State)

type edge struct {
	// when guards the edge; nil means unconditional.
	when func(s *State) bool
	to   string
}

type node struct {
	id    string
	run   nodeFunc
	edges []edge
}

// GraphExecutor walks a validated node graph.
type GraphExecutor struct {
	nodes map[string]*node
	start string
}

// NewGraphExecutor builds an executor and validates the topology: the start
// node exists, every edge targets a known node, every node ends in an
// unconditional edge or is terminal, and a terminal node is reachable.
func NewGraphExecutor(start string, nodes []*node) (*GraphExecutor, error) {
	byID := make(map[string]*node, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.id]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.id)
		}
		byID[n.id] = n
	}
	if _, ok := byID[start]; !ok {
		return nil, fmt.Errorf("start node %q not defined", start)
	}

	terminalReachable := false
	for _, n := range byID {
		if len(n.edges) == 0 {
			terminalReachable = true
			continue
		}
		for i, e := range n.edges {
			if _, ok := byID[e.to]; !ok {
				return nil, fmt.Errorf("node %q edge targets unknown node %q", n.id, e.to)
			}
			if i == len(n.edges)-1 && e.when != nil {
				return nil, fmt.Errorf("node %q has no unconditional fallback edge", n.id)
			}
		}
	}
	if !terminalReachable {
		return nil, fmt.Errorf("graph has no terminal node")
	}

	return &GraphExecutor{nodes: byID, start: start}, nil
}

// Nodes returns the node identifiers, for introspection and tests.
func (g *GraphExecutor) Nodes() []string {
	out := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	return out
}

// Run walks the graph from the start node, recording each visited node in the
// state trace. The step cap guards against a malformed cyclic topology.
func (g *GraphExecutor) Run(ctx context.Context, s *State) error {
	const maxSteps = 32

	current := g.nodes[g.start]
	for steps := 0; ; steps++ {
		if steps >= maxSteps {
			return fmt.Errorf("graph exceeded %d steps at node %q", maxSteps, current.id)
		}

		s.Trace = append(s.Trace, current.id)
		current.run(ctx, s)

		if len(current.edges) == 0 {
			return nil
		}
		next := ""
		for _, e := range current.edges {
			if e.when == nil || e.when(s) {
				next = e.to
				break
			}
		}
		current = g.nodes[next]
	}
}

// buildGraph wires the selection topology over the selector's node methods.
func (sel *Selector) buildGraph() (*GraphExecutor, error) {
	resolved := func(s *State) bool { return !s.Ambiguous }
	fewSurvivors := func(s *State) bool { return len(s.Survivors) <= 1 }
	reasoned := func(s *State) bool { return s.ReasoningApplied }

	return NewGraphExecutor(nodeProfileData, []*node{
		{id: nodeProfileData, run: sel.profileData, edges: []edge{{to: nodeHardFilter}}},
		{id: nodeHardFilter, run: sel.hardFilter, edges: []edge{
			{when: fewSurvivors, to: nodeFinalize},
			{to: nodeScoreShape},
		}},
		{id: nodeScoreShape, run: sel.scoreShape, edges: []edge{{to: nodeScoreIntent}}},
		{id: nodeScoreIntent, run: sel.scoreIntent, edges: []edge{{to: nodeApplyPenalties}}},
		{id: nodeApplyPenalties, run: sel.applyPenalties, edges: []edge{{to: nodeRank}}},
		{id: nodeRank, run: sel.rankNode, edges: []edge{
			{when: resolved, to: nodeFinalize},
			{to: nodeSemanticTieBrk},
		}},
		{id: nodeSemanticTieBrk, run: sel.semanticTieBreak, edges: []edge{
			{when: resolved, to: nodeFinalize},
			{to: nodeReason},
		}},
		{id: nodeReason, run: sel.reasonNode, edges: []edge{
			{when: reasoned, to: nodeFinalize},
			{to: nodeValidate},
		}},
		{id: nodeValidate, run: sel.validateNode, edges: []edge{{to: nodeFinalize}}},
		{id: nodeFinalize, run: sel.finalizeNode},
	})
}

// =============================================================================
// SEQUENTIAL CHAIN EXECUTOR
// =============================================================================

// ChainExecutor runs the same node functions as a hand-rolled sequence.
// It exists as the simple reference rendition of the flow; both executors
// must produce identical results for identical inputs.
type ChainExecutor struct {
	sel *Selector
}

// NewChainExecutor wraps the selector's nodes in sequential form.
func NewChainExecutor(sel *Selector) *ChainExecutor {
	return &ChainExecutor{sel: sel}
}

// Run executes the selection flow sequentially, recording the same trace the
// graph executor would.
func (c *ChainExecutor) Run(ctx context.Context, s *State) error {
	sel := c.sel

	step := func(id string, fn nodeFunc) {
		s.Trace = append(s.Trace, id)
		fn(ctx, s)
	}

	step(nodeProfileData, sel.profileData)
	step(nodeHardFilter, sel.hardFilter)
	if len(s.Survivors) <= 1 {
		step(nodeFinalize, sel.finalizeNode)
		return nil
	}

	step(nodeScoreShape, sel.scoreShape)
	step(nodeScoreIntent, sel.scoreIntent)
	step(nodeApplyPenalties, sel.applyPenalties)
	step(nodeRank, sel.rankNode)
	if !s.Ambiguous {
		step(nodeFinalize, sel.finalizeNode)
		return nil
	}

	step(nodeSemanticTieBrk, sel.semanticTieBreak)
	if !s.Ambiguous {
		step(nodeFinalize, sel.finalizeNode)
		return nil
	}

	step(nodeReason, sel.reasonNode)
	if !s.ReasoningApplied {
		step(nodeValidate, sel.validateNode)
	}
	step(nodeFinalize, sel.finalizeNode)
	return nil
}
