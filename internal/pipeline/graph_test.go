package pipeline

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vizsel/internal/config"
	"vizsel/internal/profile"
)

func TestGraphAndChainExecutorsAgree(t *testing.T) {
	requests := []Request{
		{Scenario: "trend", Query: "temperature trend over time", Shape: timeseriesShape()},
		{Scenario: "kpi", Query: "current power", Shape: profile.DataShapeProfile{EntityCount: 1, MetricCount: 1}},
		{
			Scenario: "comparison",
			Query:    "compare pumps",
			Shape:    profile.DataShapeProfile{EntityCount: 4, MetricCount: 1, InstanceCount: 50},
		},
		{
			Scenario: "trend",
			Query:    "phase current",
			Shape: profile.DataShapeProfile{
				EntityCount: 1, MetricCount: 1, InstanceCount: 200,
				HasTimeseries: true, HasPhaseData: true,
			},
		},
	}

	graphSel := newTestSelector(t, nil, nil)
	chainSel := newTestSelector(t, nil, func(c *config.Config) {
		c.Pipeline.UseGraphEngine = false
	})

	for _, req := range requests {
		graphResult := graphSel.RunSelection(context.Background(), req)
		chainResult := chainSel.RunSelection(context.Background(), req)
		if diff := cmp.Diff(graphResult, chainResult); diff != "" {
			t.Errorf("executors disagree for %s %q (-graph +chain):\n%s", req.Scenario, req.Query, diff)
		}
	}
}

func TestGraphTopologyIsValid(t *testing.T) {
	sel := newTestSelector(t, nil, nil)
	graph, err := sel.buildGraph()
	require.NoError(t, err)
	assert.Len(t, graph.Nodes(), 10)
}

func TestGraphValidationRejectsUnknownTarget(t *testing.T) {
	noop := func(context.Context, *State) {}
	_, err := NewGraphExecutor("a", []*node{
		{id: "a", run: noop, edges: []edge{{to: "missing"}}},
	})
	assert.Error(t, err)
}

func TestGraphValidationRequiresFallbackEdge(t *testing.T) {
	noop := func(context.Context, *State) {}
	always := func(*State) bool { return true }
	_, err := NewGraphExecutor("a", []*node{
		{id: "a", run: noop, edges: []edge{{when: always, to: "b"}}},
		{id: "b", run: noop},
	})
	assert.Error(t, err)
}

func TestGraphValidationRejectsCycleWithoutTerminal(t *testing.T) {
	noop := func(context.Context, *State) {}
	_, err := NewGraphExecutor("a", []*node{
		{id: "a", run: noop, edges: []edge{{to: "b"}}},
		{id: "b", run: noop, edges: []edge{{to: "a"}}},
	})
	assert.Error(t, err)
}

func TestGraphRunCapsSteps(t *testing.T) {
	noop := func(context.Context, *State) {}
	// A cycle with an unreachable terminal passes static validation but must
	// be stopped by the step cap at runtime.
	g, err := NewGraphExecutor("a", []*node{
		{id: "a", run: noop, edges: []edge{{to: "b"}}},
		{id: "b", run: noop, edges: []edge{{to: "a"}}},
		{id: "end", run: noop},
	})
	require.NoError(t, err)

	s := &State{log: testRequestLogger()}
	assert.Error(t, g.Run(context.Background(), s))
}
