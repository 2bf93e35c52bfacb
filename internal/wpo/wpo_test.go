package wpo

import (
	"testing"

	"github.com/kr/pretty"

	"jpamb/internal/graph"
)

func TestConstructAcyclicGraphHasNoComponents(t *testing.T) {
	g := graph.New(3)
	g.AddEdge(0, 1)
	g.AddEdge(1, 2)

	w := Construct(g)
	if len(w.Components) != 0 {
		t.Fatalf("expected no WPO components for an acyclic graph, got %s", pretty.Sprint(w.Components))
	}
	if w.NumNodes != w.NumOriginalNodes {
		t.Errorf("NumNodes = %d, want %d (no synthetic exits)", w.NumNodes, w.NumOriginalNodes)
	}
}

// TestConstructTwoNodeCycle mirrors a {0->1, 1->0} two-node cycle: the
// schedule should introduce one synthetic exit node (id 2), scheduling
// edges 0->1 and 1->2, and a stabilizing edge 2->0.
func TestConstructTwoNodeCycle(t *testing.T) {
	g := graph.New(2)
	g.AddEdge(0, 1)
	g.AddEdge(1, 0)

	w := Construct(g)
	if len(w.Components) != 1 {
		t.Fatalf("expected exactly one component, got %d: %s", len(w.Components), pretty.Sprint(w.Components))
	}
	comp := w.Components[0]
	if comp.Head != 0 {
		t.Errorf("component head = %d, want 0 (the minimum node, lowest id as entry point)", comp.Head)
	}
	if comp.Exit != 2 {
		t.Errorf("component exit = %d, want 2 (the first synthetic node)", comp.Exit)
	}

	wantSched := map[graph.Edge]bool{{From: 0, To: 1}: true, {From: 1, To: 2}: true}
	if len(w.SchedulingEdges) != len(wantSched) {
		t.Fatalf("SchedulingEdges = %s, want %v", pretty.Sprint(w.SchedulingEdges), wantSched)
	}
	for _, e := range w.SchedulingEdges {
		if !wantSched[e] {
			t.Errorf("unexpected scheduling edge %+v", e)
		}
	}

	if len(w.StabilizingEdges) != 1 || w.StabilizingEdges[0] != (graph.Edge{From: 2, To: 0}) {
		t.Errorf("StabilizingEdges = %v, want [{2 0}]", w.StabilizingEdges)
	}
}

func TestConstructSelfLoop(t *testing.T) {
	g := graph.New(1)
	g.AddEdge(0, 0)

	w := Construct(g)
	if len(w.Components) != 1 {
		t.Fatalf("expected one component for a self-loop, got %d", len(w.Components))
	}
	if w.Components[0].Head != 0 {
		t.Errorf("head = %d, want 0", w.Components[0].Head)
	}
}
