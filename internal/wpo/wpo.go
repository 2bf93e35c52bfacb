// Package wpo builds the Weak Partial Order scheduling graph used to
// drive the interval abstract interpreter to a fixpoint on irreducible
// control flow. Grounded directly on original_source/src/wpo.c's
// recursive sccWPO/wpo_construct pair: nodes are augmented with
// synthetic exits, edges are split into a feed-forward "scheduling"
// class and a back-edge "stabilizing" class, and every component
// records the predecessor counts the fixpoint scheduler needs.
package wpo

import "jpamb/internal/graph"

// Component is one WPO component record (Cx[i] in the reference
// implementation): its Head, the id of its synthetic Exit, and the full
// transitive Member list (including nested components' own exits),
// which is what the predecessor-count pass below uses to decide
// whether a scheduling edge originates "outside" this component.
type Component struct {
	Head    int
	Exit    int
	Members []int
}

// WPO is the flattened result: node set (original ∪ synthetic exits),
// the two disjoint edge classes, and the bookkeeping the abstract
// interpreter's scheduler needs.
type WPO struct {
	NumOriginalNodes int
	NumNodes         int // NumOriginalNodes + number of synthetic exits
	SchedulingEdges  []graph.Edge
	StabilizingEdges []graph.Edge
	Heads            []int
	Exits            []int
	Components       []Component

	// NumSchedPred[node] is the total number of scheduling in-edges.
	NumSchedPred []int
	// NumOuterSchedPred[c][node] is the number of node's scheduling
	// in-edges whose source lies outside component c.
	NumOuterSchedPred [][]int
	// NodeToComponent[node] is the innermost component owning node, or
	// -1 if node belongs to no component (a leaf node outside any
	// cycle).
	NodeToComponent []int

	// SchedSucc/StabSucc are adjacency lists over the flattened node
	// set, built from the edge lists, for the scheduler to walk.
	SchedSucc [][]int
	StabSucc  [][]int
}

// componentBuilder accumulates Cx/heads/exits across the whole
// recursive construction, mirroring the Vector* out-parameters threaded
// through the C implementation's sccWPO/wpo_construct calls.
type componentBuilder struct {
	components []Component
	heads      []int
	exits      []int
	exitIndex  int
}

// result is the return value threaded through the recursive
// construction, mirroring the C WPOComponent struct.
type result struct {
	nodes             []int
	exits             []int
	schedulingEdges   []graph.Edge
	stabilizingEdges  []graph.Edge
	head, exit        int
}

// Construct builds the WPO for g, whose entry block must be node 0.
func Construct(g *graph.Graph) *WPO {
	b := &componentBuilder{exitIndex: g.NumNodes()}
	mr := graph.FromGraph(g)
	res := constructRec(mr, b)

	numNodes := b.exitIndex
	w := &WPO{
		NumOriginalNodes: g.NumNodes(),
		NumNodes:         numNodes,
		SchedulingEdges:  res.schedulingEdges,
		StabilizingEdges: res.stabilizingEdges,
		Heads:            b.heads,
		Exits:            b.exits,
		Components:       b.components,
	}

	w.NumSchedPred = make([]int, numNodes)
	for _, e := range w.SchedulingEdges {
		w.NumSchedPred[e.To]++
	}

	w.NodeToComponent = make([]int, numNodes)
	for i := range w.NodeToComponent {
		w.NodeToComponent[i] = -1
	}
	for i, c := range w.Components {
		for _, n := range c.Members {
			w.NodeToComponent[n] = i
		}
	}

	w.NumOuterSchedPred = make([][]int, len(w.Components))
	for i, c := range w.Components {
		counts := make([]int, numNodes)
		inComponent := make(map[int]bool, len(c.Members))
		for _, n := range c.Members {
			inComponent[n] = true
		}
		for _, e := range w.SchedulingEdges {
			if !inComponent[e.From] && inComponent[e.To] {
				counts[e.To]++
			}
		}
		w.NumOuterSchedPred[i] = counts
	}

	w.SchedSucc = make([][]int, numNodes)
	w.StabSucc = make([][]int, numNodes)
	for _, e := range w.SchedulingEdges {
		w.SchedSucc[e.From] = append(w.SchedSucc[e.From], e.To)
	}
	for _, e := range w.StabilizingEdges {
		w.StabSucc[e.From] = append(w.StabSucc[e.From], e.To)
	}

	return w
}

// constructRec is wpo_construct: decompose mr into SCCs, recursively
// resolve each into a WPO component via sccWPO, then lift scheduling
// edges that cross SCC boundaries so they originate from the source
// SCC's synthetic exit instead of the raw source node.
func constructRec(mr *graph.MathRepr, b *componentBuilder) result {
	numNodes := 0
	for _, n := range mr.Nodes {
		if n+1 > numNodes {
			numNodes = n + 1
		}
	}
	g := graph.FromGraphView(mr, numNodes)
	scc := graph.BuildSCC(g)

	var out result
	compExit := make([]int, len(scc.Components))

	for i, comp := range scc.Components {
		inSet := make(map[int]bool, len(comp))
		for _, n := range comp {
			inSet[n] = true
		}
		var subEdges []graph.Edge
		for _, n := range comp {
			for _, s := range g.Successors[n] {
				if inSet[s] {
					subEdges = append(subEdges, graph.Edge{From: n, To: s})
				}
			}
		}
		sub := &graph.MathRepr{Nodes: comp, Edges: subEdges}

		wc := sccWPO(sub, b)
		out.nodes = append(out.nodes, wc.nodes...)
		out.exits = append(out.exits, wc.exits...)
		out.schedulingEdges = append(out.schedulingEdges, wc.schedulingEdges...)
		out.stabilizingEdges = append(out.stabilizingEdges, wc.stabilizingEdges...)
		compExit[i] = wc.exit
	}

	for _, e := range mr.Edges {
		if scc.CompID[e.From] != scc.CompID[e.To] {
			out.schedulingEdges = append(out.schedulingEdges, graph.Edge{From: compExit[scc.CompID[e.From]], To: e.To})
		}
	}

	return out
}

// sccWPO is the per-SCC decision in the reference implementation: a
// trivial single node with no self-loop is emitted with no edges at
// all; a single node with a self-loop gets one synthetic exit and a
// scheduling+stabilizing edge pair; anything larger peels off its
// minimum-id node as head, redirects all of the SCC's edges into head
// toward a fresh synthetic exit, and recurses on what remains.
func sccWPO(mr *graph.MathRepr, b *componentBuilder) result {
	head := minNode(mr.Nodes)

	if countEdgesInto(mr, head) == 0 {
		return result{nodes: []int{mr.Nodes[0]}, head: mr.Nodes[0], exit: mr.Nodes[0]}
	}

	if len(mr.Nodes) == 1 {
		newExit := b.exitIndex
		b.exitIndex++

		b.components = append(b.components, Component{Head: head, Exit: newExit, Members: []int{head, newExit}})
		b.heads = append(b.heads, head)
		b.exits = append(b.exits, newExit)

		return result{
			nodes:            []int{head},
			exits:            []int{newExit},
			schedulingEdges:  []graph.Edge{{From: head, To: newExit}},
			stabilizingEdges: []graph.Edge{{From: newExit, To: head}},
			head:             head,
			exit:             newExit,
		}
	}

	newExit := b.exitIndex
	b.exitIndex++
	b.heads = append(b.heads, head)
	b.exits = append(b.exits, newExit)
	compIdx := len(b.components)
	b.components = append(b.components, Component{Head: head, Exit: newExit})

	var interiorNodes []int
	for _, n := range mr.Nodes {
		if n != head {
			interiorNodes = append(interiorNodes, n)
		}
	}
	interiorNodes = append(interiorNodes, newExit)

	var interiorEdges []graph.Edge
	for _, e := range mr.Edges {
		if e.To == head {
			interiorEdges = append(interiorEdges, graph.Edge{From: e.From, To: newExit})
		} else if e.From != head {
			interiorEdges = append(interiorEdges, e)
		}
	}

	inner := constructRec(&graph.MathRepr{Nodes: interiorNodes, Edges: interiorEdges}, b)

	members := append([]int{}, inner.exits...)
	members = append(members, inner.nodes...)
	members = append(members, head)
	b.components[compIdx].Members = members

	var outNodes []int
	for _, n := range inner.nodes {
		if n != newExit {
			outNodes = append(outNodes, n)
		}
	}
	outNodes = append(outNodes, head)

	sched := append([]graph.Edge{}, inner.schedulingEdges...)
	for _, e := range mr.Edges {
		if e.From == head {
			sched = append(sched, e)
		}
	}

	stab := append([]graph.Edge{}, inner.stabilizingEdges...)
	stab = append(stab, graph.Edge{From: newExit, To: head})

	return result{
		nodes:            outNodes,
		exits:            append(append([]int{}, inner.exits...), newExit),
		schedulingEdges:  sched,
		stabilizingEdges: stab,
		head:             head,
		exit:             newExit,
	}
}

func minNode(nodes []int) int {
	m := nodes[0]
	for _, n := range nodes[1:] {
		if n < m {
			m = n
		}
	}
	return m
}

func countEdgesInto(mr *graph.MathRepr, target int) int {
	n := 0
	for _, e := range mr.Edges {
		if e.To == target {
			n++
		}
	}
	return n
}
