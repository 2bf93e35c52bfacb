// Package interval's Interpret drives the interval domain over a
// method's CFG along the schedule produced by internal/wpo: a
// counter-based worklist walks scheduling edges to a fixpoint, widening
// at component exits until the head stabilizes, then narrowing once
// before sealing the component.
package interval

import (
	"jpamb/internal/cfg"
	"jpamb/internal/graph"
	"jpamb/internal/wpo"
)

// componentMode tracks where a WPO component sits in its
// widen-then-narrow-once fixpoint cycle.
type componentMode int

const (
	modeWidening componentMode = iota
	modeNarrowing
	modeSealed
)

type componentRuntime struct {
	mode componentMode

	// outerSeed is the join of every contribution to the head that
	// arrives from outside the component (captured the first time the
	// head fires, before any widening round has run). The synthetic
	// exit only ever receives flow that went around the loop body at
	// least once, so narrowing against the exit's incoming state alone
	// would silently drop values, like the pre-loop entry value, that
	// reach the head directly and never pass through the exit.
	outerSeedSet bool
	outerSeed    State
}

// Result is the per-block final interval state, indexed by CFG block
// id, after the schedule has fully stabilized.
type Result struct {
	BlockIn []State
}

// Interpret runs the WPO-scheduled interval fixpoint over c with w as
// its schedule and init as the entry state (locals for the method's
// declared parameters; all other locals start at Bottom).
func Interpret(c *cfg.CFG, w *wpo.WPO, init State) (*Result, error) {
	numLocals := len(init.Locals)

	nodeState := make([]State, w.NumNodes)
	for i := range nodeState {
		nodeState[i] = NewState(numLocals)
	}
	nodeState[0] = JoinState(nodeState[0], init)

	counters := make([]int, w.NumNodes)
	copy(counters, w.NumSchedPred)

	runtimes := make([]*componentRuntime, len(w.Components))
	for i := range runtimes {
		runtimes[i] = &componentRuntime{}
	}

	var queue []int
	enqueued := make([]bool, w.NumNodes)
	enqueue := func(n int) {
		if !enqueued[n] {
			enqueued[n] = true
			queue = append(queue, n)
		}
	}

	// Entry has no scheduling predecessors by construction (the
	// scheduling-edge subgraph is acyclic), so it is always ready.
	enqueue(0)

	blockIn := make([]State, len(c.Blocks))

	// headToComponent and componentMembers let propagate from an
	// original node redirect a true back-edge (one whose raw CFG target
	// is the head of the very component that node belongs to) to that
	// component's synthetic exit instead, mirroring the e.To==head
	// redirection sccWPO applies when building the schedule.
	headToComponent := make(map[int]int, len(w.Components))
	componentMembers := make([]map[int]bool, len(w.Components))
	for i, comp := range w.Components {
		headToComponent[comp.Head] = i
		members := make(map[int]bool, len(comp.Members))
		for _, n := range comp.Members {
			members[n] = true
		}
		componentMembers[i] = members
	}
	redirectTarget := func(n, t int) int {
		if ci, ok := headToComponent[t]; ok && componentMembers[ci][n] {
			return w.Components[ci].Exit
		}
		return t
	}

	// reenterComponent resets the component's interior for another
	// scheduling round: counters go back to their outer-only predecessor
	// counts, and every member's accumulated state is cleared to bottom
	// except the head, which is seeded with headState (the freshly
	// widened or narrowed value). Clearing stale interior state matters
	// during narrowing, where the new iterate can be smaller than the
	// old one and a leftover join would silently inflate it back up.
	reenterComponent := func(idx int, headState State) {
		comp := w.Components[idx]
		outer := w.NumOuterSchedPred[idx]
		for _, n := range comp.Members {
			counters[n] = outer[n]
			enqueued[n] = false
			nodeState[n] = NewState(numLocals)
		}
		nodeState[comp.Head] = headState
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		enqueued[n] = false

		if n < w.NumOriginalNodes {
			// Original CFG node: either the head of a component, or a
			// plain node; either way, apply its block transfer.
			block := c.Blocks[n]
			blockIn[n] = nodeState[n]

			if compIdx := w.NodeToComponent[n]; compIdx != -1 && w.Components[compIdx].Head == n {
				rt := runtimes[compIdx]
				if !rt.outerSeedSet {
					rt.outerSeed = nodeState[n]
					rt.outerSeedSet = true
				}
			}

			outs, err := TransferBlock(c.Function, block, nodeState[n])
			if err != nil {
				return nil, err
			}

			for i, succ := range block.Successors {
				propagate(nodeState, counters, enqueue, redirectTarget(n, succ), outs[i])
			}
			continue
		}

		// Synthetic exit node: the component's stabilization checkpoint.
		compIdx := exitComponent(w, n)
		rt := runtimes[compIdx]
		head := w.Components[compIdx].Head
		incoming := nodeState[n]

		switch rt.mode {
		case modeWidening:
			widened, changed := WidenState(nodeState[head], incoming)
			if changed {
				reenterComponent(compIdx, widened)
				enqueue(head)
				continue
			}
			narrowed, _ := NarrowState(nodeState[head], JoinState(rt.outerSeed, incoming))
			rt.mode = modeNarrowing
			reenterComponent(compIdx, narrowed)
			enqueue(head)

		case modeNarrowing:
			rt.mode = modeSealed
			forwardExit(w, nodeState, counters, enqueue, n, incoming)

		case modeSealed:
			forwardExit(w, nodeState, counters, enqueue, n, incoming)
		}
	}

	return &Result{BlockIn: blockIn}, nil
}

func propagate(nodeState []State, counters []int, enqueue func(int), succ int, out State) {
	nodeState[succ] = JoinState(nodeState[succ], out)
	counters[succ]--
	if counters[succ] <= 0 {
		enqueue(succ)
	}
}

func forwardExit(w *wpo.WPO, nodeState []State, counters []int, enqueue func(int), exit int, state State) {
	for _, succ := range w.SchedSucc[exit] {
		propagate(nodeState, counters, enqueue, succ, state)
	}
}

func exitComponent(w *wpo.WPO, exit int) int {
	for i, c := range w.Components {
		if c.Exit == exit {
			return i
		}
	}
	return -1
}

// BuildSchedule is a convenience wrapper composing the control-flow
// graph into the graph package's node/edge view Construct expects.
func BuildSchedule(c *cfg.CFG) *wpo.WPO {
	g := graph.New(len(c.Blocks))
	for _, b := range c.Blocks {
		for _, s := range b.Successors {
			g.AddEdge(b.ID, s)
		}
	}
	return wpo.Construct(g)
}
