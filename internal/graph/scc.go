package graph

// SCC is the strongly-connected-component decomposition of a Graph:
// components listed in reverse topological order (child SCCs before
// parent), matching original_source/src/scc.c's strong_connect
// unwind order.
type SCC struct {
	Components [][]int // Components[i] is the set of node ids in component i
	CompID     []int   // CompID[node] -> component index, or -1 if invalid
}

// tarjanFrame is one level of the explicit DFS work stack, recording
// enough state to resume strong_connect at the successor it was
// iterating when it recursed — the classic trick for converting
// Tarjan's recursive formulation to an explicit stack so deeply nested
// or irreducible CFGs with thousands of blocks don't blow the host
// stack (per design-notes §9).
type tarjanFrame struct {
	node    int
	succIdx int
}

// BuildSCC runs Tarjan's algorithm over g using an explicit work stack.
// Invalid nodes (per g.NotValid) are skipped and receive CompID -1.
func BuildSCC(g *Graph) *SCC {
	n := g.NumNodes()
	index := make([]int, n)
	lowLink := make([]int, n)
	onStack := make([]bool, n)
	compID := make([]int, n)
	for i := range index {
		index[i] = -1
		compID[i] = -1
	}

	var tstack []int // the Tarjan stack of nodes awaiting component assignment
	var components [][]int
	nextIndex := 0

	for start := 0; start < n; start++ {
		if g.NotValid[start] || index[start] != -1 {
			continue
		}

		work := []tarjanFrame{{node: start}}
		index[start] = nextIndex
		lowLink[start] = nextIndex
		nextIndex++
		tstack = append(tstack, start)
		onStack[start] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			v := top.node

			if top.succIdx < len(g.Successors[v]) {
				w := g.Successors[v][top.succIdx]
				top.succIdx++
				if g.NotValid[w] {
					continue
				}
				if index[w] == -1 {
					index[w] = nextIndex
					lowLink[w] = nextIndex
					nextIndex++
					tstack = append(tstack, w)
					onStack[w] = true
					work = append(work, tarjanFrame{node: w})
				} else if onStack[w] {
					if index[w] < lowLink[v] {
						lowLink[v] = index[w]
					}
				}
				continue
			}

			// all successors visited: pop and propagate low-link to parent
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := work[len(work)-1].node
				if lowLink[v] < lowLink[parent] {
					lowLink[parent] = lowLink[v]
				}
			}

			if lowLink[v] == index[v] {
				var comp []int
				for {
					w := tstack[len(tstack)-1]
					tstack = tstack[:len(tstack)-1]
					onStack[w] = false
					compID[w] = len(components)
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				components = append(components, comp)
			}
		}
	}

	return &SCC{Components: components, CompID: compID}
}
