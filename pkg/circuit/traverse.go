package circuit

// Visit performs a generic unique-visit traversal from root, calling fn
// once per reachable node in post-order (operands before the node that
// references them), matching the order printers need to emit
// dependencies before their users. Returning false from fn stops the
// walk early without visiting that node's remaining siblings.
func (g *Graph) Visit(root Id, fn func(Id) bool) {
	visited := make([]bool, len(g.nodes))
	g.visit(root, visited, fn)
}

func (g *Graph) visit(id Id, visited []bool, fn func(Id) bool) bool {
	if visited[id] {
		return true
	}

	visited[id] = true

	for _, operand := range g.Operands(id) {
		if !g.visit(operand, visited, fn) {
			return false
		}
	}

	return fn(id)
}

// CollectDown returns every node of one of the given kinds reachable
// downward (through operands) from root, in first-encountered order.
func (g *Graph) CollectDown(root Id, kinds ...Kind) []Id {
	want := kindSet(kinds)

	var out []Id

	g.Visit(root, func(id Id) bool {
		if want[g.Kind(id)] {
			out = append(out, id)
		}

		return true
	})

	return out
}

// CollectUp returns every node of one of the given kinds reachable
// upward (through users) from root, in breadth-first order.
func (g *Graph) CollectUp(root Id, kinds ...Kind) []Id {
	want := kindSet(kinds)

	visited := make([]bool, len(g.nodes))
	visited[root] = true

	queue := []Id{root}

	var out []Id

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		for _, u := range g.Users(id) {
			if visited[u] {
				continue
			}

			visited[u] = true

			queue = append(queue, u)

			if want[g.Kind(u)] {
				out = append(out, u)
			}
		}
	}

	return out
}

func kindSet(kinds []Kind) map[Kind]bool {
	m := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		m[k] = true
	}

	return m
}
