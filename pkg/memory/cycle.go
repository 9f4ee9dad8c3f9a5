package memory

// Cycle Detection
//
// Runs whenever a handle on a cell with adoption links is released.
// It is a trial deletion over the embedder's CanReach predicate:
//
// 1. Clique: breadth-first closure over links starting at the released cell
// 2. Participants: clique cells mutually reachable with another clique cell
// 3. Internal strong: links held by participants that target a participant
// 4. A participant whose strong count exceeds its internal strong has an
//    owner outside the cycle; the whole detection is abandoned
// 5. Otherwise every participant is torn down at once
//
// Cost is proportional to the adoption subgraph reachable from the cell.

// clique returns the cells reachable from root via links, root first,
// in discovery order.
func clique[T Reachable](root *cell[T]) []*cell[T] {
	seen := map[*cell[T]]bool{root: true}
	members := []*cell[T]{root}
	for i := 0; i < len(members); i++ {
		c := members[i]
		for _, id := range c.order {
			next := c.links[id]
			if seen[next] {
				continue
			}
			seen[next] = true
			members = append(members, next)
		}
	}
	return members
}

// participants returns clique cells that are mutually reachable with at
// least one other clique cell, in clique order.
func participants[T Reachable](members []*cell[T]) []*cell[T] {
	marked := make(map[*cell[T]]bool)
	for _, a := range members {
		for _, b := range members {
			if a == b || marked[b] {
				continue
			}
			if a.value.CanReach(b.id()) && b.value.CanReach(a.id()) {
				marked[b] = true
			}
		}
	}
	var out []*cell[T]
	for _, c := range members {
		if marked[c] {
			out = append(out, c)
		}
	}
	return out
}

// internalStrong counts, per participant, the links held by other
// participants that point at it.
func internalStrong[T Reachable](cycle []*cell[T]) map[*cell[T]]uint {
	in := make(map[*cell[T]]bool, len(cycle))
	for _, c := range cycle {
		in[c] = true
	}
	counts := make(map[*cell[T]]uint, len(cycle))
	for _, c := range cycle {
		for _, id := range c.order {
			if target := c.links[id]; in[target] && target != c {
				counts[target]++
			}
		}
	}
	return counts
}

// collect runs detection from c and tears the cycle down when nothing
// outside it holds a participant. Reports whether c itself was collected.
func collect[T Reachable](c *cell[T]) bool {
	members := clique(c)
	cycle := participants(members)
	if len(cycle) == 0 {
		c.heap.onDetection(len(members), 0, false)
		return false
	}

	internal := internalStrong(cycle)
	for _, p := range cycle {
		if p.strong > internal[p] {
			c.heap.onDetection(len(members), len(cycle), false)
			return false
		}
	}

	// Sever edges inside the cycle; the strong units they stood for die
	// with the participants. Edges leaving the cycle are released below.
	in := make(map[ObjectID]bool, len(cycle))
	for _, p := range cycle {
		in[p.id()] = true
	}
	var outgoing []*cell[T]
	for _, p := range cycle {
		for _, id := range append([]ObjectID(nil), p.order...) {
			if in[id] {
				p.removeLink(id)
			}
		}
		outgoing = append(outgoing, p.takeLinks()...)
	}

	for _, p := range cycle {
		p.strong = 0
	}
	for _, p := range cycle {
		p.destroy()
	}
	for _, p := range cycle {
		p.releaseWeak()
	}
	c.heap.onDetection(len(members), len(cycle), true)

	for _, child := range outgoing {
		release(child)
	}
	for _, p := range cycle {
		if p == c {
			return true
		}
	}
	return false
}
