package domain

// GraphDiff represents the structural changes between two graphs.
// It is designed to be serialized to JSON when comparing discovery runs.
type GraphDiff struct {
	AddedNodes   []string `json:"added_nodes,omitempty"`
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	AddedEdges   []Edge `json:"added_edges,omitempty"`
	RemovedEdges []Edge `json:"removed_edges,omitempty"`

	// Reversed holds edges of the new graph whose direction flipped.
	Reversed []Edge `json:"reversed,omitempty"`

	// Relabelled holds edges of the new graph whose label changed.
	Relabelled []EdgeChange `json:"relabelled,omitempty"`
}

// EdgeChange pairs the old and new label of an edge.
type EdgeChange struct {
	From     string `json:"from"`
	To       string `json:"to"`
	OldLabel string `json:"old_label"`
	NewLabel string `json:"new_label"`
}

type edgeKey struct{ from, to string }

// Diff calculates the difference between oldGraph and newGraph.
// If oldGraph is nil, it returns a diff representing the entire newGraph.
// It returns nil when both graphs have the same nodes, edges and labels.
func Diff(oldGraph, newGraph *Graph) *GraphDiff {
	if newGraph == nil {
		return nil
	}
	if oldGraph == nil {
		oldGraph = &Graph{}
	}

	diff := &GraphDiff{}

	for _, n := range newGraph.Nodes {
		if !oldGraph.HasNode(n.ID) {
			diff.AddedNodes = append(diff.AddedNodes, n.ID)
		}
	}
	for _, n := range oldGraph.Nodes {
		if !newGraph.HasNode(n.ID) {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	oldEdges := indexEdges(oldGraph)
	newEdges := indexEdges(newGraph)

	for _, e := range newGraph.Edges {
		prev, ok := oldEdges[edgeKey{e.From, e.To}]
		switch {
		case ok && prev.Label != e.Label:
			diff.Relabelled = append(diff.Relabelled, EdgeChange{
				From:     e.From,
				To:       e.To,
				OldLabel: prev.Label,
				NewLabel: e.Label,
			})
		case ok:
		case hasKey(oldEdges, edgeKey{e.To, e.From}):
			diff.Reversed = append(diff.Reversed, e)
		default:
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for _, e := range oldGraph.Edges {
		if hasKey(newEdges, edgeKey{e.From, e.To}) || hasKey(newEdges, edgeKey{e.To, e.From}) {
			continue
		}
		diff.RemovedEdges = append(diff.RemovedEdges, e)
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func indexEdges(g *Graph) map[edgeKey]Edge {
	idx := make(map[edgeKey]Edge, len(g.Edges))
	for _, e := range g.Edges {
		k := edgeKey{e.From, e.To}
		if _, dup := idx[k]; !dup {
			idx[k] = e
		}
	}
	return idx
}

func hasKey(m map[edgeKey]Edge, k edgeKey) bool {
	_, ok := m[k]
	return ok
}

// IsEmpty checks if the diff contains any change.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0 &&
		len(d.Reversed) == 0 &&
		len(d.Relabelled) == 0
}
