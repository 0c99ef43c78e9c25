package searcher

import "reasoning/metrics"

// NodeRecords flattens the tree in pre-order for CSV export.
func (t *Tree) NodeRecords() []metrics.NodeRecord {
	records := make([]metrics.NodeRecord, 0, t.Size())
	t.Walk(func(node *Node) {
		records = append(records, metrics.NodeRecord{
			ID:       int(node.id),
			Parent:   int(node.parent),
			Depth:    node.Depth(),
			Visits:   node.visits,
			ValueSum: node.rewards,
			Step:     node.LastStep(),
		})
	})
	return records
}
