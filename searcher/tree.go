package searcher

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID indexes a node in its tree's arena. IDs are assigned in creation order,
// so the root is always 0.
type NodeID int

const NoParent NodeID = -1

// Node is one reasoning state: the steps taken so far and the search statistics
// gathered through it.
type Node struct {
	id       NodeID
	parent   NodeID
	children []NodeID
	steps    []string
	visits   int
	rewards  float64
}

func (n *Node) ID() NodeID       { return n.id }
func (n *Node) Parent() NodeID   { return n.parent }
func (n *Node) Visits() int      { return n.visits }
func (n *Node) Rewards() float64 { return n.rewards }
func (n *Node) Depth() int       { return len(n.steps) }
func (n *Node) IsRoot() bool     { return n.parent == NoParent }
func (n *Node) NumChildren() int { return len(n.children) }

// Steps returns a copy of the node's reasoning steps.
func (n *Node) Steps() []string {
	steps := make([]string, len(n.steps))
	copy(steps, n.steps)
	return steps
}

// Children returns a copy of the child IDs in creation order.
func (n *Node) Children() []NodeID {
	children := make([]NodeID, len(n.children))
	copy(children, n.children)
	return children
}

// LastStep is the step added by the expansion that created this node,
// empty for the root.
func (n *Node) LastStep() string {
	if len(n.steps) == 0 {
		return ""
	}
	return n.steps[len(n.steps)-1]
}

// Mean is the average score of the node, 0 if it was never visited.
func (n *Node) Mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.rewards / float64(n.visits)
}

// Tree is an arena of nodes sharing one question. Parents are referenced by
// index, children are owned by their parent through the index list.
type Tree struct {
	runID    uuid.UUID
	question string
	nodes    []*Node
}

func NewTree(question string) *Tree {
	t := &Tree{
		runID:    uuid.New(),
		question: question,
	}
	t.nodes = append(t.nodes, &Node{
		id:     0,
		parent: NoParent,
		steps:  []string{},
	})
	return t
}

func (t *Tree) RunID() uuid.UUID { return t.runID }
func (t *Tree) Question() string { return t.question }
func (t *Tree) Root() *Node      { return t.nodes[0] }
func (t *Tree) Size() int        { return len(t.nodes) }

// Node returns the node with the given ID. Unknown IDs are a programming error.
func (t *Tree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("node %d does not exist", id))
	}
	return t.nodes[id]
}

// Expand appends a child holding the parent's steps plus step.
func (t *Tree) Expand(parent NodeID, step string) NodeID {
	p := t.Node(parent)

	steps := make([]string, len(p.steps), len(p.steps)+1)
	copy(steps, p.steps)
	steps = append(steps, step)

	child := &Node{
		id:     NodeID(len(t.nodes)),
		parent: parent,
		steps:  steps,
	}
	t.nodes = append(t.nodes, child)
	p.children = append(p.children, child.id)
	return child.id
}

// SelectChild picks the child of id with the highest UCB1 value. The first
// unvisited child in creation order wins outright, and ties keep the earliest
// child.
func (t *Tree) SelectChild(id NodeID, c float64) (NodeID, error) {
	node := t.Node(id)
	if len(node.children) == 0 {
		return NoParent, fmt.Errorf("select child of node %d: %w", id, ErrNoChildren)
	}

	totalVisits := 0
	for _, cid := range node.children {
		child := t.nodes[cid]
		// Prioritize unexplored nodes
		if child.visits == 0 {
			return cid, nil
		}
		totalVisits += child.visits
	}

	u := newUCB(c, totalVisits)
	best := node.children[0]
	bestScore := u.evaluate(t.nodes[best].rewards, t.nodes[best].visits)
	for _, cid := range node.children[1:] {
		child := t.nodes[cid]
		if score := u.evaluate(child.rewards, child.visits); score > bestScore {
			bestScore = score
			best = cid
		}
	}
	return best, nil
}

// Backpropagate adds one visit and score to id and every ancestor up to the root.
func (t *Tree) Backpropagate(id NodeID, score float64) {
	for id != NoParent {
		node := t.Node(id)
		node.visits++
		node.rewards += score
		id = node.parent
	}
}

// BestPath follows the most visited child from the root until a leaf. Ties keep
// the earliest child. The root is included.
func (t *Tree) BestPath() []NodeID {
	node := t.Root()
	path := []NodeID{node.id}
	for len(node.children) > 0 {
		best := t.nodes[node.children[0]]
		for _, cid := range node.children[1:] {
			if child := t.nodes[cid]; child.visits > best.visits {
				best = child
			}
		}
		node = best
		path = append(path, node.id)
	}
	return path
}

// Walk visits every node in pre-order, children in creation order.
func (t *Tree) Walk(fn func(node *Node)) {
	var walk func(id NodeID)
	walk = func(id NodeID) {
		node := t.nodes[id]
		fn(node)
		for _, cid := range node.children {
			walk(cid)
		}
	}
	walk(0)
}
