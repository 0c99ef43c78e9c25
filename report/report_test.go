package report

import (
	"bytes"
	"reasoning/searcher"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func newTree() (*searcher.Tree, searcher.NodeID) {
	tree := searcher.NewTree("2+2?")
	a := tree.Expand(0, "### Step 1: add\n2+2")
	b := tree.Expand(0, "### Step 1: guess")
	leaf := tree.Expand(a, "### Final Answer\n4")
	tree.Backpropagate(leaf, 8)
	tree.Backpropagate(leaf, 6)
	tree.Backpropagate(b, -2)
	return tree, leaf
}

func TestRender(t *testing.T) {
	t.Run("renders every node indented by depth", func(t *testing.T) {
		tree, _ := newTree()
		var buf bytes.Buffer

		require.NoError(t, Render(&buf, tree, WithProfile(termenv.Ascii)))

		require.Equal(t, strings.Join([]string{
			"#0 2+2?  Q=12.00 N=3 mean=4.00",
			"  #1 ### Step 1: add ...  Q=14.00 N=2 mean=7.00",
			"    #3 ### Final Answer ...  Q=14.00 N=2 mean=7.00",
			"  #2 ### Step 1: guess  Q=-2.00 N=1 mean=-2.00",
		}, "\n")+"\n", buf.String())
	})

	t.Run("depth limit hides deeper nodes", func(t *testing.T) {
		tree, _ := newTree()
		var buf bytes.Buffer

		require.NoError(t, Render(&buf, tree, WithProfile(termenv.Ascii), WithMaxDepth(1)))

		require.Equal(t, 3, strings.Count(buf.String(), "\n"))
		require.NotContains(t, buf.String(), "#3")
	})

	t.Run("long labels are truncated", func(t *testing.T) {
		tree := searcher.NewTree(strings.Repeat("x", 100))
		var buf bytes.Buffer

		require.NoError(t, Render(&buf, tree, WithProfile(termenv.Ascii), WithWidth(10)))

		require.Equal(t, "#0 xxxxxxxxx…  Q=0.00 N=0 mean=0.00\n", buf.String())
	})
}

func TestTrace(t *testing.T) {
	tree, leaf := newTree()
	var buf bytes.Buffer

	require.NoError(t, Trace(&buf, tree, leaf))

	require.Equal(t, "Question: [2+2?]\n"+
		"----------\n### Step 1: add\n2+2\n"+
		"----------\n### Final Answer\n4\n"+
		"----------\n", buf.String())

	buf.Reset()
	require.NoError(t, Trace(&buf, tree, 0))
	require.Equal(t, "Question: [2+2?]\n----------\n", buf.String(), "Root trace should have no steps")

	var best bytes.Buffer
	require.NoError(t, BestTrace(&best, tree))
	buf.Reset()
	require.NoError(t, Trace(&buf, tree, leaf))
	require.Equal(t, buf.String(), best.String(), "Best path should end at the most visited leaf")
}
