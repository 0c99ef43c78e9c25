// Package report prints search trees and reasoning traces to a terminal.
package report

import (
	"fmt"
	"io"
	"reasoning/searcher"
	"strings"

	"github.com/muesli/termenv"
)

const separator = "----------"

type options struct {
	profile    termenv.Profile
	hasProfile bool
	width      int
	maxDepth   int
}

type Option func(o *options)

// WithProfile forces a color profile, termenv.Ascii disables colors.
func WithProfile(profile termenv.Profile) Option {
	return func(o *options) {
		o.profile = profile
		o.hasProfile = true
	}
}

// WithWidth truncates node labels to width runes.
func WithWidth(width int) Option {
	return func(o *options) {
		if width > 0 {
			o.width = width
		}
	}
}

// WithMaxDepth hides nodes deeper than depth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// Render writes one line per node, indented by depth. The root shows the
// question and every other node the step it added. Nodes on the best path are
// highlighted and unvisited nodes are dimmed.
func Render(w io.Writer, tree *searcher.Tree, opts ...Option) error {
	o := options{width: 72, maxDepth: -1}
	for _, opt := range opts {
		opt(&o)
	}

	out := termenv.NewOutput(w)
	if o.hasProfile {
		out = termenv.NewOutput(w, termenv.WithProfile(o.profile))
	}

	best := map[searcher.NodeID]bool{}
	for _, id := range tree.BestPath() {
		best[id] = true
	}

	var err error
	tree.Walk(func(node *searcher.Node) {
		if err != nil || o.maxDepth >= 0 && node.Depth() > o.maxDepth {
			return
		}

		label := node.LastStep()
		if node.IsRoot() {
			label = tree.Question()
		}
		stats := fmt.Sprintf("Q=%.2f N=%d mean=%.2f", node.Rewards(), node.Visits(), node.Mean())

		styled := out.String(fmt.Sprintf("#%d %s", node.ID(), truncate(firstLine(label), o.width)))
		switch {
		case node.IsRoot():
			styled = styled.Bold()
		case best[node.ID()]:
			styled = styled.Foreground(out.Color("2"))
		case node.Visits() == 0:
			styled = styled.Faint()
		}

		_, err = fmt.Fprintf(w, "%s%s  %s\n", strings.Repeat("  ", node.Depth()), styled, stats)
	})
	return err
}

// Trace writes the question and the steps of node id between separators.
func Trace(w io.Writer, tree *searcher.Tree, id searcher.NodeID) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: [%s]\n", tree.Question())
	for _, step := range tree.Node(id).Steps() {
		fmt.Fprintf(&b, "%s\n%s\n", separator, step)
	}
	b.WriteString(separator + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// BestTrace writes the trace of the last node on the best path.
func BestTrace(w io.Writer, tree *searcher.Tree) error {
	path := tree.BestPath()
	return Trace(w, tree, path[len(path)-1])
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
