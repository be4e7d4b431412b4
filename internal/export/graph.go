package export

import (
	"fmt"
	"strings"

	"github.com/axiomkit/axiom/internal/registry"
)

// DOT renders the snapshot's tag flow as a Graphviz digraph.
// Node and edge order follows registry insertion order so repeated exports
// of the same registry are byte-identical.
func DOT(snap registry.Snapshot) string {
	var b strings.Builder
	b.WriteString("digraph rules {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")

	seenTags := make(map[string]bool)
	declareTag := func(tag string) {
		if seenTags[tag] {
			return
		}
		seenTags[tag] = true
		fmt.Fprintf(&b, "  %s [label=%q, shape=ellipse];\n", dotID("tag", tag), tag)
	}

	for _, r := range snap.Rules {
		fmt.Fprintf(&b, "  %s [label=%q, shape=box];\n", dotID("rule", r.ID), r.ID)
		for _, tag := range r.Consumes {
			declareTag(tag)
		}
		for _, tag := range r.Emits {
			declareTag(tag)
		}
	}
	for _, c := range snap.Constraints {
		fmt.Fprintf(&b, "  %s [label=%q, shape=hexagon];\n", dotID("constraint", c.ID), c.ID)
		for _, tag := range c.Checks {
			declareTag(tag)
		}
	}

	for _, r := range snap.Rules {
		for _, tag := range r.Consumes {
			fmt.Fprintf(&b, "  %s -> %s;\n", dotID("tag", tag), dotID("rule", r.ID))
		}
		for _, tag := range r.Emits {
			fmt.Fprintf(&b, "  %s -> %s;\n", dotID("rule", r.ID), dotID("tag", tag))
		}
	}
	for _, c := range snap.Constraints {
		for _, tag := range c.Checks {
			fmt.Fprintf(&b, "  %s -> %s [style=dashed];\n", dotID("tag", tag), dotID("constraint", c.ID))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// Mermaid renders the snapshot's tag flow as a Mermaid flowchart.
func Mermaid(snap registry.Snapshot) string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	seenTags := make(map[string]bool)
	declareTag := func(tag string) {
		if seenTags[tag] {
			return
		}
		seenTags[tag] = true
		fmt.Fprintf(&b, "  %s([%q])\n", mermaidID("tag", tag), tag)
	}

	for _, r := range snap.Rules {
		fmt.Fprintf(&b, "  %s[%q]\n", mermaidID("rule", r.ID), r.ID)
		for _, tag := range r.Consumes {
			declareTag(tag)
		}
		for _, tag := range r.Emits {
			declareTag(tag)
		}
	}
	for _, c := range snap.Constraints {
		fmt.Fprintf(&b, "  %s{{%q}}\n", mermaidID("constraint", c.ID), c.ID)
		for _, tag := range c.Checks {
			declareTag(tag)
		}
	}

	for _, r := range snap.Rules {
		for _, tag := range r.Consumes {
			fmt.Fprintf(&b, "  %s --> %s\n", mermaidID("tag", tag), mermaidID("rule", r.ID))
		}
		for _, tag := range r.Emits {
			fmt.Fprintf(&b, "  %s --> %s\n", mermaidID("rule", r.ID), mermaidID("tag", tag))
		}
	}
	for _, c := range snap.Constraints {
		for _, tag := range c.Checks {
			fmt.Fprintf(&b, "  %s -.-> %s\n", mermaidID("tag", tag), mermaidID("constraint", c.ID))
		}
	}

	return b.String()
}

// dotID builds a DOT-safe node identifier from a kind prefix and a name.
// Non-alphanumeric characters fold to underscores; the label keeps the
// original text.
func dotID(kind, name string) string {
	return kind + "_" + sanitize(name)
}

func mermaidID(kind, name string) string {
	return kind + "_" + sanitize(name)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
