package export

import (
	"sort"

	"github.com/axiomkit/axiom/internal/registry"
)

// Stats summarizes a registry snapshot.
type Stats struct {
	RuleCount       int      `json:"rule_count"`
	ConstraintCount int      `json:"constraint_count"`
	TagCount        int      `json:"tag_count"`
	Tags            []string `json:"tags,omitempty"`
}

// Collect computes summary statistics over a snapshot. Tags are the union
// of every declared consumed, emitted, and checked tag, sorted for stable
// output.
func Collect(snap registry.Snapshot) Stats {
	tagSet := make(map[string]struct{})
	for _, r := range snap.Rules {
		for _, tag := range r.Consumes {
			tagSet[tag] = struct{}{}
		}
		for _, tag := range r.Emits {
			tagSet[tag] = struct{}{}
		}
	}
	for _, c := range snap.Constraints {
		for _, tag := range c.Checks {
			tagSet[tag] = struct{}{}
		}
	}

	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return Stats{
		RuleCount:       len(snap.Rules),
		ConstraintCount: len(snap.Constraints),
		TagCount:        len(tags),
		Tags:            tags,
	}
}
