package chat

import "strings"

// Cleaner scrubs fixed phrases from generated answers and normalizes whitespace.
// The phrase list is a content-specific filter, not a general moderation layer.
type Cleaner struct {
	phrases []string
}

func NewCleaner(phrases []string) *Cleaner {
	var kept []string
	for _, p := range phrases {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return &Cleaner{phrases: kept}
}

// Clean removes every occurrence of each phrase (case-sensitive), collapses
// whitespace runs to a single space and trims the ends. Removal can join two
// fragments into a new occurrence, so the pass repeats until nothing changes;
// this keeps Clean idempotent.
func (c *Cleaner) Clean(answer string) string {
	out := answer
	for {
		next := out
		for _, p := range c.phrases {
			next = strings.ReplaceAll(next, p, "")
		}
		next = collapse(next)
		if next == out {
			return out
		}
		out = next
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
