package analysis

import "slices"

// tally counts occurrences of string keys and remembers the order in which keys were first seen.
type tally struct {
	order  []string
	counts map[string]int
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(key string) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key]++
}

type entry struct {
	key   string
	count int
}

// sorted returns the entries by descending count. Ties keep first-seen order.
func (t *tally) sorted() []entry {
	entries := make([]entry, 0, len(t.order))
	for _, k := range t.order {
		entries = append(entries, entry{key: k, count: t.counts[k]})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return b.count - a.count
	})
	return entries
}
