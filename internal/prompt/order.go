package prompt

import "sort"

// AdjustOrder reorders a user's tool selection to match the workflow's
// execution sequence. Ids absent from the sequence sink to the end, keeping
// their relative order, so an over-broad selection still produces a usable
// prompt ordering.
func AdjustOrder(ids []string, sequence []string) []string {
	pos := make(map[string]int, len(sequence))
	for i, id := range sequence {
		pos[id] = i
	}

	out := append([]string(nil), ids...)
	sort.SliceStable(out, func(i, j int) bool {
		pi, iKnown := pos[out[i]]
		pj, jKnown := pos[out[j]]
		if iKnown != jKnown {
			return iKnown
		}
		return iKnown && pi < pj
	})
	return out
}
