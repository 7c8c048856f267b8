package aggregate

import "sort"

// Group is one bucket of a grouped breakdown.
type Group struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Share float64 `json:"share"` // percent of the grouping total before truncation
}

// tally counts keys while remembering first-encountered order.
type tally struct {
	index  map[string]int
	groups []Group
	total  int
}

func newTally() *tally {
	return &tally{index: make(map[string]int)}
}

func (t *tally) add(key string, n int) {
	i, ok := t.index[key]
	if !ok {
		i = len(t.groups)
		t.index[key] = i
		t.groups = append(t.groups, Group{Key: key})
	}
	t.groups[i].Count += n
	t.total += n
}

// top sorts by count descending, keeping first-encountered order among
// ties, then truncates to n.
func (t *tally) top(n TopN) []Group {
	out := make([]Group, len(t.groups))
	copy(out, t.groups)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	for i := range out {
		out[i].Share = percent(out[i].Count, t.total)
	}
	return out[:n.limit(len(out))]
}

// percent returns part/whole*100 clamped to [0, 100]; 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	v := float64(part) / float64(whole) * 100
	if v > 100 {
		return 100
	}
	return v
}
