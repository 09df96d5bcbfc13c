package catalog

// Joined is one row of a parent LEFT JOIN child query. Child is nil when the
// join found no child for the parent.
type Joined[P, C any] struct {
	Parent P
	Child  *C
}

// GroupJoined folds joined rows into parents. Parents keep the order in which
// their key first appears and children keep row order.
func GroupJoined[K comparable, P, C any](rows []Joined[P, C], key func(P) K, attach func(*P, C)) []P {
	out := make([]P, 0, 1)
	seen := make(map[K]int, 1)
	for _, r := range rows {
		k := key(r.Parent)
		i, ok := seen[k]
		if !ok {
			out = append(out, r.Parent)
			i = len(out) - 1
			seen[k] = i
		}
		if r.Child != nil {
			attach(&out[i], *r.Child)
		}
	}
	return out
}
