package match

// Jaccard returns the set-overlap similarity of two tag lists:
// |A∩B| / max(1, |A∪B|). Two empty inputs score 0.0, treating "no
// information" as no similarity rather than perfect similarity.
func Jaccard(a, b []string) float64 {
	sa := toSet(a)
	sb := toSet(b)
	if len(sa) == 0 && len(sb) == 0 {
		return 0.0
	}

	inter := 0
	union := len(sb)
	for t := range sa {
		if _, ok := sb[t]; ok {
			inter++
		} else {
			union++
		}
	}

	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
