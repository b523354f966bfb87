// Package fuzzy snaps free-form strings onto the closest members of a closed
// vocabulary pool using approximate string similarity. Snapping is best
// effort: a value with no close match passes through unchanged.
package fuzzy

// Ratio returns a similarity score in [0,1] for two strings, based on edit
// distance with substitutions counted as a delete plus an insert. Identical
// strings score 1.0, fully disjoint strings 0.0.
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0.0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + 2
			curr[j] = min(del, min(ins, sub))
		}
		prev, curr = curr, prev
	}

	dist := prev[lb]
	return 1.0 - float64(dist)/float64(la+lb)
}

// Closest returns the candidate with the highest Ratio against the target and
// its score. Ties keep the earliest candidate. Returns ("", 0) for an empty
// candidate list.
func Closest(target string, candidates []string) (string, float64) {
	best := ""
	bestScore := -1.0
	for _, c := range candidates {
		if score := Ratio(target, c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
