// Package reference holds the closed value sets stored alongside posts and
// tokens: source status, part-of-speech tags and tri-state review flags.
package reference

// MaxCodeLen returns the width of the longest code in codes, which is the
// column width needed to store any of them. It returns 0 for an empty set.
func MaxCodeLen[T ~string](codes []T) int {
	n := 0
	for _, c := range codes {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}
