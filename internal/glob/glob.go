// Package glob implements the single-wildcard pattern matching used by KEYS
// and pub/sub pattern subscriptions (§4.E, §4.G, §9 Design Notes). Only '*'
// is a metacharacter; everything else, including '?' and '[...]', is
// matched literally. Matching is anchored at both ends.
package glob

// Match reports whether s matches pattern, where '*' in pattern matches any
// run of zero or more bytes (including none) and every other byte must
// match literally.
func Match(pattern, s string) bool {
	return match(pattern, s)
}

func match(pattern, s string) bool {
	// Classic two-pointer wildcard match with backtracking, restricted to
	// '*' as the only metacharacter.
	var pi, si int
	starIdx, matchIdx := -1, 0

	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == s[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			starIdx = pi
			matchIdx = si
			pi++
		case starIdx != -1:
			pi = starIdx + 1
			matchIdx++
			si = matchIdx
		default:
			return false
		}
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
