package benchmark

import "strings"

// MatchFilter reports whether name is selected by pattern. An empty
// pattern selects everything. A pattern without '*' or '?' matches as a
// substring; otherwise the whole name must match the glob, where '*' is
// any run of bytes and '?' exactly one.
func MatchFilter(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	if !strings.ContainsAny(pattern, "*?") {
		return strings.Contains(name, pattern)
	}
	return glob(name, pattern)
}

// glob matches with single-star backtracking, linear in practice.
func glob(name, pattern string) bool {
	n, p := 0, 0
	star, mark := -1, 0
	for n < len(name) {
		switch {
		case p < len(pattern) && (pattern[p] == '?' || pattern[p] == name[n]):
			n++
			p++
		case p < len(pattern) && pattern[p] == '*':
			star = p
			mark = n
			p++
		case star >= 0:
			p = star + 1
			mark++
			n = mark
		default:
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// MatchTags reports whether have carries any of want. No wanted tags
// selects everything.
func MatchTags(have, want []string) bool {
	if len(want) == 0 {
		return true
	}
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
