package util

// TruncateRunes cuts s to at most max runes, replacing the tail with suffix
// when it had to cut.
func TruncateRunes(s string, max int, suffix string) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	keep := max - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(r[:keep]) + suffix
}
