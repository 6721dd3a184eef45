// Package textutil holds small string helpers shared by the gateway and the
// answer engine.
package textutil

// Truncate keeps the first n characters (runes) of s. n <= 0 disables the cap.
func Truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
