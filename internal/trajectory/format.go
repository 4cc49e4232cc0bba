// Package trajectory writes and reads the run outputs: the multi-frame XYZ
// trajectory and the whitespace RDF table.
package trajectory

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders f as the shortest string that round-trips, switching
// to exponent notation below 1e-4 and from 1e16 on. Fixed notation always
// carries a fractional part, so 10 prints as "10.0".
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err == nil && (exp < -4 || exp >= 16) {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
