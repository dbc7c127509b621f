// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package signal

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat renders v with the shortest digits that round-trip. Integral
// values keep a ".0" suffix, magnitudes outside [1e-4, 1e16) use exponent
// notation ("1e-05", "1.5e+16"), and NaN renders as an empty cell.
func FormatFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}

	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// FormatFloats applies FormatFloat to each value.
func FormatFloats(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatFloat(v)
	}
	return out
}
