package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseFloat coerces a CSV cell to float64. Blank cells, FRED's "." placeholder,
// NaN/Inf and anything unparseable (including thousands separators) report ok=false.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
