package report

import (
	"math"
	"strconv"
	"strings"
)

// FormatPct renders a win percentage the way box scores do: ".600", "1.000".
func FormatPct(p float64) string {
	s := strconv.FormatFloat(Round(p, 3), 'f', 3, 64)
	return strings.TrimPrefix(s, "0")
}

// FormatGB renders games behind to one decimal, "-" for the leader.
func FormatGB(gb float64, leader bool) string {
	if leader {
		return "-"
	}
	return strconv.FormatFloat(Round(gb, 1), 'f', 1, 64)
}

// Round rounds half away from zero to the given number of places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
