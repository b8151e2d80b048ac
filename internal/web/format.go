package web

import (
	"math"
	"strconv"
)

func formatWeight(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatInt(n int) string { return strconv.Itoa(n) }
