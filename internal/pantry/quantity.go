package pantry

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseQuantity reads a per-person amount as typed in a spreadsheet: a decimal
// comma is accepted and surrounding blanks are ignored. Empty input is reported
// as missing, not as zero. NaN, infinities and negative amounts are rejected.
func ParseQuantity(raw string) (*float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !usableAmount(v) {
		return nil, fmt.Errorf("invalid quantity %q", raw)
	}
	return &v, nil
}

func usableAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
