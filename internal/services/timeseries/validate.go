package timeseries

import (
	"math"
	"sort"

	"CorrScope/internal/domain/models"
)

// maxRunLength bounds both consecutive calendar gaps and consecutive repeated
// values before a candidate series is rejected.
const maxRunLength = 10

// Validation outcomes reported as skip reasons.
const (
	SkipEmpty     = "empty"
	SkipConstant  = "constant"
	SkipGaps      = "gaps"
	SkipRepeats   = "repeats"
	SkipShort     = "short"
	SkipNoOverlap = "no_overlap"
	SkipNotFound  = "not_found"
)

// Validate checks a raw series against the quality heuristics. Returns an
// empty string when the series is usable, otherwise the skip reason.
func Validate(s models.Series) string {
	if s.Empty() {
		return SkipEmpty
	}
	if s.Len() < 2 {
		return SkipShort
	}
	if isConstant(s) {
		return SkipConstant
	}
	if hasLongGap(s) {
		return SkipGaps
	}
	if hasRepeatRun(s) {
		return SkipRepeats
	}
	return ""
}

func isConstant(s models.Series) bool {
	first := s.Points[0].Value
	for _, p := range s.Points[1:] {
		if p.Value != first {
			return false
		}
	}
	return true
}

// hasLongGap reports whether any two adjacent observations are separated by
// more than maxRunLength times the series' typical spacing. Spacing is the
// median day gap, so daily files (weekend holes) and monthly macro series are
// both judged on their own cadence.
func hasLongGap(s models.Series) bool {
	gaps := make([]float64, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		gaps = append(gaps, s.Points[i].Date.Sub(s.Points[i-1].Date).Hours()/24)
	}
	typical := median(gaps)
	if typical <= 0 {
		return false
	}
	limit := typical * maxRunLength
	for _, g := range gaps {
		if g > limit {
			return true
		}
	}
	return false
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 0 {
		return (s[mid-1] + s[mid]) / 2
	}
	return s[mid]
}

func hasRepeatRun(s models.Series) bool {
	run := 1
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Value == s.Points[i-1].Value {
			run++
			if run >= maxRunLength {
				return true
			}
		} else {
			run = 1
		}
	}
	return false
}

// DropNaN removes observations whose value is NaN or infinite.
func DropNaN(s models.Series) models.Series {
	out := s.Points[:0:0]
	for _, p := range s.Points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		out = append(out, p)
	}
	return models.Series{Symbol: s.Symbol, Points: out}
}
