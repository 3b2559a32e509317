package timeseries

import (
	"math"

	"CorrScope/internal/domain/models"
)

// Align inner-joins two series on date, returning paired value slices.
// Both inputs must be ascending by date.
func Align(a, b models.Series) (xs, ys []float64) {
	i, j := 0, 0
	for i < len(a.Points) && j < len(b.Points) {
		da, db := a.Points[i].Date, b.Points[j].Date
		switch {
		case da.Before(db):
			i++
		case db.Before(da):
			j++
		default:
			xs = append(xs, a.Points[i].Value)
			ys = append(ys, b.Points[j].Value)
			i++
			j++
		}
	}
	return xs, ys
}

// Pearson computes the Pearson correlation coefficient of two equal-length
// samples. Returns (0, false) when fewer than two pairs or either sample has
// zero variance. The coefficient is clamped to [-1, 1] against float error.
func Pearson(xs, ys []float64) (float64, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, false
	}
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0, false
	}
	r := cov / math.Sqrt(varX*varY)
	if math.IsNaN(r) {
		return 0, false
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, true
}

// Correlate aligns two preprocessed series and returns their Pearson
// coefficient over the overlapping date range.
func Correlate(target, candidate models.Series) (float64, bool) {
	xs, ys := Align(target, candidate)
	return Pearson(xs, ys)
}

// OLSSlope fits a least-squares line over the series values against their
// index and returns the slope. Used to verify detrended output.
func OLSSlope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY float64
	for i, v := range values {
		sumX += float64(i)
		sumY += v
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)
	var num, den float64
	for i, v := range values {
		dx := float64(i) - meanX
		num += dx * (v - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0
	}
	return num / den
}
