package timeseries

import (
	"time"

	"CorrScope/internal/domain/models"
)

// ClampFromYear drops observations before Jan 1 of the given year. The window
// start is the later of that date and the first observation.
func ClampFromYear(s models.Series, year int) models.Series {
	if year <= 0 || s.Empty() {
		return s
	}
	cut := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	for i < len(s.Points) && s.Points[i].Date.Before(cut) {
		i++
	}
	return models.Series{Symbol: s.Symbol, Points: s.Points[i:]}
}

// Detrend removes the long-term trend by first differencing:
// r_t = v_t - v_{t-1}, stamped at t. Output has length n-1.
// A perfectly linear input detrends to a constant, so the result carries no
// linear trend component.
func Detrend(s models.Series) models.Series {
	if s.Len() < 2 {
		return models.Series{Symbol: s.Symbol}
	}
	out := make([]models.Point, 0, s.Len()-1)
	for i := 1; i < len(s.Points); i++ {
		out = append(out, models.Point{
			Date:  s.Points[i].Date,
			Value: s.Points[i].Value - s.Points[i-1].Value,
		})
	}
	return models.Series{Symbol: s.Symbol, Points: out}
}

// ResampleMonthly keeps the last observation of each calendar month, stamped
// at month end. The output has exactly one point per calendar month present
// in the input.
func ResampleMonthly(s models.Series) models.Series {
	if s.Empty() {
		return s
	}
	out := make([]models.Point, 0, s.Len()/20+1)
	for i, p := range s.Points {
		last := i == len(s.Points)-1
		if !last {
			next := s.Points[i+1].Date
			if next.Year() == p.Date.Year() && next.Month() == p.Date.Month() {
				continue
			}
		}
		out = append(out, models.Point{Date: MonthEnd(p.Date), Value: p.Value})
	}
	return models.Series{Symbol: s.Symbol, Points: out}
}

// MonthEnd returns the last day of t's calendar month at UTC midnight.
func MonthEnd(t time.Time) time.Time {
	firstOfNext := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return firstOfNext.AddDate(0, 0, -1)
}

// Preprocess applies the standard pipeline: clamp to the start-year window,
// optionally resample to month end, then detrend. Target and candidates must
// go through identical treatment before correlating.
func Preprocess(s models.Series, params models.FilterParams) models.Series {
	s = ClampFromYear(s, params.StartYear)
	if params.MonthlyResample {
		s = ResampleMonthly(s)
	}
	return Detrend(s)
}
