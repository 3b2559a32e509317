package timeseries

import (
	"math"
	"testing"
	"time"

	"CorrScope/internal/domain/models"
)

func daily(symbol string, start time.Time, values ...float64) models.Series {
	pts := make([]models.Point, len(values))
	d := start
	for i, v := range values {
		pts[i] = models.Point{Date: d, Value: v}
		d = d.AddDate(0, 0, 1)
	}
	return models.Series{Symbol: symbol, Points: pts}
}

func TestDetrendRemovesLinearTrend(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 120)
	for i := range vals {
		vals[i] = 100 + 0.5*float64(i)
	}
	s := Detrend(daily("LIN", start, vals...))

	if s.Len() != 119 {
		t.Fatalf("expected 119 points, got %d", s.Len())
	}
	slope := OLSSlope(s.Values())
	if math.Abs(slope) > 1e-9 {
		t.Fatalf("expected zero slope after detrend, got %g", slope)
	}
}

func TestDetrendShortSeries(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := Detrend(daily("X", start, 1)); got.Len() != 0 {
		t.Fatalf("expected empty, got %d points", got.Len())
	}
}

func TestResampleMonthlyOnePointPerMonth(t *testing.T) {
	start := time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 200)
	for i := range vals {
		vals[i] = float64(i)
	}
	s := ResampleMonthly(daily("M", start, vals...))

	seen := map[string]int{}
	for _, p := range s.Points {
		seen[p.Date.Format("2006-01")]++
		if MonthEnd(p.Date) != p.Date {
			t.Fatalf("point %v not stamped at month end", p.Date)
		}
	}
	for month, n := range seen {
		if n != 1 {
			t.Fatalf("month %s has %d points", month, n)
		}
	}
	// 200 consecutive days from Jan 4 span Jan..Jul
	if len(seen) != 7 {
		t.Fatalf("expected 7 months, got %d", len(seen))
	}
	// last observation of January is Jan 31 with value 27
	if s.Points[0].Value != 27 {
		t.Fatalf("expected last-of-month value 27, got %v", s.Points[0].Value)
	}
}

func TestClampFromYear(t *testing.T) {
	start := time.Date(2019, 12, 28, 0, 0, 0, 0, time.UTC)
	s := ClampFromYear(daily("C", start, 1, 2, 3, 4, 5, 6, 7), 2020)
	if s.Len() != 3 {
		t.Fatalf("expected 3 points from 2020, got %d", s.Len())
	}
	if s.Points[0].Date.Year() != 2020 {
		t.Fatalf("first point %v before window", s.Points[0].Date)
	}
}

func TestMonthEnd(t *testing.T) {
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2020, 2, 10, 0, 0, 0, 0, time.UTC), time.Date(2020, 2, 29, 0, 0, 0, 0, time.UTC)},
		{time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2021, 2, 28, 0, 0, 0, 0, time.UTC)},
		{time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC), time.Date(2021, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		if got := MonthEnd(c.in); !got.Equal(c.want) {
			t.Errorf("MonthEnd(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestPreprocessOrder(t *testing.T) {
	start := time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 400)
	for i := range vals {
		vals[i] = float64(i) * float64(i) // curvature survives differencing
	}
	raw := daily("P", start, vals...)

	got := Preprocess(raw, models.FilterParams{StartYear: 2020, MonthlyResample: true})
	for _, p := range got.Points {
		if p.Date.Year() < 2020 {
			t.Fatalf("point %v leaked before start year", p.Date)
		}
		if MonthEnd(p.Date) != p.Date {
			t.Fatalf("point %v not at month end after resample", p.Date)
		}
	}
	if got.Len() == 0 {
		t.Fatal("expected non-empty preprocessed series")
	}
}
