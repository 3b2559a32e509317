package timeseries

import (
	"math"
	"testing"
	"time"

	"CorrScope/internal/domain/models"
)

func TestValidateAcceptsHealthySeries(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 60)
	for i := range vals {
		vals[i] = 100 + float64(i%7) + float64(i)*0.1
	}
	if reason := Validate(daily("OK", start, vals...)); reason != "" {
		t.Fatalf("expected valid, got %q", reason)
	}
}

func TestValidateEmpty(t *testing.T) {
	if reason := Validate(models.Series{Symbol: "E"}); reason != SkipEmpty {
		t.Fatalf("expected %q, got %q", SkipEmpty, reason)
	}
}

func TestValidateConstant(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 30)
	for i := range vals {
		vals[i] = 5
	}
	if reason := Validate(daily("C", start, vals...)); reason != SkipConstant {
		t.Fatalf("expected %q, got %q", SkipConstant, reason)
	}
}

func TestValidateRepeatRun(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	vals := make([]float64, 40)
	for i := range vals {
		vals[i] = float64(i)
	}
	for i := 20; i < 31; i++ {
		vals[i] = 7 // 11 consecutive repeats
	}
	if reason := Validate(daily("R", start, vals...)); reason != SkipRepeats {
		t.Fatalf("expected %q, got %q", SkipRepeats, reason)
	}
}

func TestValidateLongGap(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s := daily("G", start, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20)
	// splice in a half-year hole
	hole := s.Points[10].Date.AddDate(0, 6, 0)
	for i := 10; i < len(s.Points); i++ {
		s.Points[i].Date = hole.AddDate(0, 0, i-10)
	}
	if reason := Validate(s); reason != SkipGaps {
		t.Fatalf("expected %q, got %q", SkipGaps, reason)
	}
}

func TestValidateMonthlyCadenceAccepted(t *testing.T) {
	// monthly macro series must not be flagged as gapped
	pts := make([]models.Point, 36)
	first := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range pts {
		pts[i] = models.Point{Date: MonthEnd(first.AddDate(0, i, 0)), Value: float64(i) + math.Sin(float64(i))}
	}
	if reason := Validate(models.Series{Symbol: "MACRO", Points: pts}); reason != "" {
		t.Fatalf("expected monthly series to validate, got %q", reason)
	}
}

func TestDropNaN(t *testing.T) {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s := daily("N", start, 1, math.NaN(), 3, math.Inf(1), 5)
	out := DropNaN(s)
	if out.Len() != 3 {
		t.Fatalf("expected 3 points, got %d", out.Len())
	}
}
