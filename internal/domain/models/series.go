package models

import (
	"errors"
	"time"
)

// ErrSeriesNotFound is returned when no data exists for a requested symbol.
var ErrSeriesNotFound = errors.New("series not found")

// Point is a single dated observation.
type Point struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Series is a named time-indexed sequence of observations, ascending by date.
// Dates are normalized to UTC midnight.
type Series struct {
	Symbol string  `json:"symbol"`
	Points []Point `json:"points"`
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Points) }

// Empty reports whether the series has no observations.
func (s Series) Empty() bool { return len(s.Points) == 0 }

// First returns the earliest observation date, zero if empty.
func (s Series) First() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[0].Date
}

// Last returns the latest observation date, zero if empty.
func (s Series) Last() time.Time {
	if len(s.Points) == 0 {
		return time.Time{}
	}
	return s.Points[len(s.Points)-1].Date
}

// Values returns the observation values in date order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}
