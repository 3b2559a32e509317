package models

import "time"

// CorrelationEntry is one candidate's coefficient against the target.
type CorrelationEntry struct {
	Symbol string  `json:"symbol"`
	Name   string  `json:"name,omitempty"`
	Type   string  `json:"type,omitempty"`
	Corr   float64 `json:"corr"`
}

// CorrelationResult is the ranked correlation set for one target series under
// one FilterParams. Immutable once persisted; an explicit reload replaces the
// whole entry.
type CorrelationResult struct {
	Symbol     string             `json:"symbol"`
	Params     FilterParams       `json:"params"`
	Entries    []CorrelationEntry `json:"entries"`
	Candidates int                `json:"candidates"`
	Skipped    int                `json:"skipped"`
	ComputedAt time.Time          `json:"computed_at"`
}

// TopPositive returns the n most positively correlated entries.
func (r *CorrelationResult) TopPositive(n int) []CorrelationEntry {
	out := make([]CorrelationEntry, 0, n)
	for _, e := range r.Entries {
		if e.Corr > 0 {
			out = append(out, e)
			if len(out) == n {
				break
			}
		}
	}
	return out
}

// TopNegative returns the n most negatively correlated entries.
func (r *CorrelationResult) TopNegative(n int) []CorrelationEntry {
	out := make([]CorrelationEntry, 0, n)
	for _, e := range r.Entries {
		if e.Corr < 0 {
			out = append(out, e)
			if len(out) == n {
				break
			}
		}
	}
	return out
}
