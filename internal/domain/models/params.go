package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Security types accepted by the universe filter.
const (
	TypeStock = "stock"
	TypeETF   = "etf"
	TypeIndex = "index"
	TypeFred  = "fred"
)

// Series sources.
const (
	SourceFile       = "file"
	SourceClickHouse = "clickhouse"
	SourceFredMD     = "fredmd"
)

// FilterParams selects and shapes a correlation computation. Detrending is
// always applied and is therefore not a parameter.
type FilterParams struct {
	StartYear       int      `json:"start_year"`
	MonthlyResample bool     `json:"monthly_resample"`
	ExcludeOTC      bool     `json:"exclude_otc"`
	SecurityTypes   []string `json:"security_types"`
	Source          string   `json:"source"`
	NumShown        int      `json:"num_shown"`
}

// Normalize fills defaults and sorts the type filter so that equivalent
// parameter sets encode identically.
func (p FilterParams) Normalize() FilterParams {
	if p.StartYear == 0 {
		p.StartYear = 2010
	}
	if p.Source == "" {
		p.Source = SourceFile
	}
	if p.NumShown <= 0 {
		p.NumShown = 20
	}
	if p.NumShown > 100 {
		p.NumShown = 100
	}
	if len(p.SecurityTypes) == 0 {
		p.SecurityTypes = []string{TypeStock, TypeETF, TypeIndex}
	}
	types := append([]string(nil), p.SecurityTypes...)
	for i, t := range types {
		types[i] = strings.ToLower(strings.TrimSpace(t))
	}
	sort.Strings(types)
	p.SecurityTypes = types
	return p
}

// Encode returns the canonical string form of (symbol, params). Two requests
// with equivalent parameters always produce the same encoding.
func (p FilterParams) Encode(symbol string) string {
	p = p.Normalize()
	return fmt.Sprintf("%s|start=%d|monthly=%t|otc=%t|types=%s|src=%s|n=%d",
		strings.ToUpper(symbol), p.StartYear, p.MonthlyResample, p.ExcludeOTC,
		strings.Join(p.SecurityTypes, "+"), p.Source, p.NumShown)
}

// CacheKey returns the content address for (symbol, params).
func (p FilterParams) CacheKey(symbol string) string {
	sum := sha256.Sum256([]byte(p.Encode(symbol)))
	return hex.EncodeToString(sum[:])
}

// HasType reports whether the given security type passes the filter.
func (p FilterParams) HasType(t string) bool {
	for _, st := range p.SecurityTypes {
		if st == t {
			return true
		}
	}
	return false
}
