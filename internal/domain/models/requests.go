package models

import "strings"

// Requests for the dashboard HTTP endpoints. Defined in domain for consistency and reuse.

type CorrelationsRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	StartYear  int    `query:"start_year" json:"start_year" default:"2010" validate:"gte=1900,lte=2100"`
	Monthly    bool   `query:"monthly" json:"monthly"`
	ExcludeOTC bool   `query:"exclude_otc" json:"exclude_otc"`
	Types      string `query:"types" json:"types"`
	Source     string `query:"source" json:"source" default:"file" validate:"oneof=file clickhouse fredmd"`
	Num        int    `query:"num" json:"num" default:"20" validate:"gte=1,lte=100"`
	Reload     bool   `query:"reload" json:"reload"`
}

// Params converts the request into normalized FilterParams.
func (r *CorrelationsRequest) Params() FilterParams {
	p := FilterParams{
		StartYear:       r.StartYear,
		MonthlyResample: r.Monthly,
		ExcludeOTC:      r.ExcludeOTC,
		Source:          r.Source,
		NumShown:        r.Num,
	}
	if r.Types != "" {
		p.SecurityTypes = strings.Split(r.Types, ",")
	}
	return p.Normalize()
}

type SeriesRequest struct {
	StartYear int    `query:"start_year" json:"start_year" default:"2010" validate:"gte=1900,lte=2100"`
	Monthly   bool   `query:"monthly" json:"monthly"`
	Source    string `query:"source" json:"source" default:"file" validate:"oneof=file clickhouse fredmd"`
	Raw       bool   `query:"raw" json:"raw"`
}

type SymbolsRequest struct {
	Type   string `query:"type" json:"type" default:"stock" validate:"oneof=stock etf index fred"`
	Prefix string `query:"prefix" json:"prefix"`
	Limit  int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
