package models

import "strings"

// SecurityMeta describes one security from the metadata catalog. Fields that
// the upstream catalog reports as "Missing" or "nan" are stored empty and
// never match a filter.
type SecurityMeta struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Exchange string `json:"exchange,omitempty"`
	Market   string `json:"market,omitempty"`
	Sector   string `json:"sector,omitempty"`
	Industry string `json:"industry,omitempty"`
	Currency string `json:"currency,omitempty"`
	Family   string `json:"family,omitempty"`
}

// IsOTC reports whether the security trades over the counter. Unknown venue
// means not OTC.
func (m SecurityMeta) IsOTC() bool {
	return strings.Contains(strings.ToUpper(m.Market), "OTC") ||
		strings.Contains(strings.ToUpper(m.Exchange), "OTC")
}

// CleanMetaField maps catalog placeholder values to the empty string.
func CleanMetaField(v string) string {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "missing", "nan", "none", "n/a":
		return ""
	}
	return v
}
