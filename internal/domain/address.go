package domain

import "strings"

// Address is the structured delivery address embedded in an order. Keeping
// it structured instead of a free-form string avoids parse failures when
// the routing adapter needs a formatted destination.
type Address struct {
	Line1      string `json:"address1"`
	Line2      string `json:"address2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"province,omitempty"`
	PostalCode string `json:"zip,omitempty"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Formatted renders the address as a single routing-service friendly line.
func (a *Address) Formatted() string {
	if a == nil {
		return "-"
	}
	parts := make([]string, 0, 6)
	for _, p := range []string{a.Line1, a.Line2, a.City, a.Region, a.PostalCode, a.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

// FormatPhone normalizes NZ mobile numbers to local 0-prefixed form.
// Unrecognized numbers are returned as-is.
func FormatPhone(phone string) string {
	if phone == "" {
		return "-"
	}
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case strings.HasPrefix(d, "6421"):
		return "0" + d[2:]
	case strings.HasPrefix(d, "21"):
		return "0" + d
	}
	return phone
}
