package feed

import (
	"strconv"
	"strings"
)

// Alpha Vantage numeric fields are strings and may be absent, "None" or "-".
// Parsing is defensive throughout: a bad field maps to zero or nil, never an
// error, so one odd field cannot fail a whole payload.

func parseFloat(s string) float64 {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	if s == "" || s == "None" || s == "-" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// optFloat parses an optional fundamentals field; unknown values map to nil
// so they marshal as JSON null rather than a misleading zero.
func optFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "None" || s == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func fieldOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
