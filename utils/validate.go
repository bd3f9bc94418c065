package utils

import (
	"strings"
	"unicode/utf8"

	apperrors "marketdash/pkg/errors"
)

// Valid history periods and their daily-lookback windows.
var PeriodLookbackDays = map[string]int{
	"1d": 1,
	"1w": 7,
	"3m": 90,
	"1y": 365,
}

const maxSymbolLen = 10

// ValidateSymbol sanitizes a user-supplied ticker before it is interpolated
// into outbound URLs or used as a cache key: reject overlong input, strip
// everything but alphanumerics, uppercase the rest.
func ValidateSymbol(raw string) (string, error) {
	if raw == "" {
		return "", apperrors.New(apperrors.ErrCodeValidation, "symbol is required")
	}
	if utf8.RuneCountInString(raw) > maxSymbolLen {
		return "", apperrors.New(apperrors.ErrCodeValidation, "symbol too long")
	}
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ToUpper(b.String())
	if cleaned == "" {
		return "", apperrors.New(apperrors.ErrCodeValidation, "invalid symbol")
	}
	return cleaned, nil
}

// ValidatePeriod checks a history period against the fixed enum.
func ValidatePeriod(period string) (string, error) {
	if period == "" {
		period = "1d"
	}
	if _, ok := PeriodLookbackDays[period]; !ok {
		return "", apperrors.New(apperrors.ErrCodeValidation, "period must be one of 1d, 1w, 3m, 1y")
	}
	return period, nil
}

// ValidateDaysBack bounds the market-insights lookback to 1..7 days.
func ValidateDaysBack(days int) error {
	if days < 1 || days > 7 {
		return apperrors.New(apperrors.ErrCodeValidation, "days_back must be between 1 and 7")
	}
	return nil
}
