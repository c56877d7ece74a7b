package tabular

import (
	"strconv"
	"strings"
	"time"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// Spreadsheet serial dates count days from 1899-12-30.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// ParseTime accepts ISO-like timestamps, day-first dates and spreadsheet
// serial numbers. Times without a zone are taken as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "nat") {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if days, err := strconv.ParseFloat(s, 64); err == nil && days > 0 && days < 2958466 {
		whole := int(days)
		frac := days - float64(whole)
		t := serialEpoch.AddDate(0, 0, whole).Add(time.Duration(frac * float64(24*time.Hour)).Round(time.Second))
		return t, true
	}
	return time.Time{}, false
}

// ParseTimeOr is ParseTime with a fallback for blank or unparseable input.
func ParseTimeOr(s string, fallback time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return fallback
}
