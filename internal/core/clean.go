package core

// clean.go provides cell-level cleanup and lenient numeric coercion for
// spreadsheet data. Real exports are messy: thousands separators in amount
// columns, float artifacts from numeric Excel cells ("2023.0"), stray
// quotes, and pandas-style NA spellings. All coercions here degrade to a
// sentinel instead of failing; fatal validation lives with the callers.

import (
	"math"
	"strconv"
	"strings"
)

// blankish values mean "no data" wherever a cell is semantically optional:
// the cancellation-date column, the legal-dong name, and the like.
// "NaN" is how the DataFrame layer renders a missing cell.
var blankish = map[string]bool{
	"":     true,
	"-":    true,
	"nan":  true,
	"None": true,
	"NaN":  true,
}

// IsBlank reports whether a cell value, after trimming, carries no data.
func IsBlank(s string) bool {
	return blankish[strings.TrimSpace(s)]
}

// CleanCell strips common spreadsheet artifacts from a cell value:
// surrounding whitespace, an Excel formula prefix (="value"), and
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

// ParseAmount parses a deal amount that may carry thousands separators
// ("1,234,567") into an integer number of 만원. ok is false when the value
// is missing or unparsable; callers record a warning and keep the row.
func ParseAmount(s string) (amount int, ok bool) {
	s = CleanCell(s)
	if IsBlank(s) {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseInt parses a plain integer cell ("2024", " 7 "), tolerating the
// float artifact numeric Excel cells leave behind ("2024.0").
func ParseInt(s string) (int, bool) {
	s = CleanCell(s)
	if dot := strings.IndexByte(s, '.'); dot > 0 && strings.Trim(s[dot+1:], "0") == "" {
		s = s[:dot]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseFloat parses a numeric cell, returning NaN when the value is missing
// or unparsable. NaN propagates through downstream arithmetic instead of
// aborting the table.
func ParseFloat(s string) float64 {
	s = strings.ReplaceAll(CleanCell(s), ",", "")
	if IsBlank(s) {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
