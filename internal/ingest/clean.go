// Package ingest parses Charles Schwab portfolio CSV exports into positions.
package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"portfolio-sentinel/internal/models"
)

// stripExcelEscape removes Schwab's Excel-escaped wrapping from a field.
// Exports wrap currency cells as ="$1,234.56" (doubled quotes inside the
// quoted CSV field) so Excel keeps them as text.
func stripExcelEscape(s string) string {
	s = strings.ReplaceAll(s, `=""`, "")
	s = strings.ReplaceAll(s, `""`, "")
	s = strings.ReplaceAll(s, `="`, "")
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "=", "")
	return strings.TrimSpace(s)
}

// isEmptyValue reports whether a cleaned field carries no usable value.
func isEmptyValue(s string) bool {
	switch s {
	case "", "--", "N/A":
		return true
	}
	return false
}

// CleanCurrency parses a currency string to a float, handling Schwab's
// Excel escaping. Empty and placeholder values parse as zero.
func CleanCurrency(val string) float64 {
	s := stripExcelEscape(val)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	if isEmptyValue(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// CleanPercent parses a percentage string to a signed percent value
// (-12.5 for "-12.5%"). Empty and placeholder values parse as zero.
func CleanPercent(val string) float64 {
	s := stripExcelEscape(val)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	if isEmptyValue(s) {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// CleanNumber parses a plain numeric field such as quantity.
func CleanNumber(val string) (float64, error) {
	s := stripExcelEscape(val)
	s = strings.ReplaceAll(s, ",", "")
	if isEmptyValue(s) {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(s, 64)
}

// CleanDelta parses a delta field, preserving sign. The second return is
// false when the field carries no usable value (N/A, --, empty).
func CleanDelta(val string) (float64, bool) {
	s := stripExcelEscape(val)
	if isEmptyValue(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// OptionSymbol holds the components of a Schwab option symbol.
type OptionSymbol struct {
	Underlying string
	Expiration time.Time
	Strike     float64
	Type       models.OptionType
}

// ParseOptionSymbol parses a Schwab option symbol into its components.
//
// Example: "NVDA 01/23/2026 200.00 C"
func ParseOptionSymbol(sym string) (OptionSymbol, error) {
	parts := strings.Fields(strings.TrimSpace(sym))
	if len(parts) != 4 {
		return OptionSymbol{}, fmt.Errorf("option symbol %q: want 4 fields, got %d", sym, len(parts))
	}

	exp, err := time.Parse("01/02/2006", parts[1])
	if err != nil {
		return OptionSymbol{}, fmt.Errorf("option symbol %q: bad expiration: %w", sym, err)
	}

	strike, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return OptionSymbol{}, fmt.Errorf("option symbol %q: bad strike: %w", sym, err)
	}

	var optType models.OptionType
	switch strings.ToUpper(parts[3]) {
	case "C", "CALL":
		optType = models.OptionCall
	case "P", "PUT":
		optType = models.OptionPut
	default:
		return OptionSymbol{}, fmt.Errorf("option symbol %q: bad type %q", sym, parts[3])
	}

	return OptionSymbol{
		Underlying: strings.ToUpper(parts[0]),
		Expiration: exp,
		Strike:     strike,
		Type:       optType,
	}, nil
}
