package importer

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var errEmptyAmount = errors.New("empty amount")

var currencyMarkers = strings.NewReplacer("NT$", "", "$", "", "€", "", "EUR", "", "NTD", "", "TWD", "", " ", "", "\u00a0", "")

// parseAmount accepts plain ("1,234.56"), European ("1.234,56") and
// accounting ("(120)") notations, optionally with a currency marker.
// decimalComma marks a statement that writes decimals with a comma, in
// which case "1.234" is one thousand two hundred thirty-four.
func parseAmount(s string, decimalComma bool) (decimal.Decimal, error) {
	s = currencyMarkers.Replace(strings.TrimSpace(s))

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	if s == "" {
		return decimal.Zero, errEmptyAmount
	}

	d, err := decimal.NewFromString(normaliseSeparators(s, decimalComma))
	if err != nil {
		return decimal.Zero, err
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}

// normaliseSeparators rewrites s so that "." is the only decimal separator
// and thousands separators are gone.
func normaliseSeparators(s string, decimalComma bool) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			// 1.234,56
			return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
		// 1,234.56
		return strings.ReplaceAll(s, ",", "")

	case lastComma >= 0:
		// a single comma followed by one or two digits is a decimal comma
		if strings.Count(s, ",") == 1 && (decimalComma || len(s)-lastComma-1 <= 2) {
			return strings.Replace(s, ",", ".", 1)
		}

		return strings.ReplaceAll(s, ",", "")

	case lastDot >= 0:
		// 1.234.567, or 1.234 in a decimal-comma statement
		if decimalComma || strings.Count(s, ".") > 1 {
			return strings.ReplaceAll(s, ".", "")
		}
	}

	return s
}

// usesDecimalComma reports whether any cell ends in a comma followed by
// one or two digits, like "10,5" or "1.234,56".
func usesDecimalComma(cells []string) bool {
	for _, cell := range cells {
		s := strings.TrimSuffix(currencyMarkers.Replace(strings.TrimSpace(cell)), ")")

		lastComma := strings.LastIndex(s, ",")
		if lastComma < 0 || strings.LastIndex(s, ".") > lastComma {
			continue
		}

		frac := s[lastComma+1:]
		if len(frac) == 0 || len(frac) > 2 {
			continue
		}

		if strings.Trim(frac, "0123456789") == "" {
			return true
		}
	}

	return false
}
