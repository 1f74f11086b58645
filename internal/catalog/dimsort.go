// internal/catalog/dimsort.go
package catalog

import (
	"sort"
	"strconv"
	"strings"
)

// Fraction glyphs that show up in imperial thickness labels ("1½", "⅜").
var fractionGlyphs = map[rune]float64{
	'¼': 0.25,
	'½': 0.5,
	'¾': 0.75,
	'⅛': 0.125,
	'⅜': 0.375,
	'⅝': 0.625,
	'⅞': 0.875,
}

// DimensionKey reduces a dimension label to a single orderable numeric key.
// It understands plain numeric prefixes ("2mm" -> 2), fraction glyphs
// ("1½" -> 1.5), simple n/d fractions ("3/8" -> 0.375, "1 1/2" -> 1.5) and
// WxH pairs compared width-major ("20x50" -> 20050). The second return is
// false when no numeric component could be parsed.
func DimensionKey(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if w, h, ok := parseDimensionPair(s); ok {
		return w*1000 + h, true
	}

	return parseMeasure(s)
}

// parseDimensionPair handles "WxH" labels, comparing primarily by width.
func parseDimensionPair(s string) (w, h float64, ok bool) {
	for _, sep := range []string{"x", "X", "×"} {
		parts := strings.SplitN(s, sep, 2)
		if len(parts) != 2 {
			continue
		}
		w, wok := parseMeasure(strings.TrimSpace(parts[0]))
		h, hok := parseMeasure(strings.TrimSpace(parts[1]))
		if wok && hok {
			return w, h, true
		}
	}
	return 0, 0, false
}

// parseMeasure parses a numeric prefix plus an optional fractional tail.
func parseMeasure(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Leading fraction glyph with no integer part ("½").
	if v, ok := fractionGlyphs[[]rune(s)[0]]; ok {
		return v, true
	}

	// Scan the longest numeric prefix.
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.' || s[end] == ',') {
		end++
	}
	if end == 0 {
		return 0, false
	}

	intPart, err := strconv.ParseFloat(strings.ReplaceAll(s[:end], ",", "."), 64)
	if err != nil {
		return 0, false
	}

	rest := strings.TrimSpace(s[end:])
	if rest == "" {
		return intPart, true
	}

	// "n/d" fraction: the scanned prefix was the numerator.
	if strings.HasPrefix(rest, "/") {
		if den, err := strconv.ParseFloat(strings.TrimFunc(rest[1:], isNonNumeric), 64); err == nil && den > 0 {
			return intPart / den, true
		}
		return intPart, true
	}

	// Trailing fraction glyph ("1½") or a spaced fraction ("1 1/2").
	if v, ok := fractionGlyphs[[]rune(rest)[0]]; ok {
		return intPart + v, true
	}
	if frac, ok := parseSimpleFraction(rest); ok {
		return intPart + frac, true
	}

	// Remainder is a unit suffix ("mm", "kg/m"); the prefix is the key.
	return intPart, true
}

func parseSimpleFraction(s string) (float64, bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	den, err2 := strconv.ParseFloat(strings.TrimFunc(parts[1], isNonNumeric), 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}

func isNonNumeric(r rune) bool {
	return (r < '0' || r > '9') && r != '.'
}

// SortDimensionValues orders dimension labels for display: parseable keys
// ascending, unparseable strings last in encounter order.
func SortDimensionValues(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		ki, iok := DimensionKey(values[i])
		kj, jok := DimensionKey(values[j])
		if iok && jok {
			return ki < kj
		}
		return iok && !jok
	})
}
