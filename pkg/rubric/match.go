package rubric

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var typedFinalPattern = regexp.MustCompile(`(?i)final answer \(typed\):\s*(.+)`)

// ExtractTypedFinal returns the typed final answer embedded in free-text work
// notes, or "" when no marker line is present. Students opt into the
// deterministic shortcut by writing a line of the form
// "Final answer (typed): 42".
func ExtractTypedFinal(workText string) string {
	match := typedFinalPattern.FindStringSubmatch(workText)
	if match == nil {
		return ""
	}

	return strings.TrimSpace(match[1])
}

// MatchesTyped reports whether a typed answer deterministically satisfies the
// rubric, making a model call unnecessary. text_criteria rubrics never match
// deterministically. The function is pure; the caller owns the grade write.
func (r Rubric) MatchesTyped(typed string) bool {
	if typed == "" {
		return false
	}

	switch r.Type {
	case TypeNumeric:
		if r.Numeric == nil {
			return false
		}
		normalized := strings.TrimRight(stripSpace(typed), ",;")
		normalized = strings.TrimSuffix(normalized, ".")
		value, err := strconv.ParseFloat(normalized, 64)
		if err != nil || math.IsInf(value, 0) || math.IsNaN(value) {
			return false
		}
		return math.Abs(value-r.Numeric.Value) <= r.Numeric.Tolerance
	case TypeOneOf:
		want := strings.ToLower(strings.TrimSpace(typed))
		for _, candidate := range r.OneOf {
			if strings.ToLower(strings.TrimSpace(candidate)) == want {
				return true
			}
		}
	}

	return false
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
