package rubric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractTypedFinal(t *testing.T) {
	require.Equal(t, "42", ExtractTypedFinal("I tried factoring first.\nFinal answer (typed): 42"))
	require.Equal(t, "x = 3", ExtractTypedFinal("final ANSWER (typed):   x = 3  "))
	require.Equal(t, "", ExtractTypedFinal("I think the answer is 42"))
	require.Equal(t, "", ExtractTypedFinal(""))
}

func TestMatchesTypedNumeric(t *testing.T) {
	r := Rubric{Type: TypeNumeric, Numeric: &NumericSpec{Value: 12.5, Tolerance: 0.5}}

	require.True(t, r.MatchesTyped("12.5"))
	require.True(t, r.MatchesTyped("13.0"), "tolerance boundary is inclusive")
	require.True(t, r.MatchesTyped("12"))
	require.True(t, r.MatchesTyped(" 12 . 5 "), "whitespace inside the number is stripped")
	require.True(t, r.MatchesTyped("12.5."), "trailing sentence period is forgiven")
	require.True(t, r.MatchesTyped("12.5,"), "trailing punctuation is forgiven")
	require.False(t, r.MatchesTyped("13.01"))
	require.False(t, r.MatchesTyped("twelve and a half"))
	require.False(t, r.MatchesTyped(""))
}

func TestMatchesTypedNumericZeroTolerance(t *testing.T) {
	r := Rubric{Type: TypeNumeric, Numeric: &NumericSpec{Value: 7}}

	require.True(t, r.MatchesTyped("7"))
	require.False(t, r.MatchesTyped("7.0001"))
}

func TestMatchesTypedOneOf(t *testing.T) {
	r := Rubric{Type: TypeOneOf, OneOf: []string{"Triangle ", "SQUARE"}}

	require.True(t, r.MatchesTyped("triangle"))
	require.True(t, r.MatchesTyped("  Square  "))
	require.False(t, r.MatchesTyped("circle"))
	require.False(t, r.MatchesTyped(""))
}

func TestMatchesTypedTextNeverShortcuts(t *testing.T) {
	r := Rubric{Type: TypeText, Instructions: "explain the reasoning"}

	require.False(t, r.MatchesTyped("a perfectly reasonable answer"))
}

func TestMatchesTypedRejectsNonFinite(t *testing.T) {
	r := Rubric{Type: TypeNumeric, Numeric: &NumericSpec{Value: 1, Tolerance: 1e308}}

	require.False(t, r.MatchesTyped("Inf"))
	require.False(t, r.MatchesTyped("NaN"))
}
