package namekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain name", "LeBron James", "lebron james"},
		{"accented", "Nikola Jokić", "nikola jokic"},
		{"accented luka", "Luka Dončić", "luka doncic"},
		{"initials with dots", "C.J. McCollum", "cj mccollum"},
		{"initials without dots", "CJ McCollum", "cj mccollum"},
		{"jr suffix", "Jaren Jackson Jr.", "jaren jackson"},
		{"jr suffix no dot", "Jaren Jackson Jr", "jaren jackson"},
		{"roman numeral suffix", "Trey Murphy III", "trey murphy"},
		{"iv suffix", "Lonnie Walker IV", "lonnie walker"},
		{"hyphenated", "Shai Gilgeous-Alexander", "shai gilgeousalexander"},
		{"apostrophe", "De'Aaron Fox", "deaaron fox"},
		{"extra whitespace", "  Stephen   Curry  ", "stephen curry"},
		{"mixed case", "JOSH GIDDEY", "josh giddey"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNormalize_InvalidInput(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n"} {
		_, err := Normalize(input)
		assert.ErrorIs(t, err, ErrInvalidName)
	}
}

func TestNormalize_SameKeyForVariants(t *testing.T) {
	a, err := Normalize("C.J. McCollum")
	require.NoError(t, err)
	b, err := Normalize("CJ McCollum")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLastInitialKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"LeBron James", "james l"},
		{"C.J. McCollum", "mccollum c"},
		{"Jaren Jackson Jr.", "jackson j"},
		{"Nene", "nene"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LastInitialKey(tt.input), "input=%q", tt.input)
	}
}
