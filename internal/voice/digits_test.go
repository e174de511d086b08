package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractDigits(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"digit words", "seven oh three", "703"},
		{"homophones", "won to tree for fife sicks", "123456"},
		{"niner and ate", "niner ate seven", "987"},
		{"numeric transcript", "703-338-0333", "7033380333"},
		{"mixed words and numerals", "7 0 3", "703"},
		{"comma separated", "seven, oh, three", "703"},
		{"numeric beats sparse words", "call 5551234 now", "5551234"},
		{"no digits", "hello there", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDigits(tt.input))
		})
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"703", "703"},
		{"703338", "703-338"},
		{"7033380333", "703-338-0333"},
		{"7", "7"},
		{"7033", "703-3"},
		{"70333803", "703-338-03"},
		{"70333803339999", "703-338-0333"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatPhoneNumber(tt.input), "input %q", tt.input)
	}
}

func TestSpeakablePhone(t *testing.T) {
	assert.Equal(t,
		"seven zero three. three three eight. zero three three three",
		SpeakablePhone("7033380333"))
	assert.Equal(t,
		"seven zero three. three three eight. zero three three three",
		SpeakablePhone("703-338-0333"))
	assert.Equal(t, "seven zero three", SpeakablePhone("703"))
	assert.Equal(t, "seven zero three three three", SpeakablePhone("70333"))
	assert.Equal(t, "", SpeakablePhone(""))
}
