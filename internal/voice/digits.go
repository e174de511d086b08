package voice

import (
	"strings"
)

// Spoken digit words, including the homophones speech recognition
// commonly produces ("won" for one, "tree" for three, "niner" for nine).
var wordToDigit = map[string]string{
	"zero": "0", "oh": "0", "o": "0",
	"one": "1", "won": "1",
	"two": "2", "to": "2", "too": "2",
	"three": "3", "tree": "3",
	"four": "4", "for": "4", "fore": "4",
	"five": "5", "fife": "5",
	"six": "6", "sicks": "6",
	"seven": "7",
	"eight": "8", "ate": "8",
	"nine": "9", "niner": "9",
	"0": "0", "1": "1", "2": "2", "3": "3", "4": "4",
	"5": "5", "6": "6", "7": "7", "8": "8", "9": "9",
}

func isDigitSeparator(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '.' || r == '-'
}

// ExtractDigits converts a spoken transcript into a digit string. Tokens
// are matched against the word map first; whichever pass (word mapping
// or stripping non-digit characters) yields more digits wins, so
// "seven oh three" and "703-3380" both come out right.
func ExtractDigits(text string) string {
	var fromWords strings.Builder
	for _, token := range strings.FieldsFunc(strings.ToLower(text), isDigitSeparator) {
		if d, ok := wordToDigit[token]; ok {
			fromWords.WriteString(d)
		}
	}

	var stripped strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			stripped.WriteRune(r)
		}
	}

	if fromWords.Len() >= stripped.Len() {
		return fromWords.String()
	}
	return stripped.String()
}

// FormatPhoneNumber renders a partial digit string progressively:
// "703" -> "703", "703338" -> "703-338", "7033380333" -> "703-338-0333".
// Input past ten digits is truncated.
func FormatPhoneNumber(digits string) string {
	if len(digits) > 10 {
		digits = digits[:10]
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 6:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:6] + "-" + digits[6:]
	}
}

var digitWords = [...]string{
	"zero", "one", "two", "three", "four",
	"five", "six", "seven", "eight", "nine",
}

// SpeakablePhone renders digits as spoken words for TTS readback. A
// full ten-digit number is grouped 3-3-4 with sentence pauses; anything
// else reads straight through.
func SpeakablePhone(digits string) string {
	var words []string
	for i := 0; i < len(digits); i++ {
		r := digits[i]
		if r < '0' || r > '9' {
			continue
		}
		words = append(words, digitWords[r-'0'])
	}

	if len(words) == 10 {
		return strings.Join(words[:3], " ") + ". " +
			strings.Join(words[3:6], " ") + ". " +
			strings.Join(words[6:], " ")
	}
	return strings.Join(words, " ")
}
