package policy

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern   = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	apiKeyPattern = regexp.MustCompile(`\b(?:sk|AIza|pk)[-_A-Za-z0-9]{16,}\b`)
)

// MaxLogChars bounds how much conversation text ends up in a single log line.
const MaxLogChars = 240

// RedactPII masks common high-risk PII patterns.
func RedactPII(input string) (redacted string, changed bool) {
	out := input
	for _, r := range []struct {
		re   *regexp.Regexp
		mask string
	}{
		{emailPattern, "[REDACTED_EMAIL]"},
		{apiKeyPattern, "[REDACTED_KEY]"},
		// Cards before phones, otherwise card numbers match the phone pattern.
		{cardPattern, "[REDACTED_CARD]"},
		{phonePattern, "[REDACTED_PHONE]"},
	} {
		next := r.re.ReplaceAllString(out, r.mask)
		changed = changed || next != out
		out = next
	}
	return out, changed
}

// ForLog redacts text and clips it to MaxLogChars runes.
func ForLog(text string) string {
	out, _ := RedactPII(strings.TrimSpace(text))
	if utf8.RuneCountInString(out) <= MaxLogChars {
		return out
	}
	runes := []rune(out)
	return string(runes[:MaxLogChars]) + "…"
}
