// Package prompt renders the text sent to the completion API.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ent0n29/interviewd/internal/memory"
)

const (
	userLabel  = "User"
	agentLabel = "Agent"
	factsLabel = "Long-term facts:"
)

// Compose renders persona, transcript and facts into one prompt. The persona always
// comes first and verbatim; an empty transcript or fact map contributes nothing.
func Compose(persona string, history memory.Transcript, facts memory.FactMap) string {
	var b strings.Builder
	b.WriteString(persona)

	for _, turn := range history {
		b.WriteByte('\n')
		b.WriteString(roleLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Text)
	}

	if len(facts) > 0 {
		b.WriteByte('\n')
		b.WriteString(factsLabel)
		b.WriteByte(' ')
		b.Write(encodeFacts(facts))
	}

	return b.String()
}

// WithQuestion appends the pending user question to a composed prompt.
func WithQuestion(composed, question string) string {
	return composed + "\n" + userLabel + ": " + question
}

const extractionTemplate = `Extract stable facts worth remembering about the conversation from the latest exchange below.
Return ONLY a JSON object mapping short snake_case keys to string values. Do not add prose or explanations.
Return {} if there is nothing worth keeping.

%s: %s
%s: %s`

// ExtractionPrompt renders the fixed fact-extraction instruction for one exchange.
func ExtractionPrompt(question, answer string) string {
	return fmt.Sprintf(extractionTemplate, userLabel, question, agentLabel, answer)
}

func roleLabel(r memory.Role) string {
	switch r {
	case memory.RoleUser:
		return userLabel
	case memory.RoleAgent:
		return agentLabel
	default:
		s := strings.TrimSpace(string(r))
		if s == "" {
			return "Unknown"
		}
		r, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToUpper(r)) + s[size:]
	}
}

// encodeFacts renders facts as compact JSON with sorted keys and without HTML
// escaping, so values reach the model as written.
func encodeFacts(facts memory.FactMap) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(facts)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
