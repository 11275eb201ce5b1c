package truecase

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Detruecaser capitalizes the first letter of every sentence start. It needs
// no model and is shared by all languages.
type Detruecaser struct{}

// NewDetruecaser returns a Detruecaser.
func NewDetruecaser() *Detruecaser { return &Detruecaser{} }

// Detruecase splits text on whitespace and returns the recased tokens.
func (d *Detruecaser) Detruecase(text string) []string {
	tokens := strings.Fields(text)
	out := make([]string, len(tokens))

	start := true
	for i, tok := range tokens {
		if start {
			tok = upperFirst(tok)
		}

		out[i] = tok
		start = nextSentenceStart(tok, start)
	}

	return out
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
