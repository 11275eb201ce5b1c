package moses

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DetokenizeOptions are the per-call switches of Detokenizer.Detokenize.
type DetokenizeOptions struct {
	// Unescape reverts XML escaping before the tokens are joined.
	Unescape bool
}

var (
	hyphenSplit = newRule(` @-@ `, "-")

	rightShiftToken = regexp.MustCompile(`^[` + isSc + `\(\[\{¿¡]+$`)
	leftShiftToken  = regexp.MustCompile(`^[,\.\?!:;\\%\}\]\)]+$`)
	frenchSpaced    = regexp.MustCompile(`^[\?!:;\\%]$`)
	englishClitic   = regexp.MustCompile(`^'[` + isAlpha + `]`)
	elidedArticle   = regexp.MustCompile(`[` + isAlpha + `]'$`)
	alphaStart      = regexp.MustCompile(`^[` + isAlpha + `]`)
	quoteToken      = regexp.MustCompile("^['\"„“`]+$")
	doubleQuotes    = regexp.MustCompile(`^[„“”]+$`)
	digitsOnly      = regexp.MustCompile(`^[0-9]+$`)
	decimalMark     = regexp.MustCompile(`^[.,]$`)
	czechDash       = regexp.MustCompile(`^[-–]$`)
	czechDashed     = regexp.MustCompile(`(?i)^li$|^mail.*`)
	finnishSuffix   = regexp.MustCompile(`^([` + isAlpha + `]{1,2}|ssa|ssä|sta|stä|lla|llä|lta|ltä|lle|ksi|kse|tta|ttä|ine|ni|si|han|hän|hyn|hön|seen|siin|an|än|en|in|on|un|yn|ön)(ni|si|mme|nne|nsa|nsä)?(ko|kö|han|hän|pa|pä|kaan|kään|kin)?$`)
)

// Detokenizer joins Moses-style tokens back into running text for one
// language.
type Detokenizer struct {
	lang string
}

// NewDetokenizer returns the detokenizer for lang.
func NewDetokenizer(lang string) *Detokenizer {
	return &Detokenizer{lang: lang}
}

// Lang returns the language code the detokenizer was built for.
func (d *Detokenizer) Lang() string { return d.lang }

// Detokenize joins tokens using the rules of the detokenizer's language.
func (d *Detokenizer) Detokenize(tokens []string, opts DetokenizeOptions) string {
	return DetokenizeAs(tokens, d.lang, opts)
}

// DetokenizeAs joins tokens using the rules of lang. Catalan has no rule set
// of its own: the tokens are detokenized as French, split again on spaces and
// detokenized as Spanish. Escapes are reverted by the first pass only.
func DetokenizeAs(tokens []string, lang string, opts DetokenizeOptions) string {
	if lang == "ca" {
		text := detokenize(tokens, "fr", opts.Unescape)
		return detokenize(strings.Split(text, " "), "es", false)
	}
	return detokenize(tokens, lang, opts.Unescape)
}

func detokenize(tokens []string, lang string, unescape bool) string {
	text := " " + strings.Join(tokens, " ") + " "
	text = hyphenSplit.re.ReplaceAllString(text, hyphenSplit.repl)
	if unescape {
		text = UnescapeXML(text)
	}

	words := strings.Fields(text)
	quoteCounts := make(map[string]int)
	prependSpace := " "

	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(words); i++ {
		tok := words[i]

		switch {
		case isCJKStart(tok) && lang != "ko":
			if i > 0 && isCJKEnd(words[i-1]) {
				b.WriteString(tok)
			} else {
				b.WriteString(prependSpace + tok)
			}
			prependSpace = " "

		case rightShiftToken.MatchString(tok):
			b.WriteString(prependSpace + tok)
			prependSpace = ""

		case leftShiftToken.MatchString(tok):
			if lang == "fr" && frenchSpaced.MatchString(tok) {
				b.WriteString(" ")
			}
			b.WriteString(tok)
			prependSpace = " "

		case lang == "en" && i > 0 && englishClitic.MatchString(tok):
			b.WriteString(tok)
			prependSpace = " "

		case lang == "cs" && i > 1 &&
			digitsOnly.MatchString(words[i-2]) &&
			decimalMark.MatchString(words[i-1]) &&
			digitsOnly.MatchString(tok):
			b.WriteString(tok)
			prependSpace = " "

		case (lang == "fr" || lang == "it" || lang == "ga") && i < len(words)-1 &&
			elidedArticle.MatchString(tok) && alphaStart.MatchString(words[i+1]):
			b.WriteString(prependSpace + tok)
			prependSpace = ""

		case lang == "cs" && i < len(words)-2 &&
			elidedArticle.MatchString(tok) &&
			czechDash.MatchString(words[i+1]) &&
			czechDashed.MatchString(words[i+2]):
			b.WriteString(prependSpace + tok + words[i+1])
			i++
			prependSpace = ""

		case quoteToken.MatchString(tok):
			quote := tok
			if doubleQuotes.MatchString(tok) {
				quote = `"`
			}
			if lang == "cs" && tok == "„" {
				quoteCounts[quote] = 0
			}
			if lang == "cs" && tok == "“" {
				quoteCounts[quote] = 1
			}

			if quoteCounts[quote]%2 == 0 {
				if lang == "en" && tok == "'" && i > 0 && strings.HasSuffix(words[i-1], "s") {
					b.WriteString(tok)
					prependSpace = " "
				} else {
					b.WriteString(prependSpace + tok)
					prependSpace = ""
					quoteCounts[quote]++
				}
			} else {
				b.WriteString(tok)
				prependSpace = " "
				quoteCounts[quote]++
			}

		case lang == "fi" && i > 0 && strings.HasSuffix(words[i-1], ":") && finnishSuffix.MatchString(tok):
			b.WriteString(prependSpace + tok)
			prependSpace = " "

		default:
			b.WriteString(prependSpace + tok)
			prependSpace = " "
		}
	}

	return collapseSpaces(b.String())
}

func isCJKStart(tok string) bool {
	r, _ := utf8.DecodeRuneInString(tok)
	return isCJK(r)
}

func isCJKEnd(tok string) bool {
	r, _ := utf8.DecodeLastRuneInString(tok)
	return isCJK(r)
}

func isCJK(r rune) bool {
	switch {
	case unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul, unicode.Bopomofo):
		return true
	case r >= 0x3000 && r <= 0x303f:
		return true
	case r >= 0xff00 && r <= 0xffef:
		return true
	}
	return false
}
