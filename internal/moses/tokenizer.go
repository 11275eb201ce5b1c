package moses

import (
	"regexp"
	"strings"
	"unicode"
)

// TokenizeOptions are the per-call switches of Tokenizer.Tokenize.
type TokenizeOptions struct {
	// AggressiveDashSplits splits hyphens between alphanumerics into
	// "@-@" tokens.
	AggressiveDashSplits bool
	// Escape XML-escapes the special characters of the output tokens.
	Escape bool
}

var (
	dedupSpace = newRule(`\s+`, " ")
	asciiJunk  = newRule(`[\x00-\x1f]`, "")

	// padNotAlnum puts spaces around every character that is neither
	// alphanumeric nor one of the characters handled by later rules.
	padNotAlnum = ruleSet{
		newRule(`([^`+isAlnum+`\s\.'`+"`"+`,\-])`, " ${1} "),
	}

	// catalanMiddleDot replaces padNotAlnum for Catalan. The middle dot of
	// geminated "l·l" stays inside the word; it is split out only when no
	// lowercase letter follows.
	catalanMiddleDot = ruleSet{
		newRule(`([^`+isAlnum+`\s\.'`+"`"+`,\-·])`, " ${1} "),
		newRule(`·(\P{Ll}|$)`, " · ${1}"),
	}

	aggressiveHyphen = newRule(`([`+isAlnum+`])\-([`+isAlnum+`])`, "${1} @-@ ${2}")

	commaSeparate = ruleSet{
		newRule(`([^`+isN+`])[,]`, "${1} , "),
		newRule(`[,]([^`+isN+`])`, " , ${1}"),
		newRule(`([`+isN+`])[,]$`, "${1} , "),
	}

	englishApostrophe = ruleSet{
		newRule(`([^`+isAlpha+`])[']([^`+isAlpha+`])`, "${1} ' ${2}"),
		newRule(`([^`+isAlpha+isN+`])[']([`+isAlpha+`])`, "${1} ' ${2}"),
		newRule(`([`+isAlpha+`])[']([^`+isAlpha+`])`, "${1} ' ${2}"),
		newRule(`([`+isAlpha+`])[']([`+isAlpha+`])`, "${1} '${2}"),
		newRule(`([`+isN+`])[']([s])`, "${1} '${2}"),
	}

	romanceApostrophe = ruleSet{
		newRule(`([^`+isAlpha+`])[']([^`+isAlpha+`])`, "${1} ' ${2}"),
		newRule(`([^`+isAlpha+`])[']([`+isAlpha+`])`, "${1} ' ${2}"),
		newRule(`([`+isAlpha+`])[']([^`+isAlpha+`])`, "${1} ' ${2}"),
		newRule(`([`+isAlpha+`])[']([`+isAlpha+`])`, "${1}' ${2}"),
	}

	otherApostrophe = ruleSet{
		newRule(`'`, " ' "),
	}

	trailingDotApostrophe = newRule(`\.' ?$`, " . ' ")

	multiDotStart = newRule(`\.([\.]+)`, " DOTMULTI${1}")
	multiDotNext  = newRule(`DOTMULTI\.([^\.])`, "DOTDOTMULTI ${1}")
	multiDotLast  = newRule(`DOTMULTI\.`, "DOTDOTMULTI")

	endsWithPeriod = regexp.MustCompile(`^(\S+)\.$`)
	leadingDigits  = regexp.MustCompile(`^[0-9]+`)
)

// langRules is the rule variant a language tokenizes with.
type langRules struct {
	specialChars ruleSet
	apostrophe   ruleSet
}

func rulesFor(lang string) langRules {
	r := langRules{specialChars: padNotAlnum, apostrophe: otherApostrophe}

	switch lang {
	case "ca":
		r.specialChars = catalanMiddleDot
		r.apostrophe = romanceApostrophe
	case "fr", "it":
		r.apostrophe = romanceApostrophe
	case "en":
		r.apostrophe = englishApostrophe
	}

	return r
}

// Tokenizer splits sentences of one language into Moses-style word tokens.
type Tokenizer struct {
	lang     string
	rules    langRules
	prefixes prefixSet
}

// NewTokenizer returns the tokenizer for lang.
func NewTokenizer(lang string) *Tokenizer {
	return &Tokenizer{
		lang:     lang,
		rules:    rulesFor(lang),
		prefixes: loadPrefixes(lang),
	}
}

// Lang returns the language code the tokenizer was built for.
func (t *Tokenizer) Lang() string { return t.lang }

// Tokenize splits text into tokens. Inline tags come out as two tokens, the
// marker and its index code point.
func (t *Tokenizer) Tokenize(text string, opts TokenizeOptions) []string {
	text = dedupSpace.re.ReplaceAllString(text, dedupSpace.repl)
	text = asciiJunk.re.ReplaceAllString(text, asciiJunk.repl)
	text = strings.TrimSpace(text)

	text = t.rules.specialChars.apply(text)

	if opts.AggressiveDashSplits {
		text = aggressiveHyphen.applyUntilStable(text)
	}

	text = replaceMultiDots(text)
	text = commaSeparate.apply(text)
	text = t.rules.apostrophe.apply(text)
	text = t.handleNonBreakingPrefixes(text)
	text = collapseSpaces(text)
	text = trailingDotApostrophe.re.ReplaceAllString(text, trailingDotApostrophe.repl)
	text = restoreMultiDots(text)

	if opts.Escape {
		text = EscapeXML(text)
	}

	return strings.Fields(text)
}

func replaceMultiDots(text string) string {
	text = multiDotStart.re.ReplaceAllString(text, multiDotStart.repl)
	for strings.Contains(text, "DOTMULTI.") {
		text = multiDotNext.re.ReplaceAllString(text, multiDotNext.repl)
		text = multiDotLast.re.ReplaceAllString(text, multiDotLast.repl)
	}
	return text
}

func restoreMultiDots(text string) string {
	for strings.Contains(text, "DOTDOTMULTI") {
		text = strings.ReplaceAll(text, "DOTDOTMULTI", "DOTMULTI.")
	}
	return strings.ReplaceAll(text, "DOTMULTI", ".")
}

// handleNonBreakingPrefixes separates a token-final period unless the token
// is an abbreviation, a known prefix, or precedes a lowercase word.
func (t *Tokenizer) handleNonBreakingPrefixes(text string) string {
	tokens := strings.Fields(text)

	for i, tok := range tokens {
		m := endsWithPeriod.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		prefix := m[1]

		switch {
		case strings.Contains(prefix, ".") && hasLetter(prefix):
		case t.prefixes.nonBreaking(prefix):
		case i < len(tokens)-1 && startsLower(tokens[i+1]):
		case t.prefixes.isNumericOnly(prefix) && i < len(tokens)-1 && leadingDigits.MatchString(tokens[i+1]):
		default:
			tokens[i] = prefix + " ."
		}
	}

	return strings.Join(tokens, " ")
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}
