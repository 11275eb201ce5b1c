package moses

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeOptions are the per-call switches of PunctNormalizer.Normalize.
type NormalizeOptions struct {
	// ReplaceUnicodePunctuation maps full-width and CJK punctuation to ASCII
	// before the normalization rules run.
	ReplaceUnicodePunctuation bool
	// NFC composes the input to Unicode normalization form C first.
	NFC bool
	// RemoveControlChars strips Cc control characters after normalization.
	// Private-use code points (inline tags) are never removed.
	RemoveControlChars bool
}

var extraWhitespace = ruleSet{
	newRule(`\r`, ""),
	newRule(`\(`, " ("),
	newRule(`\)`, ") "),
	newRule(` +`, " "),
	newRule(`\) ([.!:?;,])`, ")${1}"),
	newRule(`\( `, "("),
	newRule(` \)`, ")"),
	newRule(`(\d) %`, "${1}%"),
	newRule(` :`, ":"),
	newRule(` ;`, ";"),
}

var pennQuotes = ruleSet{
	literal("`", "'"),
	literal("''", ` " `),
}

var unicodeQuotesDashes = ruleSet{
	literal("„", `"`),
	literal("“", `"`),
	literal("”", `"`),
	literal("–", "-"),
	literal("—", " - "),
	newRule(` +`, " "),
	literal("´", "'"),
	newRule(`([a-zA-Z])‘([a-zA-Z])`, "${1}'${2}"),
	newRule(`([a-zA-Z])’([a-zA-Z])`, "${1}'${2}"),
	literal("‘", "'"),
	literal("‚", "'"),
	literal("’", "'"),
	literal("''", `"`),
	literal("´´", `"`),
	literal("…", "..."),
}

var frenchQuotes = ruleSet{
	literal("\u00a0«\u00a0", `"`),
	literal("«\u00a0", `"`),
	literal("«", `"`),
	literal("\u00a0»\u00a0", `"`),
	literal("\u00a0»", `"`),
	literal("»", `"`),
}

var pseudoSpaces = ruleSet{
	literal("\u00a0%", "%"),
	literal("nº\u00a0", "nº "),
	literal("\u00a0:", ":"),
	literal("\u00a0ºC", " ºC"),
	literal("\u00a0cm", " cm"),
	literal("\u00a0?", "?"),
	literal("\u00a0!", "!"),
	literal("\u00a0;", ";"),
	literal(",\u00a0", ", "),
	newRule(` +`, " "),
}

var (
	enQuoteComma = ruleSet{
		newRule(`"([,.]+)`, `${1}"`),
	}
	deEsFrQuoteComma = ruleSet{
		literal(`,"`, `",`),
		newRule(`(\.+)"(\s*[^<])`, `"${1}${2}`),
	}
	commaDecimal = ruleSet{
		newRule("(\\d)\u00a0(\\d)", "${1},${2}"),
	}
	dotDecimal = ruleSet{
		newRule("(\\d)\u00a0(\\d)", "${1}.${2}"),
	}
)

var unicodePunctuation = ruleSet{
	literal("，", ","),
	newRule(`。\s*`, ". "),
	literal("、", ","),
	literal("”", `"`),
	literal("“", `"`),
	literal("∶", ":"),
	literal("：", ":"),
	literal("？", "?"),
	literal("《", `"`),
	literal("》", `"`),
	literal("）", ")"),
	literal("！", "!"),
	literal("（", "("),
	literal("；", ";"),
	literal("」", `"`),
	literal("「", `"`),
	literal("０", "0"),
	literal("１", "1"),
	literal("２", "2"),
	literal("３", "3"),
	literal("４", "4"),
	literal("５", "5"),
	literal("６", "6"),
	literal("７", "7"),
	literal("８", "8"),
	literal("９", "9"),
	newRule(`．\s*`, ". "),
	literal("～", "~"),
	literal("’", "'"),
	literal("…", "..."),
	literal("━", "-"),
	literal("〈", "<"),
	literal("〉", ">"),
	literal("【", "["),
	literal("】", "]"),
	literal("％", "%"),
}

// PunctNormalizer normalizes punctuation and whitespace for one language.
type PunctNormalizer struct {
	lang  string
	rules ruleSet
}

// NewPunctNormalizer returns the normalizer for lang.
func NewPunctNormalizer(lang string) *PunctNormalizer {
	groups := []ruleSet{extraWhitespace, pennQuotes, unicodeQuotesDashes, frenchQuotes, pseudoSpaces}

	switch lang {
	case "en":
		groups = append(groups, enQuoteComma)
	case "de", "es", "fr":
		groups = append(groups, deEsFrQuoteComma)
	}

	switch lang {
	case "de", "es", "cz", "cs", "fr":
		groups = append(groups, commaDecimal)
	default:
		groups = append(groups, dotDecimal)
	}

	var rules ruleSet
	for _, g := range groups {
		rules = append(rules, g...)
	}

	return &PunctNormalizer{lang: lang, rules: rules}
}

// Lang returns the language code the normalizer was built for.
func (n *PunctNormalizer) Lang() string { return n.lang }

// Normalize applies the normalization rules to text and trims the result.
func (n *PunctNormalizer) Normalize(text string, opts NormalizeOptions) string {
	if opts.NFC {
		text = norm.NFC.String(text)
	}
	if opts.ReplaceUnicodePunctuation {
		text = unicodePunctuation.apply(text)
	}

	text = n.rules.apply(text)

	if opts.RemoveControlChars {
		text = removeControlChars(text)
	}

	return strings.TrimSpace(text)
}

func removeControlChars(text string) string {
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Cc)), text)
	if err != nil {
		return text
	}
	return out
}
