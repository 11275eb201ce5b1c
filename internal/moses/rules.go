// Package moses implements the Moses-style text tools used around subword
// encoding: punctuation normalization, word tokenization and detokenization.
//
// Every tool is an immutable value built once per language and safe for
// concurrent use. Language-dependent behavior is expressed as ordered rule
// lists selected by language, never as mutable instance state.
package moses

import (
	"regexp"
	"strings"
)

// Character classes shared by the rule sets.
const (
	isAlpha = `\p{L}\p{M}`
	isAlnum = `\p{L}\p{M}\p{N}`
	isN     = `\p{N}`
	isSc    = `\p{Sc}`
)

// rule is one ordered (pattern, replacement) substitution.
type rule struct {
	re   *regexp.Regexp
	repl string
}

func newRule(pattern, repl string) rule {
	return rule{re: regexp.MustCompile(pattern), repl: repl}
}

// literal builds a rule that replaces a fixed string.
func literal(old, repl string) rule {
	return newRule(regexp.QuoteMeta(old), repl)
}

type ruleSet []rule

func (rs ruleSet) apply(text string) string {
	for _, r := range rs {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

// applyUntilStable reapplies r until text stops changing. It stands in for
// lookahead patterns, which Go's regexp does not support.
func (r rule) applyUntilStable(text string) string {
	for {
		next := r.re.ReplaceAllString(text, r.repl)
		if next == text {
			return text
		}
		text = next
	}
}

var spaceRun = regexp.MustCompile(`\s+`)

func collapseSpaces(text string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(text, " "))
}
