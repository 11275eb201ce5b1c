// Package truecase restores the natural casing of tokenized sentences using a
// Moses truecasing model, and capitalizes sentence starts on the way back.
package truecase

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrEmptyPath is returned when Load is called with an empty path.
var ErrEmptyPath = errors.New("truecaser model path must not be empty")

var (
	sentenceEnd = map[string]struct{}{
		".": {}, ":": {}, "?": {}, "!": {},
	}
	delayedSentenceStart = map[string]struct{}{
		"(": {}, "[": {}, `"`: {}, "'": {},
		"&apos;": {}, "&quot;": {}, "&#91;": {}, "&#93;": {},
	}
)

// nextSentenceStart reports whether the token after tok starts a sentence.
func nextSentenceStart(tok string, current bool) bool {
	if _, ok := sentenceEnd[tok]; ok {
		return true
	}
	if _, ok := delayedSentenceStart[tok]; ok {
		return current
	}
	return false
}

// Truecaser maps tokens to their most frequent casing. It is immutable once
// loaded and safe for concurrent use.
type Truecaser struct {
	best  map[string]string
	known map[string]struct{}
}

// Load reads a Moses truecasing model from path.
func Load(path string) (*Truecaser, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open truecaser model: %w", err)
	}
	defer f.Close()

	tc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse truecaser model %q: %w", path, err)
	}

	return tc, nil
}

// Parse reads a truecasing model from r. Every line lists the casings of one
// word with their counts, e.g. "Hello (3/5) hello (2)".
func Parse(r io.Reader) (*Truecaser, error) {
	tc := &Truecaser{
		best:  make(map[string]string),
		known: make(map[string]struct{}),
	}
	bestCount := make(map[string]int)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("line %d: expected word/count pairs, got %d fields", lineNo, len(fields))
		}

		for i := 0; i < len(fields); i += 2 {
			word := fields[i]
			count, err := parseCount(fields[i+1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}

			tc.known[word] = struct{}{}

			lower := strings.ToLower(word)
			if prev, ok := bestCount[lower]; !ok || count > prev {
				tc.best[lower] = word
				bestCount[lower] = count
			}
		}
	}

	err := sc.Err()
	if err != nil {
		return nil, fmt.Errorf("read model: %w", err)
	}

	return tc, nil
}

// parseCount extracts n from "(n/total)" or "(n)".
func parseCount(field string) (int, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(field, "("), ")")
	s, _, _ = strings.Cut(s, "/")

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid count %q", field)
	}

	return n, nil
}

// Len returns the number of distinct lowercased words in the model.
func (t *Truecaser) Len() int { return len(t.best) }

// Truecase splits text on whitespace and returns the truecased tokens.
func (t *Truecaser) Truecase(text string) []string {
	tokens := strings.Fields(text)
	out := make([]string, len(tokens))

	first := true
	for i, tok := range tokens {
		best, hasBest := t.best[strings.ToLower(tok)]
		_, known := t.known[tok]

		switch {
		case first && hasBest:
			tok = best
		case known:
		case hasBest:
			tok = best
		}

		out[i] = tok
		first = nextSentenceStart(tok, first)
	}

	return out
}
