// Package tags detects inline markup tags in coded text and keeps them intact
// while tag-unaware stages (truecasing, subword encoding) run around them.
//
// A tag in coded text is a marker code point followed by a single index code
// point (CharBase + tag index). The markers are reserved private-use code
// points of the upstream markup format and must never change.
package tags

import (
	"regexp"
	"strings"
)

// Marker code points for opening, closing and isolated tags.
const (
	MarkerOpening  = '\uE101'
	MarkerClosing  = '\uE102'
	MarkerIsolated = '\uE103'

	// CharBase is the code point of tag index 0.
	CharBase = '\uE110'
)

const markers = string(MarkerOpening) + string(MarkerClosing) + string(MarkerIsolated)

// tagRe matches one tag: a marker plus its index code point when present.
var tagRe = regexp.MustCompile(`[\x{E101}\x{E102}\x{E103}][\x{E110}-\x{F8FF}]?`)

// IsTag reports whether token carries a tag signature, i.e. contains any of
// the three markers.
func IsTag(token string) bool {
	return strings.ContainsAny(token, markers)
}

// Opening returns the coded form of the opening tag with the given index.
func Opening(index int) string { return string(MarkerOpening) + string(CharBase+rune(index)) }

// Closing returns the coded form of the closing tag with the given index.
func Closing(index int) string { return string(MarkerClosing) + string(CharBase+rune(index)) }

// Isolated returns the coded form of the isolated tag with the given index.
func Isolated(index int) string { return string(MarkerIsolated) + string(CharBase+rune(index)) }

// Pad surrounds every tag in text with single spaces so whitespace splitting
// yields each tag as one token.
func Pad(text string) string {
	if !IsTag(text) {
		return text
	}
	padded := tagRe.ReplaceAllString(text, " ${0} ")
	return strings.Join(strings.Fields(padded), " ")
}

// Segment is a run of text that is either one tag or plain text without tags.
type Segment struct {
	Text  string
	IsTag bool
}

// Segments splits text into plain-text and tag segments in input order.
// Empty plain segments are omitted.
func Segments(text string) []Segment {
	locs := tagRe.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Segment{{Text: text}}
	}

	segs := make([]Segment, 0, 2*len(locs)+1)
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			segs = append(segs, Segment{Text: text[prev:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], IsTag: true})
		prev = loc[1]
	}
	if prev < len(text) {
		segs = append(segs, Segment{Text: text[prev:]})
	}

	return segs
}
