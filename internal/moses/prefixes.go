package moses

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed prefixes/nonbreaking_prefix.*
var prefixFiles embed.FS

const numericOnlyMarker = "#NUMERIC_ONLY#"

// prefixSet holds the non-breaking prefixes of one language: words that keep
// a following period attached.
type prefixSet struct {
	all         map[string]struct{}
	numericOnly map[string]struct{}
}

func (p prefixSet) nonBreaking(word string) bool {
	_, ok := p.all[word]
	if !ok {
		return false
	}
	_, numeric := p.numericOnly[word]
	return !numeric
}

func (p prefixSet) isNumericOnly(word string) bool {
	_, ok := p.numericOnly[word]
	return ok
}

// loadPrefixes reads the embedded prefix list for lang, falling back to
// English for languages without a list.
func loadPrefixes(lang string) prefixSet {
	data, err := prefixFiles.ReadFile("prefixes/nonbreaking_prefix." + lang)
	if err != nil {
		data, _ = prefixFiles.ReadFile("prefixes/nonbreaking_prefix.en")
	}
	return parsePrefixes(string(data))
}

func parsePrefixes(data string) prefixSet {
	set := prefixSet{
		all:         make(map[string]struct{}),
		numericOnly: make(map[string]struct{}),
	}

	sc := bufio.NewScanner(strings.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		word, rest, _ := strings.Cut(line, " ")
		set.all[word] = struct{}{}
		if strings.Contains(rest, numericOnlyMarker) {
			set.numericOnly[word] = struct{}{}
		}
	}

	return set
}
