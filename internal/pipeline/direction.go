package pipeline

import (
	"fmt"
	"strings"
)

// Direction is an ordered source/target language pair such as "en-de".
type Direction struct {
	Source string
	Target string
}

// ParseDirection splits a "src-tgt" key into its lower-cased languages.
func ParseDirection(key string) (Direction, error) {
	src, tgt, ok := strings.Cut(strings.ToLower(strings.TrimSpace(key)), "-")
	if !ok || src == "" || tgt == "" || strings.Contains(tgt, "-") {
		return Direction{}, fmt.Errorf("%w: %q is not of the form src-tgt", ErrUnknownDirection, key)
	}

	return Direction{Source: src, Target: tgt}, nil
}

// String returns the "src-tgt" key of d.
func (d Direction) String() string {
	return d.Source + "-" + d.Target
}
