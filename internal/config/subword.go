package config

import (
	"fmt"
	"strings"
)

const (
	SubwordBPE   = "bpe"
	SubwordPiece = "piece"
)

// NormalizeSubword validates an explicit subword hint. An empty hint means
// the kind is inferred from which model path is configured.
func NormalizeSubword(raw string) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(raw))
	switch kind {
	case "", SubwordBPE, SubwordPiece:
		return kind, nil
	case "sentencepiece", "spm":
		return SubwordPiece, nil
	default:
		return "", fmt.Errorf(
			"invalid subword kind %q (expected %s|%s|sentencepiece)",
			raw,
			SubwordBPE,
			SubwordPiece,
		)
	}
}
