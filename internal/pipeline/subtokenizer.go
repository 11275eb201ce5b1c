package pipeline

import (
	"strings"

	"github.com/example/go-nmt-prepost/internal/tags"
	"github.com/example/go-nmt-prepost/internal/tokenizer"
)

// SubwordKind tells which subword algorithm a direction uses.
type SubwordKind int

const (
	SubwordBPE SubwordKind = iota + 1
	SubwordPiece
)

func (k SubwordKind) String() string {
	switch k {
	case SubwordBPE:
		return "bpe"
	case SubwordPiece:
		return "piece"
	default:
		return "unknown"
	}
}

// BPEEncoder segments a line of space-separated tokens into BPE subwords.
type BPEEncoder interface {
	Apply(line string) string
}

// Subtokenizer is the subword encoder of one direction: exactly one of BPE
// or SentencePiece, fixed when the registry is built.
type Subtokenizer struct {
	kind  SubwordKind
	bpe   BPEEncoder
	piece tokenizer.PieceEncoder
}

// NewBPESubtokenizer wraps a BPE encoder.
func NewBPESubtokenizer(enc BPEEncoder) Subtokenizer {
	return Subtokenizer{kind: SubwordBPE, bpe: enc}
}

// NewPieceSubtokenizer wraps a SentencePiece encoder.
func NewPieceSubtokenizer(enc tokenizer.PieceEncoder) Subtokenizer {
	return Subtokenizer{kind: SubwordPiece, piece: enc}
}

// Kind reports which algorithm s uses.
func (s Subtokenizer) Kind() SubwordKind { return s.kind }

// encodeBPE segments tokens and merges every tag back into one token.
func (s Subtokenizer) encodeBPE(tokens []string) string {
	return tags.MergeBPE(strings.Fields(s.bpe.Apply(strings.Join(tokens, " "))))
}

// encodePieces encodes the text between tags. Tags never reach the
// SentencePiece model; they are kept as single tokens.
func (s Subtokenizer) encodePieces(tokens []string) (string, error) {
	var pieces []string

	for _, seg := range tags.Segments(strings.Join(tokens, " ")) {
		if seg.IsTag {
			pieces = append(pieces, seg.Text)
			continue
		}

		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}

		encoded, err := s.piece.EncodePieces(text)
		if err != nil {
			return "", err
		}
		pieces = append(pieces, encoded...)
	}

	return strings.Join(tags.DropOrphanBoundaries(pieces), " "), nil
}
