// Package tokenizer provides SentencePiece subword encoding for directions
// whose models were trained on SentencePiece pieces instead of BPE codes.
package tokenizer

// Tokenizer encodes text into SentencePiece token IDs.
type Tokenizer interface {
	// Encode tokenizes text and returns SentencePiece token IDs.
	Encode(text string) ([]int64, error)
}

// PieceEncoder encodes text into SentencePiece piece strings.
type PieceEncoder interface {
	// EncodePieces tokenizes text and returns the pieces, each word-initial
	// piece carrying the "▁" boundary marker.
	EncodePieces(text string) ([]string, error)
}
