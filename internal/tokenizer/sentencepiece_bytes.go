package tokenizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrEmptyModel is returned when NewSentencePieceTokenizerFromBytes gets no data.
var ErrEmptyModel = errors.New("sentencepiece model data must not be empty")

// NewSentencePieceTokenizerFromBytes loads a serialized model held in memory.
// The data must parse as a model proto. gosp only reads from files, so the
// model is staged in a private temporary directory that is removed again.
func NewSentencePieceTokenizerFromBytes(data []byte) (*SentencePieceTokenizer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyModel
	}

	_, err := InspectBytes(data)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp("", "prepost-piece-")
	if err != nil {
		return nil, fmt.Errorf("stage sentencepiece model: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "piece.model")

	err = os.WriteFile(path, data, 0o600)
	if err != nil {
		return nil, fmt.Errorf("stage sentencepiece model: %w", err)
	}

	return NewSentencePieceTokenizer(path)
}
