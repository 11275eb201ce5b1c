package tokenizer

import (
	"fmt"
	"os"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// ModelInfo summarizes the vocabulary of a SentencePiece model file.
type ModelInfo struct {
	Pieces      int
	Normal      int
	Unknown     int
	Control     int
	UserDefined int
	Other       int
}

// Inspect reads the model at path and counts its pieces by type.
func Inspect(path string) (ModelInfo, error) {
	if path == "" {
		return ModelInfo{}, ErrEmptyPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("read sentencepiece model: %w", err)
	}

	return InspectBytes(data)
}

// InspectBytes is Inspect for a model already in memory.
func InspectBytes(data []byte) (ModelInfo, error) {
	var model gosp.ModelProto

	err := proto.Unmarshal(data, &model)
	if err != nil {
		return ModelInfo{}, fmt.Errorf("unmarshal sentencepiece model: %w", err)
	}

	info := ModelInfo{Pieces: len(model.GetPieces())}
	for _, piece := range model.GetPieces() {
		switch piece.GetType() {
		case gosp.ModelProto_SentencePiece_NORMAL:
			info.Normal++
		case gosp.ModelProto_SentencePiece_UNKNOWN:
			info.Unknown++
		case gosp.ModelProto_SentencePiece_CONTROL:
			info.Control++
		case gosp.ModelProto_SentencePiece_USER_DEFINED:
			info.UserDefined++
		default:
			info.Other++
		}
	}

	if info.Pieces == 0 {
		return info, fmt.Errorf("sentencepiece model has no pieces")
	}

	return info, nil
}
