// Package testutil provides shared skip helpers and fixture writers for tests.
//
// Skip helpers call t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    path := testutil.RequirePieceModel(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	gosp "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// PieceModelEnv names the environment variable pointing at a real
// SentencePiece model for integration tests.
const PieceModelEnv = "PREPOST_PIECE_MODEL"

// RequirePieceModel returns the SentencePiece model named by
// PREPOST_PIECE_MODEL and skips the test if it is unset or missing.
func RequirePieceModel(tb testing.TB) string {
	tb.Helper()

	p := os.Getenv(PieceModelEnv)
	if p == "" {
		tb.Skipf("no SentencePiece model configured; set %s to run this test", PieceModelEnv)
		return ""
	}

	_, err := os.Stat(p)
	if err != nil {
		tb.Skipf("SentencePiece model not found at %s=%q", PieceModelEnv, p)
		return ""
	}

	return p
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()

	path := filepath.Join(dir, name)

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		tb.Fatalf("mkdir %q: %v", filepath.Dir(path), err)
	}

	err = os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		tb.Fatalf("write %q: %v", path, err)
	}

	return path
}

// PieceModelBytes builds a serialized UNIGRAM SentencePiece model holding an
// unknown piece, the "▁" boundary piece and the given pieces. Earlier pieces
// score higher.
func PieceModelBytes(tb testing.TB, pieces ...string) []byte {
	tb.Helper()

	model := &gosp.ModelProto{
		Pieces: []*gosp.ModelProto_SentencePiece{
			{
				Piece: proto.String("<unk>"),
				Score: proto.Float32(0),
				Type:  gosp.ModelProto_SentencePiece_UNKNOWN.Enum(),
			},
			{
				Piece: proto.String("▁"),
				Score: proto.Float32(-100),
				Type:  gosp.ModelProto_SentencePiece_NORMAL.Enum(),
			},
		},
	}

	for i, p := range pieces {
		model.Pieces = append(model.Pieces, &gosp.ModelProto_SentencePiece{
			Piece: proto.String(p),
			Score: proto.Float32(-1 - float32(i)),
			Type:  gosp.ModelProto_SentencePiece_NORMAL.Enum(),
		})
	}

	data, err := proto.Marshal(model)
	if err != nil {
		tb.Fatalf("marshal sentencepiece model: %v", err)
	}

	return data
}

// WritePieceModel writes a model built by PieceModelBytes into a temporary
// directory and returns its path.
func WritePieceModel(tb testing.TB, pieces ...string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "piece.model")

	err := os.WriteFile(path, PieceModelBytes(tb, pieces...), 0o644)
	if err != nil {
		tb.Fatalf("write sentencepiece model: %v", err)
	}

	return path
}
