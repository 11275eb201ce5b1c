package tags

import "strings"

// WordBoundary is the SentencePiece word-start marker.
const WordBoundary = "▁"

// ProtectLeading removes the maximal leading run of tags from tokens. Each
// matched tag consumes runLength tokens: 2 on tokenizer output, where a tag is
// split into marker and index token, and 1 on model output, where a tag is a
// single merged token. A tag is only protected while more than one token
// remains. tokens is not modified.
func ProtectLeading(tokens []string, runLength int) (prefix, rest []string) {
	if runLength < 1 {
		runLength = 1
	}

	n := 0
	for len(tokens)-n > 1 && IsTag(tokens[n]) {
		end := n + runLength
		if end > len(tokens) {
			end = len(tokens)
		}
		n = end
	}

	return tokens[:n:n], tokens[n:]
}

// RestorePrefix splices a protected prefix back in front of the processed
// tokens.
func RestorePrefix(prefix, processed []string) []string {
	if len(prefix) == 0 {
		return processed
	}

	out := make([]string, 0, len(prefix)+len(processed))
	out = append(out, prefix...)
	return append(out, processed...)
}

// MergeBPE joins byte-pair encoded tokens into the model input string. Tag
// tokens are written without a trailing space so a marker coalesces with the
// index token that follows it; every other token is followed by one space.
func MergeBPE(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok)
		if !IsTag(tok) {
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(b.String())
}

// DropOrphanBoundaries removes bare word-boundary pieces that directly
// precede or follow a tag. They appear when a subword model encodes the
// spaces inserted around tags.
func DropOrphanBoundaries(pieces []string) []string {
	out := make([]string, 0, len(pieces))
	for i, p := range pieces {
		if p == WordBoundary {
			prevTag := i > 0 && IsTag(pieces[i-1])
			nextTag := i+1 < len(pieces) && IsTag(pieces[i+1])
			if prevTag || nextTag {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}
