package moses

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetokenize(t *testing.T) {
	tests := []struct {
		name   string
		lang   string
		tokens []string
		opts   DetokenizeOptions
		want   string
	}{
		{name: "punctuation", lang: "en", tokens: []string{"Hello", ",", "world", "!"}, want: "Hello, world!"},
		{name: "french spaced punctuation", lang: "fr", tokens: []string{"Bonjour", "!"}, want: "Bonjour !"},
		{name: "french elision", lang: "fr", tokens: []string{"l'", "homme"}, want: "l'homme"},
		{name: "english contraction", lang: "en", tokens: []string{"don", "'t"}, want: "don't"},
		{name: "quotes pair up", lang: "en", tokens: []string{"He", "said", `"`, "hi", `"`, "."}, want: `He said "hi".`},
		{name: "english possessive", lang: "en", tokens: []string{"the", "Jones", "'", "house"}, want: "the Jones' house"},
		{name: "hyphen split undone", lang: "en", tokens: []string{"well", "@-@", "known"}, want: "well-known"},
		{name: "brackets", lang: "en", tokens: []string{"(", "a", ")"}, want: "(a)"},
		{name: "currency", lang: "en", tokens: []string{"$", "5"}, want: "$5"},
		{name: "unescape", lang: "en", tokens: []string{"A", "&amp;", "B"}, opts: DetokenizeOptions{Unescape: true}, want: "A & B"},
		{name: "no unescape", lang: "en", tokens: []string{"A", "&amp;", "B"}, want: "A &amp; B"},
		{name: "escaped apostrophe", lang: "en", tokens: []string{"don", "&apos;t"}, opts: DetokenizeOptions{Unescape: true}, want: "don't"},
		{name: "cjk joined", lang: "zh", tokens: []string{"你好", "世界"}, want: "你好世界"},
		{name: "korean not joined", lang: "ko", tokens: []string{"안녕", "세계"}, want: "안녕 세계"},
		{name: "czech decimal", lang: "cs", tokens: []string{"je", "3", ",", "5"}, want: "je 3,5"},
		{name: "catalan", lang: "ca", tokens: []string{"l'", "home", "?"}, want: "l'home?"},
		{name: "catalan escaped", lang: "ca", tokens: []string{"&quot;", "hola", "&quot;"}, opts: DetokenizeOptions{Unescape: true}, want: `"hola"`},
		{name: "empty", lang: "en", tokens: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewDetokenizer(tt.lang).Detokenize(tt.tokens, tt.opts)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetokenizeAsMatchesDetokenizer(t *testing.T) {
	tokens := []string{"Bonjour", "!"}
	assert.Equal(t,
		NewDetokenizer("fr").Detokenize(tokens, DetokenizeOptions{}),
		DetokenizeAs(tokens, "fr", DetokenizeOptions{}),
	)
}

func TestTokenizeDetokenizeRoundTrip(t *testing.T) {
	sentences := []string{
		"hello, world!",
		"this is a test.",
		"the (quick) brown fox",
		"a well-known fact",
	}

	tok := NewTokenizer("en")
	detok := NewDetokenizer("en")
	for _, s := range sentences {
		tokens := tok.Tokenize(s, TokenizeOptions{AggressiveDashSplits: true, Escape: true})
		assert.Equal(t, s, detok.Detokenize(tokens, DetokenizeOptions{Unescape: true}), s)
	}
}

func TestCatalanDetokenizeConcurrent(t *testing.T) {
	inputs := [][]string{
		{"l'", "home", "?"},
		{"Bon", "dia", "!"},
		{"&quot;", "hola", "&quot;", "."},
		{"il·lusio", ":", "sí"},
	}

	detok := NewDetokenizer("ca")
	opts := DetokenizeOptions{Unescape: true}

	const workers = 1000

	// Every caller gets its own token sequence.
	seqs := make([][]string, workers)
	want := make([]string, workers)
	for i := range workers {
		base := inputs[i%len(inputs)]
		seq := make([]string, 0, len(base)+1)
		seq = append(seq, strconv.Itoa(i))
		seq = append(seq, base...)
		seqs[i] = seq
		want[i] = detok.Detokenize(seq, opts)
	}

	got := make([]string, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = detok.Detokenize(seqs[i], opts)
		}(i)
	}
	wg.Wait()

	for i := range workers {
		require.Equal(t, want[i], got[i], "worker %d", i)
	}

	// The French pass of Catalan detokenization leaves no state behind.
	assert.Equal(t, "Bon dia !", DetokenizeAs(inputs[1], "fr", opts))
	assert.False(t, strings.Contains(detok.Detokenize(inputs[1], opts), " !"))
}
