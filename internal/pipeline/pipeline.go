// Package pipeline turns raw sentences into model input and model output back
// into plain text, for every translation direction of a Registry.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/go-nmt-prepost/internal/bpe"
	"github.com/example/go-nmt-prepost/internal/moses"
	"github.com/example/go-nmt-prepost/internal/tags"
	"github.com/example/go-nmt-prepost/internal/text"
)

// Tokens per tag after word tokenization, which splits the marker from its
// index, and in model output, where a tag is one token.
const (
	tokenizedTagRun = 2
	modelTagRun     = 1
)

type options struct {
	logger  *slog.Logger
	metrics *Metrics
	workers int
}

// Option configures a Pipeline.
type Option func(*options)

// WithLogger sets the logger of the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetrics records per-sentence metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithWorkers bounds the sentences a batch call processes concurrently.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func defaultOptions() options {
	return options{
		logger:  slog.Default(),
		workers: 4,
	}
}

// Pipeline runs preprocessing and postprocessing over the resources of a
// Registry. It holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	reg     *Registry
	logger  *slog.Logger
	metrics *Metrics
	workers int
}

// New returns a Pipeline over reg.
func New(reg *Registry, opts ...Option) *Pipeline {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.workers < 1 {
		o.workers = 1
	}

	return &Pipeline{
		reg:     reg,
		logger:  o.logger,
		metrics: o.metrics,
		workers: o.workers,
	}
}

// Registry returns the registry the pipeline runs on.
func (p *Pipeline) Registry() *Registry { return p.reg }

// Preprocess turns a raw sentence into the space-separated subword string the
// model of direction expects. Inline tags come out as single tokens.
func (p *Pipeline) Preprocess(sentence, direction string) (out string, err error) {
	start := time.Now()
	label := unknownDirection
	defer func() { p.metrics.RecordSentence(label, opPreprocess, err, time.Since(start)) }()

	res, clean, err := p.prepare(sentence, direction)
	if res != nil {
		label = res.Direction.String()
	}
	if err != nil {
		return "", err
	}

	flags := res.Flags
	normalized := res.Source.Normalizer.Normalize(clean, moses.NormalizeOptions{
		ReplaceUnicodePunctuation: flags.ReplaceUnicodePunctuation,
		NFC:                       flags.UnicodeNFC,
		RemoveControlChars:        flags.RemoveControlChars,
	})

	var (
		tokens []string
		tagRun int
	)
	switch res.Subtokenizer.Kind() {
	case SubwordBPE:
		tokens = res.Source.Tokenizer.Tokenize(normalized, moses.TokenizeOptions{
			AggressiveDashSplits: flags.AggressiveHyphenSplitting,
			Escape:               flags.EscapeXMLSymbols,
		})
		tagRun = tokenizedTagRun
	case SubwordPiece:
		tokens = strings.Fields(tags.Pad(normalized))
		tagRun = modelTagRun
	}

	if len(tokens) == 0 {
		return "", fmt.Errorf("%w: nothing left after normalization", ErrEmptyInput)
	}

	if res.Truecaser != nil {
		tokens = recase(tokens, tagRun, res.Truecaser.Truecase)
	}

	p.logger.Debug("tokenized",
		"direction", res.Direction.String(),
		"tokens", strings.Join(tokens, " "),
	)

	switch res.Subtokenizer.Kind() {
	case SubwordPiece:
		out, err = res.Subtokenizer.encodePieces(tokens)
		if err != nil {
			return "", fmt.Errorf("direction %s: encode pieces: %w", res.Direction, err)
		}
	default:
		out = res.Subtokenizer.encodeBPE(tokens)
	}

	return out, nil
}

// Postprocess turns space-separated model output for direction back into
// plain text.
func (p *Pipeline) Postprocess(tokens, direction string) (out string, err error) {
	start := time.Now()
	label := unknownDirection
	defer func() { p.metrics.RecordSentence(label, opPostprocess, err, time.Since(start)) }()

	res, clean, err := p.prepare(tokens, direction)
	if res != nil {
		label = res.Direction.String()
	}
	if err != nil {
		return "", err
	}

	isBPE := res.Subtokenizer.Kind() == SubwordBPE
	if isBPE && res.Flags.UndoBPE {
		clean = bpe.Decode(clean)
	}

	words := strings.Fields(clean)
	if res.Truecaser != nil {
		words = recase(words, modelTagRun, p.reg.detruecaser.Detruecase)
	}

	if !isBPE {
		return strings.Join(words, " "), nil
	}

	out = res.Target.Detokenizer.Detokenize(words, moses.DetokenizeOptions{
		Unescape: res.Flags.EscapeXMLSymbols,
	})

	p.logger.Debug("detokenized", "direction", res.Direction.String(), "text", out)

	return out, nil
}

// prepare resolves direction and validates raw input. The resources are
// returned even when the input is rejected.
func (p *Pipeline) prepare(raw, direction string) (*DirectionResources, string, error) {
	res, err := p.reg.Direction(direction)
	if err != nil {
		return nil, "", err
	}

	clean, err := text.Normalize(raw)
	switch {
	case errors.Is(err, text.ErrEmptyText):
		return res, "", fmt.Errorf("%w: %w", ErrEmptyInput, err)
	case errors.Is(err, text.ErrInvalidUTF8):
		return res, "", fmt.Errorf("%w: %w", ErrMalformedInput, err)
	case err != nil:
		return res, "", err
	}

	return res, clean, nil
}

// recase runs a casing stage on tokens while keeping leading tags away from
// it, so the first real word is still seen as a sentence start.
func recase(tokens []string, tagRun int, stage func(string) []string) []string {
	prefix, rest := tags.ProtectLeading(tokens, tagRun)
	return tags.RestorePrefix(prefix, stage(strings.Join(rest, " ")))
}
