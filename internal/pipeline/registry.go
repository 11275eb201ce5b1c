package pipeline

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/go-nmt-prepost/internal/bpe"
	"github.com/example/go-nmt-prepost/internal/config"
	"github.com/example/go-nmt-prepost/internal/moses"
	"github.com/example/go-nmt-prepost/internal/tokenizer"
	"github.com/example/go-nmt-prepost/internal/truecase"
)

// Truecaser restores the casing of a tokenized sentence.
type Truecaser interface {
	Truecase(text string) []string
}

// LanguageResources are the language-dependent tools shared by every
// direction that has the language as source or target.
type LanguageResources struct {
	Lang        string
	Normalizer  *moses.PunctNormalizer
	Tokenizer   *moses.Tokenizer
	Detokenizer *moses.Detokenizer
}

func newLanguageResources(lang string) *LanguageResources {
	return &LanguageResources{
		Lang:        lang,
		Normalizer:  moses.NewPunctNormalizer(lang),
		Tokenizer:   moses.NewTokenizer(lang),
		Detokenizer: moses.NewDetokenizer(lang),
	}
}

// DirectionResources are the loaded models of one direction.
type DirectionResources struct {
	Direction Direction
	Flags     config.PipelineConfig
	Source    *LanguageResources
	Target    *LanguageResources
	// Truecaser is nil when the direction has no truecasing model.
	Truecaser    Truecaser
	Subtokenizer Subtokenizer
}

type (
	TruecaserLoader func(path string) (Truecaser, error)
	BPELoader       func(opts bpe.LoadOptions) (BPEEncoder, error)
	PieceLoader     func(path string) (tokenizer.PieceEncoder, error)
)

type registryOptions struct {
	loadTruecaser TruecaserLoader
	loadBPE       BPELoader
	loadPiece     PieceLoader
	logger        *slog.Logger
}

// RegistryOption configures NewRegistry.
type RegistryOption func(*registryOptions)

// WithTruecaserLoader replaces the function that reads truecasing models.
func WithTruecaserLoader(fn TruecaserLoader) RegistryOption {
	return func(o *registryOptions) { o.loadTruecaser = fn }
}

// WithBPELoader replaces the function that reads BPE codes.
func WithBPELoader(fn BPELoader) RegistryOption {
	return func(o *registryOptions) { o.loadBPE = fn }
}

// WithPieceLoader replaces the function that reads SentencePiece models.
func WithPieceLoader(fn PieceLoader) RegistryOption {
	return func(o *registryOptions) { o.loadPiece = fn }
}

// WithRegistryLogger sets the logger used while resources are loaded.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(o *registryOptions) { o.logger = logger }
}

func defaultRegistryOptions() registryOptions {
	return registryOptions{
		loadTruecaser: func(path string) (Truecaser, error) { return truecase.Load(path) },
		loadBPE:       func(opts bpe.LoadOptions) (BPEEncoder, error) { return bpe.Load(opts) },
		loadPiece: func(path string) (tokenizer.PieceEncoder, error) {
			return tokenizer.NewSentencePieceTokenizer(path)
		},
		logger: slog.Default(),
	}
}

// Registry holds the resources of every configured direction. It is built
// once and read-only afterwards.
type Registry struct {
	languages   map[string]*LanguageResources
	directions  map[string]*DirectionResources
	keys        []string
	detruecaser *truecase.Detruecaser
}

// NewRegistry validates cfg and loads the resources of every direction.
// Every direction must configure exactly one of BPE codes and a
// SentencePiece model; violations are reported as ErrConfiguration before
// any file is read.
func NewRegistry(cfg config.Config, opts ...RegistryOption) (*Registry, error) {
	o := defaultRegistryOptions()
	for _, fn := range opts {
		fn(&o)
	}

	type pending struct {
		dir  Direction
		dc   config.DirectionConfig
		kind SubwordKind
	}

	plan := make([]pending, 0, len(cfg.Directions))
	for key, dc := range cfg.Directions {
		dir, err := ParseDirection(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}

		kind, err := subwordKind(dir, dc)
		if err != nil {
			return nil, err
		}

		plan = append(plan, pending{dir: dir, dc: dc, kind: kind})
	}

	sort.Slice(plan, func(i, j int) bool { return plan[i].dir.String() < plan[j].dir.String() })

	r := &Registry{
		languages:   make(map[string]*LanguageResources),
		directions:  make(map[string]*DirectionResources, len(plan)),
		keys:        make([]string, 0, len(plan)),
		detruecaser: truecase.NewDetruecaser(),
	}

	for _, p := range plan {
		res, err := r.load(o, cfg, p.dir, p.dc, p.kind)
		if err != nil {
			return nil, err
		}

		key := p.dir.String()
		r.directions[key] = res
		r.keys = append(r.keys, key)

		o.logger.Info("direction loaded",
			"direction", key,
			"subword", p.kind.String(),
			"truecaser", res.Truecaser != nil,
		)
	}

	return r, nil
}

func subwordKind(dir Direction, dc config.DirectionConfig) (SubwordKind, error) {
	hint, err := config.NormalizeSubword(dc.Subword)
	if err != nil {
		return 0, fmt.Errorf("%w: direction %s: %w", ErrConfiguration, dir, err)
	}

	hasBPE := strings.TrimSpace(dc.BPECodes) != ""
	hasPiece := strings.TrimSpace(dc.PieceModel) != ""

	var kind SubwordKind
	switch {
	case hasBPE && hasPiece:
		return 0, fmt.Errorf("%w: direction %s configures both bpe_codes and piece_model", ErrConfiguration, dir)
	case hasBPE:
		kind = SubwordBPE
	case hasPiece:
		kind = SubwordPiece
	default:
		return 0, fmt.Errorf("%w: direction %s configures neither bpe_codes nor piece_model", ErrConfiguration, dir)
	}

	if hint != "" && hint != kind.String() {
		return 0, fmt.Errorf("%w: direction %s declares subword %q but configures %s", ErrConfiguration, dir, hint, kind)
	}

	return kind, nil
}

func (r *Registry) load(
	o registryOptions,
	cfg config.Config,
	dir Direction,
	dc config.DirectionConfig,
	kind SubwordKind,
) (*DirectionResources, error) {
	res := &DirectionResources{
		Direction: dir,
		Flags:     dc.Flags(cfg.Pipeline),
		Source:    r.language(o.logger, dir.Source),
		Target:    r.language(o.logger, dir.Target),
	}

	if path := cfg.ResolvePath(dc.TruecaserModel); path != "" {
		tc, err := o.loadTruecaser(path)
		if err != nil {
			return nil, fmt.Errorf("direction %s: load truecaser: %w", dir, err)
		}
		res.Truecaser = tc
	}

	switch kind {
	case SubwordBPE:
		enc, err := o.loadBPE(bpe.LoadOptions{
			CodesPath:           cfg.ResolvePath(dc.BPECodes),
			VocabularyPath:      cfg.ResolvePath(dc.BPEVocabulary),
			VocabularyThreshold: dc.BPEVocabularyThreshold,
		})
		if err != nil {
			return nil, fmt.Errorf("direction %s: load bpe codes: %w", dir, err)
		}
		res.Subtokenizer = NewBPESubtokenizer(enc)
	case SubwordPiece:
		enc, err := o.loadPiece(cfg.ResolvePath(dc.PieceModel))
		if err != nil {
			return nil, fmt.Errorf("direction %s: load sentencepiece model: %w", dir, err)
		}
		res.Subtokenizer = NewPieceSubtokenizer(enc)
	}

	return res, nil
}

// language returns the shared resources of lang, creating them on first use.
func (r *Registry) language(logger *slog.Logger, lang string) *LanguageResources {
	if res, ok := r.languages[lang]; ok {
		return res
	}

	res := newLanguageResources(lang)
	r.languages[lang] = res
	logger.Info("language loaded", "lang", lang)

	return res
}

// Directions returns the sorted keys of all configured directions.
func (r *Registry) Directions() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Languages returns the sorted codes of all loaded languages.
func (r *Registry) Languages() []string {
	out := make([]string, 0, len(r.languages))
	for lang := range r.languages {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Language returns the shared resources of lang.
func (r *Registry) Language(lang string) (*LanguageResources, bool) {
	res, ok := r.languages[strings.ToLower(lang)]
	return res, ok
}

// Direction resolves key to its resources. Unknown or malformed keys yield
// ErrUnknownDirection.
func (r *Registry) Direction(key string) (*DirectionResources, error) {
	dir, err := ParseDirection(key)
	if err != nil {
		return nil, err
	}

	res, ok := r.directions[dir.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDirection, dir)
	}

	return res, nil
}
