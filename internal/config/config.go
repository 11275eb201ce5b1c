package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel     string                     `mapstructure:"log_level"`
	ResourcesDir string                     `mapstructure:"resources_dir"`
	Pipeline     PipelineConfig             `mapstructure:"pipeline"`
	Batch        BatchConfig                `mapstructure:"batch"`
	Directions   map[string]DirectionConfig `mapstructure:"directions"`
}

// PipelineConfig holds the processing switches shared by all directions.
type PipelineConfig struct {
	ReplaceUnicodePunctuation bool `mapstructure:"replace_unicode_punctuation"`
	EscapeXMLSymbols          bool `mapstructure:"escape_xml_symbols"`
	AggressiveHyphenSplitting bool `mapstructure:"aggressive_hyphen_splitting"`
	UnicodeNFC                bool `mapstructure:"unicode_nfc"`
	RemoveControlChars        bool `mapstructure:"remove_control_chars"`
	UndoBPE                   bool `mapstructure:"undo_bpe"`
}

type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// DirectionConfig names the resources of one translation direction. Exactly
// one of BPECodes and PieceModel must be set. Nil flag fields inherit the
// global PipelineConfig.
type DirectionConfig struct {
	TruecaserModel         string `mapstructure:"truecaser_model"`
	BPECodes               string `mapstructure:"bpe_codes"`
	BPEVocabulary          string `mapstructure:"bpe_vocabulary"`
	BPEVocabularyThreshold int    `mapstructure:"bpe_vocabulary_threshold"`
	PieceModel             string `mapstructure:"piece_model"`
	Subword                string `mapstructure:"subword"`

	ReplaceUnicodePunctuation *bool `mapstructure:"replace_unicode_punctuation"`
	EscapeXMLSymbols          *bool `mapstructure:"escape_xml_symbols"`
	AggressiveHyphenSplitting *bool `mapstructure:"aggressive_hyphen_splitting"`
	UnicodeNFC                *bool `mapstructure:"unicode_nfc"`
	RemoveControlChars        *bool `mapstructure:"remove_control_chars"`
	UndoBPE                   *bool `mapstructure:"undo_bpe"`
}

// Flags returns the direction's effective switches, falling back to defaults
// for every flag the direction leaves unset.
func (d DirectionConfig) Flags(defaults PipelineConfig) PipelineConfig {
	out := defaults
	override(&out.ReplaceUnicodePunctuation, d.ReplaceUnicodePunctuation)
	override(&out.EscapeXMLSymbols, d.EscapeXMLSymbols)
	override(&out.AggressiveHyphenSplitting, d.AggressiveHyphenSplitting)
	override(&out.UnicodeNFC, d.UnicodeNFC)
	override(&out.RemoveControlChars, d.RemoveControlChars)
	override(&out.UndoBPE, d.UndoBPE)
	return out
}

func override(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		LogLevel:     "info",
		ResourcesDir: ".",
		Pipeline: PipelineConfig{
			ReplaceUnicodePunctuation: false,
			EscapeXMLSymbols:          true,
			AggressiveHyphenSplitting: false,
			UnicodeNFC:                false,
			RemoveControlChars:        false,
			UndoBPE:                   true,
		},
		Batch: BatchConfig{
			Workers: 4,
		},
	}
}

// flagKeys maps command-line flags to their config keys.
var flagKeys = map[string]string{
	"log-level":                            "log_level",
	"resources-dir":                        "resources_dir",
	"pipeline-replace-unicode-punctuation": "pipeline.replace_unicode_punctuation",
	"pipeline-escape-xml-symbols":          "pipeline.escape_xml_symbols",
	"pipeline-aggressive-hyphen-splitting": "pipeline.aggressive_hyphen_splitting",
	"pipeline-unicode-nfc":                 "pipeline.unicode_nfc",
	"pipeline-remove-control-chars":        "pipeline.remove_control_chars",
	"pipeline-undo-bpe":                    "pipeline.undo_bpe",
	"batch-workers":                        "batch.workers",
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	fs.String("resources-dir", defaults.ResourcesDir, "Directory relative resource paths are resolved against")
	fs.Bool("pipeline-replace-unicode-punctuation", defaults.Pipeline.ReplaceUnicodePunctuation, "Map full-width and CJK punctuation to ASCII before normalization")
	fs.Bool("pipeline-escape-xml-symbols", defaults.Pipeline.EscapeXMLSymbols, "Escape XML special characters when tokenizing and unescape them when detokenizing")
	fs.Bool("pipeline-aggressive-hyphen-splitting", defaults.Pipeline.AggressiveHyphenSplitting, "Split hyphens between alphanumerics into @-@ tokens")
	fs.Bool("pipeline-unicode-nfc", defaults.Pipeline.UnicodeNFC, "Compose input to Unicode NFC before normalization")
	fs.Bool("pipeline-remove-control-chars", defaults.Pipeline.RemoveControlChars, "Strip control characters after normalization")
	fs.Bool("pipeline-undo-bpe", defaults.Pipeline.UndoBPE, "Join leftover @@ subword fragments in model output")
	fs.Int("batch-workers", defaults.Batch.Workers, "Max sentences processed concurrently in a batch")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("PREPOST")
	replacer := strings.NewReplacer("-", "_", ".", "_", "__", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("prepost")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Directions = normalizeDirections(cfg.Directions)

	for key, d := range cfg.Directions {
		if _, err := NormalizeSubword(d.Subword); err != nil {
			return Config{}, fmt.Errorf("direction %q: %w", key, err)
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("resources_dir", c.ResourcesDir)
	v.SetDefault("pipeline.replace_unicode_punctuation", c.Pipeline.ReplaceUnicodePunctuation)
	v.SetDefault("pipeline.escape_xml_symbols", c.Pipeline.EscapeXMLSymbols)
	v.SetDefault("pipeline.aggressive_hyphen_splitting", c.Pipeline.AggressiveHyphenSplitting)
	v.SetDefault("pipeline.unicode_nfc", c.Pipeline.UnicodeNFC)
	v.SetDefault("pipeline.remove_control_chars", c.Pipeline.RemoveControlChars)
	v.SetDefault("pipeline.undo_bpe", c.Pipeline.UndoBPE)
	v.SetDefault("batch.workers", c.Batch.Workers)
}

// bindFlags binds every registered flag to its config key, so flags given on
// the command line win over config file values without hiding them.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// normalizeDirections lower-cases direction keys.
func normalizeDirections(in map[string]DirectionConfig) map[string]DirectionConfig {
	out := make(map[string]DirectionConfig, len(in))
	for k, d := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = d
	}
	return out
}

// ResolvePath joins a relative resource path onto ResourcesDir. Empty and
// absolute paths are returned unchanged.
func (c Config) ResolvePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || filepath.IsAbs(path) || c.ResourcesDir == "" {
		return path
	}
	return filepath.Join(c.ResourcesDir, path)
}
