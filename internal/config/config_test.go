package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

// fakeBinder wraps a pflag.FlagSet to satisfy the flagBinder interface.
type fakeBinder struct {
	fs *pflag.FlagSet
}

func (f *fakeBinder) Flags() *pflag.FlagSet { return f.fs }

// newFlagBinder creates a FlagSet with all config flags registered at their defaults.
func newFlagBinder(defaults Config) *fakeBinder {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	return &fakeBinder{fs: fs}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prepost.yaml")

	err := os.WriteFile(path, []byte(content), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	return path
}

// --- DefaultConfig ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "info")
	}

	if cfg.ResourcesDir != "." {
		t.Errorf("ResourcesDir = %q; want %q", cfg.ResourcesDir, ".")
	}

	if !cfg.Pipeline.EscapeXMLSymbols {
		t.Error("Pipeline.EscapeXMLSymbols = false; want true")
	}

	if cfg.Pipeline.ReplaceUnicodePunctuation {
		t.Error("Pipeline.ReplaceUnicodePunctuation = true; want false")
	}

	if cfg.Pipeline.AggressiveHyphenSplitting {
		t.Error("Pipeline.AggressiveHyphenSplitting = true; want false")
	}

	if !cfg.Pipeline.UndoBPE {
		t.Error("Pipeline.UndoBPE = false; want true")
	}

	if cfg.Batch.Workers != 4 {
		t.Errorf("Batch.Workers = %d; want 4", cfg.Batch.Workers)
	}
}

// --- NormalizeSubword ---

func TestNormalizeSubword(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"empty means inferred", "", "", false},
		{"whitespace means inferred", "   ", "", false},
		{"bpe lowercase", "bpe", "bpe", false},
		{"bpe uppercase", "BPE", "bpe", false},
		{"piece", "piece", "piece", false},
		{"sentencepiece alias", "SentencePiece", "piece", false},
		{"spm alias with spaces", "  spm  ", "piece", false},
		{"invalid value", "wordpiece", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSubword(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("NormalizeSubword(%q) = %q, nil; want error", tt.input, got)
				}

				return
			}

			if err != nil {
				t.Errorf("NormalizeSubword(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("NormalizeSubword(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

// --- DirectionConfig.Flags ---

func TestDirectionConfigFlags(t *testing.T) {
	off := false
	on := true

	d := DirectionConfig{EscapeXMLSymbols: &off, AggressiveHyphenSplitting: &on}
	got := d.Flags(DefaultConfig().Pipeline)

	if got.EscapeXMLSymbols {
		t.Error("EscapeXMLSymbols = true; want direction override false")
	}

	if !got.AggressiveHyphenSplitting {
		t.Error("AggressiveHyphenSplitting = false; want direction override true")
	}

	if !got.UndoBPE {
		t.Error("UndoBPE = false; want inherited default true")
	}
}

func TestResolvePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "codes")

	cases := []struct {
		name string
		dir  string
		path string
		want string
	}{
		{"relative", "/srv/models", "en-de/codes", filepath.Join("/srv/models", "en-de/codes")},
		{"absolute", "/srv/models", abs, abs},
		{"empty", "/srv/models", "  ", ""},
		{"no resources dir", "", "codes", "codes"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Config{ResourcesDir: tc.dir}.ResolvePath(tc.path)
			if got != tc.want {
				t.Errorf("ResolvePath(%q) = %q; want %q", tc.path, got, tc.want)
			}
		})
	}
}

// --- RegisterFlags ---

func TestRegisterFlags(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	checks := []struct {
		flag string
		want string
	}{
		{"log-level", "info"},
		{"resources-dir", "."},
		{"pipeline-escape-xml-symbols", "true"},
		{"pipeline-replace-unicode-punctuation", "false"},
		{"batch-workers", "4"},
	}

	for _, c := range checks {
		f := fs.Lookup(c.flag)
		if f == nil {
			t.Errorf("flag %q not registered", c.flag)
			continue
		}

		if f.DefValue != c.want {
			t.Errorf("flag %q default = %q; want %q", c.flag, f.DefValue, c.want)
		}
	}

	for name := range flagKeys {
		if fs.Lookup(name) == nil {
			t.Errorf("config key flag %q not registered", name)
		}
	}
}

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:      binder,
		Defaults: defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pipeline != defaults.Pipeline {
		t.Errorf("Pipeline = %+v; want %+v", cfg.Pipeline, defaults.Pipeline)
	}

	if cfg.Batch.Workers != defaults.Batch.Workers {
		t.Errorf("Batch.Workers = %d; want %d", cfg.Batch.Workers, defaults.Batch.Workers)
	}

	if cfg.LogLevel != defaults.LogLevel {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, defaults.LogLevel)
	}

	if len(cfg.Directions) != 0 {
		t.Errorf("Directions = %v; want none", cfg.Directions)
	}
}

func TestLoad_FlagOverride(t *testing.T) {
	defaults := DefaultConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs, defaults)

	err := fs.Parse([]string{
		"--pipeline-escape-xml-symbols=false",
		"--batch-workers=8",
		"--log-level=debug",
	})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := Load(LoadOptions{
		Cmd:        &fakeBinder{fs: fs},
		ConfigFile: writeConfig(t, "log_level: warn\n"),
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Pipeline.EscapeXMLSymbols {
		t.Error("Pipeline.EscapeXMLSymbols = true; want false")
	}

	if cfg.Batch.Workers != 8 {
		t.Errorf("Batch.Workers = %d; want 8", cfg.Batch.Workers)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q; want flag value %q", cfg.LogLevel, "debug")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PREPOST_LOG_LEVEL", "warn")
	t.Setenv("PREPOST_RESOURCES_DIR", "/srv/models")
	t.Setenv("PREPOST_PIPELINE_REPLACE_UNICODE_PUNCTUATION", "true")

	cfg, err := Load(LoadOptions{
		Defaults: DefaultConfig(),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "warn")
	}

	if cfg.ResourcesDir != "/srv/models" {
		t.Errorf("ResourcesDir = %q; want %q", cfg.ResourcesDir, "/srv/models")
	}

	if !cfg.Pipeline.ReplaceUnicodePunctuation {
		t.Error("Pipeline.ReplaceUnicodePunctuation = false; want true")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	content := `
log_level: error
resources_dir: /srv/models
pipeline:
  replace_unicode_punctuation: true
batch:
  workers: 16
directions:
  EN-DE:
    truecaser_model: en/truecase.model
    bpe_codes: en-de/codes
    bpe_vocabulary: en-de/vocab.en
    bpe_vocabulary_threshold: 50
  de-en:
    piece_model: de-en/spm.model
    escape_xml_symbols: false
`

	defaults := DefaultConfig()
	binder := newFlagBinder(defaults)

	cfg, err := Load(LoadOptions{
		Cmd:        binder,
		ConfigFile: writeConfig(t, content),
		Defaults:   defaults,
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q; want %q", cfg.LogLevel, "error")
	}

	if cfg.Batch.Workers != 16 {
		t.Errorf("Batch.Workers = %d; want 16", cfg.Batch.Workers)
	}

	if !cfg.Pipeline.ReplaceUnicodePunctuation {
		t.Error("Pipeline.ReplaceUnicodePunctuation = false; want true from file")
	}

	if !cfg.Pipeline.EscapeXMLSymbols {
		t.Error("Pipeline.EscapeXMLSymbols = false; want default true")
	}

	enDe, ok := cfg.Directions["en-de"]
	if !ok {
		t.Fatalf("direction en-de missing from %v", cfg.Directions)
	}

	if enDe.BPECodes != "en-de/codes" || enDe.BPEVocabularyThreshold != 50 {
		t.Errorf("en-de = %+v", enDe)
	}

	if enDe.EscapeXMLSymbols != nil {
		t.Errorf("en-de EscapeXMLSymbols = %v; want unset", *enDe.EscapeXMLSymbols)
	}

	deEn := cfg.Directions["de-en"]
	if deEn.PieceModel != "de-en/spm.model" {
		t.Errorf("de-en PieceModel = %q", deEn.PieceModel)
	}

	if deEn.EscapeXMLSymbols == nil || *deEn.EscapeXMLSymbols {
		t.Error("de-en EscapeXMLSymbols override not decoded as false")
	}
}

func TestLoad_InvalidSubword(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: writeConfig(t, "directions:\n  en-de:\n    subword: wordpiece\n"),
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid subword kind")
	}
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "bad.yaml")
	// Write invalid YAML
	err := os.WriteFile(cfgFile, []byte(":\t:bad yaml:::"), 0o644)
	if err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err = Load(LoadOptions{
		ConfigFile: cfgFile,
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for invalid config file")
	}
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load(LoadOptions{
		ConfigFile: "/nonexistent/path/prepost.yaml",
		Defaults:   DefaultConfig(),
	})
	if err == nil {
		t.Error("Load() = nil; want error for missing explicit config file")
	}
}
