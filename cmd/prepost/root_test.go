package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/example/go-nmt-prepost/internal/config"
	"github.com/example/go-nmt-prepost/internal/pipeline"
	"github.com/example/go-nmt-prepost/internal/testutil"
)

const testCodes = "#version: 0.2\nl o\nlo w</w>\ne r</w>\n"

func TestNewRootCmd_HasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"preprocess", "postprocess", "directions", "doctor"}
	for _, name := range want {
		found := false

		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}

		if !found {
			t.Errorf("expected subcommand %q not found in root", name)
		}
	}
}

func TestNewRootCmd_HasPersistentConfigFlag(t *testing.T) {
	root := NewRootCmd()
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("expected --config persistent flag to be registered")
	}
}

func TestSetupLogger_DoesNotPanic(_ *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		setupLogger(level)
	}
}

func TestSetupLogger_InvalidLevelFallsBackToInfo(_ *testing.T) {
	// Should not panic on invalid level.
	setupLogger("not-a-level")
}

func TestRequireConfig_FailsWithoutDirections(t *testing.T) {
	orig := activeCfg

	t.Cleanup(func() { activeCfg = orig })

	activeCfg = config.DefaultConfig()

	_, err := requireConfig()
	if err == nil {
		t.Fatal("expected error when no direction is configured")
	}
}

// ---------------------------------------------------------------------------
// end-to-end commands
// ---------------------------------------------------------------------------

// writeTestConfig writes BPE codes and a config file with one en-fr
// direction and returns the config path.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	testutil.WriteFile(t, dir, "en-fr/codes", testCodes)

	return testutil.WriteFile(t, dir, "prepost.yaml", "resources_dir: "+dir+"\n"+
		"directions:\n"+
		"  en-fr:\n"+
		"    bpe_codes: en-fr/codes\n")
}

func runRoot(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	orig := activeCfg
	t.Cleanup(func() { activeCfg = orig })

	root := NewRootCmd()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()

	return out.String(), err
}

type ctxKey struct{}

func TestRunKeepingBlank_ClosureBatchFunc(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{ConfigFile: writeTestConfig(t), Defaults: config.DefaultConfig()})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	p, err := buildPipeline(cfg, nil)
	if err != nil {
		t.Fatalf("build pipeline: %v", err)
	}

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")

	var seen any
	var calls int
	run := func(ctx context.Context, p *pipeline.Pipeline, in []string, direction string) ([]string, error) {
		calls++
		seen = ctx.Value(ctxKey{})
		return preprocessBatch(ctx, p, in, direction)
	}

	out, err := runKeepingBlank(ctx, p, run, []string{"low", "", "lower"}, "en-fr")
	if err != nil {
		t.Fatalf("runKeepingBlank: %v", err)
	}

	if calls != 1 || seen != "req-1" {
		t.Errorf("calls = %d, ctx value = %v", calls, seen)
	}

	want := []string{"low", "", "lo@@ w@@ er"}
	if strings.Join(out, "|") != strings.Join(want, "|") {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestPreprocessCmd_Sentence(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runRoot(t, "", "--config", cfgPath, "preprocess", "--direction", "en-fr", "--sentence", "lower low.")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}

	if out != "lo@@ w@@ er low .\n" {
		t.Errorf("output = %q", out)
	}
}

func TestPreprocessCmd_LinesKeepBlank(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runRoot(t, "low\n\nlower\n", "--config", cfgPath, "preprocess", "--direction", "en-fr")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}

	if out != "low\n\nlo@@ w@@ er\n" {
		t.Errorf("output = %q", out)
	}
}

func TestPreprocessCmd_SplitSentences(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runRoot(t, "low. lower.\n", "--config", cfgPath, "preprocess", "--direction", "en-fr", "--split-sentences")
	if err != nil {
		t.Fatalf("preprocess: %v", err)
	}

	if out != "low .\nlo@@ w@@ er .\n" {
		t.Errorf("output = %q", out)
	}
}

func TestPostprocessCmd_JSON(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runRoot(t, `["lo@@ w@@ er low .", "a &amp; b"]`, "--config", cfgPath, "postprocess", "--direction", "en-fr", "--json")
	if err != nil {
		t.Fatalf("postprocess: %v", err)
	}

	if out != `["lower low.","a & b"]`+"\n" {
		t.Errorf("output = %q", out)
	}
}

func TestPreprocessCmd_UnknownDirection(t *testing.T) {
	cfgPath := writeTestConfig(t)

	_, err := runRoot(t, "", "--config", cfgPath, "preprocess", "--direction", "en-xx", "--sentence", "low")
	if err == nil || !strings.Contains(err.Error(), "unknown direction") {
		t.Fatalf("expected unknown direction error, got %v", err)
	}
}

func TestDirectionsCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runRoot(t, "", "--config", cfgPath, "directions")
	if err != nil {
		t.Fatalf("directions: %v", err)
	}

	if !strings.Contains(out, "en-fr") || !strings.Contains(out, "bpe") {
		t.Errorf("output should list en-fr with bpe; got:\n%s", out)
	}
}

func TestDoctorCmd(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runRoot(t, "", "--config", cfgPath, "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}

	if !strings.Contains(out, "doctor checks passed") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func TestDecodeJSONStrings(t *testing.T) {
	got, err := decodeJSONStrings(`["a", "b \"c\""]`)
	if err != nil {
		t.Fatalf("decodeJSONStrings: %v", err)
	}

	if len(got) != 2 || got[0] != "a" || got[1] != `b "c"` {
		t.Errorf("decodeJSONStrings = %q", got)
	}

	for _, bad := range []string{`{"a": 1}`, `["a", 1]`, `[`, ``} {
		if _, err := decodeJSONStrings(bad); err == nil {
			t.Errorf("decodeJSONStrings(%q): expected error", bad)
		}
	}
}

func TestEncodeJSONStrings(t *testing.T) {
	got, err := encodeJSONStrings([]string{"a", `b "c"`})
	if err != nil {
		t.Fatalf("encodeJSONStrings: %v", err)
	}

	if got != `["a","b \"c\""]` {
		t.Errorf("encodeJSONStrings = %s", got)
	}

	empty, err := encodeJSONStrings(nil)
	if err != nil || empty != "[]" {
		t.Errorf("encodeJSONStrings(nil) = %q, %v", empty, err)
	}
}
