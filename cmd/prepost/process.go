package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/example/go-nmt-prepost/internal/config"
	"github.com/example/go-nmt-prepost/internal/pipeline"
	textpkg "github.com/example/go-nmt-prepost/internal/text"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// batchFunc runs PreprocessBatch or PostprocessBatch of p.
type batchFunc func(ctx context.Context, p *pipeline.Pipeline, in []string, direction string) ([]string, error)

func preprocessBatch(ctx context.Context, p *pipeline.Pipeline, in []string, direction string) ([]string, error) {
	return p.PreprocessBatch(ctx, in, direction)
}

func postprocessBatch(ctx context.Context, p *pipeline.Pipeline, in []string, direction string) ([]string, error) {
	return p.PostprocessBatch(ctx, in, direction)
}

type processFlags struct {
	direction      string
	sentence       string
	jsonIO         bool
	splitSentences bool
	printMetrics   bool
}

func newPreprocessCmd() *cobra.Command {
	return newProcessCmd(
		"preprocess",
		"Turn raw sentences into model input",
		preprocessBatch,
	)
}

func newPostprocessCmd() *cobra.Command {
	return newProcessCmd(
		"postprocess",
		"Turn model output back into plain text",
		postprocessBatch,
	)
}

func newProcessCmd(use, short string, run batchFunc) *cobra.Command {
	var f processFlags

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			metricsReg := prometheus.NewRegistry()
			p, err := buildPipeline(cfg, pipeline.NewMetrics(metricsReg))
			if err != nil {
				return err
			}

			err = processInput(cmd.Context(), p, run, f, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if f.printMetrics {
				return writeMetrics(metricsReg, cmd.ErrOrStderr())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.direction, "direction", "", "Translation direction, e.g. en-de")
	cmd.Flags().StringVar(&f.sentence, "sentence", "", "Single input (if empty, read one per line from stdin)")
	cmd.Flags().BoolVar(&f.jsonIO, "json", false, "Read a JSON array of strings from stdin and write a JSON array")
	cmd.Flags().BoolVar(&f.printMetrics, "print-metrics", false, "Write processing metrics to stderr when done")
	if use == "preprocess" {
		cmd.Flags().BoolVar(&f.splitSentences, "split-sentences", false, "Split every input line into sentences first")
	}
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}

func buildPipeline(cfg config.Config, metrics *pipeline.Metrics) (*pipeline.Pipeline, error) {
	reg, err := pipeline.NewRegistry(cfg, pipeline.WithRegistryLogger(slog.Default()))
	if err != nil {
		return nil, err
	}

	return pipeline.New(reg,
		pipeline.WithLogger(slog.Default()),
		pipeline.WithWorkers(cfg.Batch.Workers),
		pipeline.WithMetrics(metrics),
	), nil
}

func processInput(
	ctx context.Context,
	p *pipeline.Pipeline,
	run batchFunc,
	f processFlags,
	stdin io.Reader,
	stdout io.Writer,
) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch {
	case f.sentence != "":
		out, err := run(ctx, p, expand([]string{f.sentence}, f.splitSentences), f.direction)
		if err != nil {
			return err
		}
		return writeLines(stdout, out)

	case f.jsonIO:
		raw, err := io.ReadAll(stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		in, err := decodeJSONStrings(string(raw))
		if err != nil {
			return err
		}
		out, err := run(ctx, p, expand(in, f.splitSentences), f.direction)
		if err != nil {
			return err
		}
		encoded, err := encodeJSONStrings(out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, encoded)
		return err

	default:
		lines, err := readLines(stdin)
		if err != nil {
			return err
		}
		out, err := runKeepingBlank(ctx, p, run, expand(lines, f.splitSentences), f.direction)
		if err != nil {
			return err
		}
		return writeLines(stdout, out)
	}
}

// expand splits every input into sentences when split is set.
func expand(in []string, split bool) []string {
	if !split {
		return in
	}

	var out []string
	for _, s := range in {
		sentences := textpkg.SplitSentences(s)
		if len(sentences) == 0 {
			out = append(out, s)
			continue
		}
		out = append(out, sentences...)
	}
	return out
}

// runKeepingBlank processes the non-blank lines and leaves blank lines in
// place, so output stays line-aligned with input.
func runKeepingBlank(ctx context.Context, p *pipeline.Pipeline, run batchFunc, lines []string, direction string) ([]string, error) {
	idx := make([]int, 0, len(lines))
	in := make([]string, 0, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		idx = append(idx, i)
		in = append(in, l)
	}

	processed, err := run(ctx, p, in, direction)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(lines))
	for k, i := range idx {
		out[i] = processed[k]
	}
	return out, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	err := sc.Err()
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}

	return lines, nil
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		_, _ = bw.WriteString(l)
		_ = bw.WriteByte('\n')
	}
	return bw.Flush()
}

// decodeJSONStrings parses a JSON array of strings.
func decodeJSONStrings(raw string) ([]string, error) {
	if !gjson.Valid(raw) {
		return nil, errors.New("stdin is not valid JSON")
	}

	doc := gjson.Parse(raw)
	if !doc.IsArray() {
		return nil, errors.New("expected a JSON array of strings")
	}

	items := doc.Array()
	out := make([]string, len(items))
	for i, item := range items {
		if item.Type != gjson.String {
			return nil, fmt.Errorf("element %d is %s, expected a string", i, item.Type)
		}
		out[i] = item.String()
	}

	return out, nil
}

// encodeJSONStrings renders a JSON array of strings.
func encodeJSONStrings(items []string) (string, error) {
	doc := "[]"
	for _, s := range items {
		var err error
		doc, err = sjson.Set(doc, "-1", s)
		if err != nil {
			return "", fmt.Errorf("encode output: %w", err)
		}
	}
	return doc, nil
}

func writeMetrics(g prometheus.Gatherer, w io.Writer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		_, err = expfmt.MetricFamilyToText(w, mf)
		if err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
