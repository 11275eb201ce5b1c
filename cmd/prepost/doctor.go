package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-nmt-prepost/internal/doctor"
	"github.com/example/go-nmt-prepost/internal/pipeline"
	"github.com/example/go-nmt-prepost/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configured model resources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := activeCfg
			out := cmd.OutOrStdout()

			dcfg := doctor.Config{
				Resources:         doctor.Resources(cfg),
				InspectPieceModel: tokenizer.Inspect,
				BuildRegistry: func() error {
					_, err := pipeline.NewRegistry(cfg, pipeline.WithRegistryLogger(slog.Default()))
					return err
				},
			}

			result := doctor.Run(dcfg, out)

			if result.Failed() {
				for _, f := range result.Failures() {
					// #nosec G705 -- Writes plain diagnostic text to stderr for CLI output, not HTML rendering.
					fmt.Fprintf(os.Stderr, "FAIL: %s\n", f)
				}

				return errors.New("doctor checks failed")
			}

			_, _ = fmt.Fprintln(out, "doctor checks passed")

			return nil
		},
	}

	return cmd
}
