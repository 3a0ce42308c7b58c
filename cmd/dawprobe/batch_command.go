package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dawprobe/internal/batch"
	"dawprobe/internal/catalog"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var extensions []string
	var detailed bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Extract every project file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(extensions) > 0 {
				cfg.Extraction.Extensions = extensions
			}
			if detailed {
				cfg.Extraction.Detailed = true
			}
			if outputDir != "" {
				cfg.Paths.OutputDir = outputDir
			}

			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runner := batch.NewRunner(cfg, ctx.ensureLogger(), store)
			summary, err := runner.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s: %d extracted, %d failed (of %d)\n",
				summary.RunID, summary.Succeeded, summary.Failed, summary.Total)
			fmt.Fprintf(out, "Summary: %s\n", summary.SummaryPath)
			for _, res := range summary.Results {
				if res.Failed() {
					fmt.Fprintf(out, "  failed: %s: %s\n", res.Path, res.Error)
				}
			}

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&extensions, "extensions", nil, "Extensions to scan for (default: all supported)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "Write detailed documents")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Override the configured output directory")
	return cmd
}
