package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dawprobe/internal/daw"
	"dawprobe/internal/dawparse"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var detailed bool
	var outputPath string

	cmd := &cobra.Command{
		Use:   "extract <project>",
		Short: "Extract metadata from one project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			parser, err := dawparse.NewParser(logger, args[0])
			if err != nil {
				return err
			}
			defer parser.Close()

			meta, err := parser.Parse()
			if err != nil {
				return err
			}

			var doc daw.Document
			if detailed || cfg.Extraction.Detailed {
				doc = daw.Detailed(meta)
			} else {
				doc = daw.Summary(meta)
			}

			if outputPath != "" {
				if err := doc.Save(outputPath); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
				return nil
			}
			return writeJSON(cmd, doc)
		},
	}

	cmd.Flags().BoolVar(&detailed, "detailed", false, "Include full note, clip, and device listings")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the document to a file instead of stdout")
	return cmd
}
