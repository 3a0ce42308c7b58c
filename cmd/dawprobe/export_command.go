package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"dawprobe/internal/dawparse"
	"dawprobe/internal/smfexport"
	"dawprobe/internal/textutil"
)

func newExportMIDICommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export-midi <project>",
		Short: "Render a project's extracted MIDI tracks as a .mid file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			target := strings.TrimSpace(outputPath)
			if target == "" {
				target = textutil.Stem(args[0]) + ".mid"
			}
			if err := smfexport.WriteFile(target, meta); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination .mid path (default: <project stem>.mid)")
	return cmd
}
