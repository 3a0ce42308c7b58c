package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dawprobe/internal/daw"
	"dawprobe/internal/dawparse"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "formats",
		Short:       "List supported project formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := [][]string{
				{string(daw.FormatAbleton), dawparse.ExtAbleton, "Ableton Live set (zip-packed XML)"},
				{string(daw.FormatFLStudio), dawparse.ExtFLStudio, "FL Studio project (binary event stream)"},
				{string(daw.FormatLogicPro), dawparse.ExtLogicPro, "Logic Pro bundle (directory of XML documents)"},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Format", "Extension", "Container"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
