package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"dawprobe/internal/catalog"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, runs)
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				state := "interrupted"
				if run.Completed() {
					state = "completed"
				}
				rows = append(rows, []string{
					run.ID,
					run.Root,
					run.StartedAt.Local().Format(time.DateTime),
					colorizeState(state, colorize),
					strconv.Itoa(run.Succeeded),
					strconv.Itoa(run.Failed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Root", "Started", "State", "OK", "Failed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")

	cmd.AddCommand(newRunsShowCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the per-file results of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := catalog.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			results, err := store.ResultsForRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no results for run %s", args[0])
			}
			if asJSON {
				return writeJSON(cmd, results)
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			rows := make([][]string, 0, len(results))
			for _, res := range results {
				detail := res.Document
				if res.Status == catalog.StatusFailed {
					detail = res.Error
				}
				rows = append(rows, []string{res.Path, res.Format, colorizeState(string(res.Status), colorize), detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Path", "Format", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}
