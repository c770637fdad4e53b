package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"fileforge/internal/ipc"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate conversion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Stats()
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				stats := resp.Stats

				rows := [][]string{
					{"total", strconv.Itoa(stats.Total)},
					{"queued", strconv.Itoa(stats.Queued)},
					{"processing", strconv.Itoa(stats.Processing)},
					{"completed", strconv.Itoa(stats.Completed)},
					{"failed", strconv.Itoa(stats.Failed)},
				}
				fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

				if stats.AvgProcessingSeconds > 0 {
					fmt.Fprintf(stdout, "Average processing time: %.1fs\n", stats.AvgProcessingSeconds)
				}
				if len(stats.ByPair) > 0 {
					fmt.Fprintln(stdout)
					fmt.Fprintln(stdout, renderTable([]string{"Conversion", "Count"}, sortedCountRows(stats.ByPair), []columnAlignment{alignLeft, alignRight}))
				}
				if len(stats.ByTier) > 0 {
					fmt.Fprintln(stdout)
					fmt.Fprintln(stdout, renderTable([]string{"Tier", "Count"}, sortedCountRows(stats.ByTier), []columnAlignment{alignLeft, alignRight}))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit statistics as JSON")
	return cmd
}

func sortedCountRows(counts map[string]int) [][]string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, []string{key, strconv.Itoa(counts[key])})
	}
	return rows
}
