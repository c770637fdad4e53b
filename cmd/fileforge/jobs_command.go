package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fileforge/internal/api"
	"fileforge/internal/ipc"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var statuses []string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List conversion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Jobs(statuses)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				if len(resp.Jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No jobs found")
					return nil
				}
				rows := buildJobRows(resp.Jobs)
				headers := []string{"Key", "Source", "Conversion", "Tier", "Status", "Progress", "Updated"}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Filter by status (queued, processing, completed, failed)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit jobs as JSON")
	return cmd
}

func buildJobRows(jobs []api.Job) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			job.JobKey,
			job.SourceName,
			job.InputFormat + " -> " + job.OutputFormat,
			job.QualityTier,
			job.Status,
			strconv.Itoa(job.Progress.Percent) + "%",
			job.UpdatedAt,
		})
	}
	return rows
}
