package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fileforge/internal/api"
	"fileforge/internal/ipc"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <job-key>",
		Short: "Show details for one conversion job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobKey := strings.TrimSpace(args[0])
			if jobKey == "" {
				return fmt.Errorf("job key is required")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(jobKey)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}
				renderJobDetail(cmd, resp.Job)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the job as JSON")
	return cmd
}

func renderJobDetail(cmd *cobra.Command, job api.Job) {
	stdout := cmd.OutOrStdout()
	colorize := shouldColorize(stdout)

	for _, line := range renderSectionHeader("Job "+job.JobKey, colorize) {
		fmt.Fprintln(stdout, line)
	}
	fmt.Fprintln(stdout, renderStatusLine("Source", statusInfo, job.SourceName, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Conversion", statusInfo, job.InputFormat+" -> "+job.OutputFormat, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Tier", statusInfo, job.QualityTier, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Status", jobStatusKind(job.Status), job.Status, colorize))

	progress := fmt.Sprintf("%d%%", job.Progress.Percent)
	if job.Progress.Message != "" {
		progress += " (" + job.Progress.Message + ")"
	}
	fmt.Fprintln(stdout, renderStatusLine("Progress", statusInfo, progress, colorize))

	if job.CreatedAt != "" {
		fmt.Fprintln(stdout, renderStatusLine("Created", statusInfo, job.CreatedAt, colorize))
	}
	if job.StartedAt != "" {
		fmt.Fprintln(stdout, renderStatusLine("Started", statusInfo, job.StartedAt, colorize))
	}
	if job.CompletedAt != "" {
		fmt.Fprintln(stdout, renderStatusLine("Completed", statusInfo, job.CompletedAt, colorize))
	} else if job.EstimatedCompletion != "" {
		fmt.Fprintln(stdout, renderStatusLine("Estimated", statusInfo, job.EstimatedCompletion, colorize))
	}
	if job.ErrorMessage != "" {
		fmt.Fprintln(stdout, renderStatusLine("Error", statusError, job.ErrorMessage, colorize))
	}

	if len(job.Artifacts) == 0 {
		return
	}
	fmt.Fprintln(stdout)
	for _, line := range renderSectionHeader("Artifacts", colorize) {
		fmt.Fprintln(stdout, line)
	}
	rows := make([][]string, 0, len(job.Artifacts))
	for _, artifact := range job.Artifacts {
		rows = append(rows, []string{
			artifact.Name,
			artifact.Format,
			fmt.Sprintf("%d", artifact.Size),
			artifact.DownloadPath,
		})
	}
	headers := []string{"Name", "Format", "Bytes", "Download"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}
	fmt.Fprintln(stdout, renderTable(headers, rows, aligns))
}

func jobStatusKind(status string) statusKind {
	switch status {
	case "completed":
		return statusOK
	case "failed":
		return statusError
	case "processing":
		return statusInfo
	default:
		return statusWarn
	}
}
