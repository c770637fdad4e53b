package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"fileforge/internal/api"
	"fileforge/internal/ipc"
	"fileforge/internal/queue"
)

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var outputFormat string
	var tier string
	var wait bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "submit <file>",
		Short: "Submit a file for conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(outputFormat)
			if target == "" {
				return errors.New("output format is required (use --to)")
			}

			baseURL, err := ctx.apiBaseURL()
			if err != nil {
				return err
			}

			var submission api.Submission
			if err := uploadFile(baseURL, args[0], target, strings.TrimSpace(tier), &submission); err != nil {
				return err
			}

			if jsonOut && !wait {
				return writeJSON(cmd, submission)
			}

			stdout := cmd.OutOrStdout()
			if !jsonOut {
				fmt.Fprintf(stdout, "Job %s accepted: %s -> %s (%s tier)\n",
					submission.JobKey, submission.DetectedInputFormat, submission.OutputFormat, submission.QualityTier)
				if submission.EstimatedCompletion != "" {
					fmt.Fprintf(stdout, "Estimated completion: %s\n", submission.EstimatedCompletion)
				}
				fmt.Fprintf(stdout, "Track with: fileforge show %s\n", submission.JobKey)
			}
			if !wait {
				return nil
			}

			job, err := waitForTerminal(ctx, cmd, submission.JobKey, jsonOut)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, job)
			}
			if job.Status == string(queue.StatusFailed) {
				return fmt.Errorf("job %s failed: %s", job.JobKey, job.ErrorMessage)
			}
			fmt.Fprintf(stdout, "Job %s completed\n", job.JobKey)
			for _, artifact := range job.Artifacts {
				fmt.Fprintf(stdout, "  %s (%d bytes) %s\n", artifact.Name, artifact.Size, artifact.DownloadPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFormat, "to", "", "Target output format (required)")
	cmd.Flags().StringVar(&tier, "tier", "", "Quality tier (economy, standard, premium, enterprise)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Block until the job reaches a terminal state")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the result as JSON")
	return cmd
}

// waitForTerminal polls job state over IPC until completion, failure, or
// context cancellation.
func waitForTerminal(ctx *commandContext, cmd *cobra.Command, jobKey string, quiet bool) (*api.Job, error) {
	stdout := cmd.OutOrStdout()
	lastPercent := -1
	for {
		select {
		case <-cmd.Context().Done():
			return nil, cmd.Context().Err()
		case <-time.After(500 * time.Millisecond):
		}

		var job *api.Job
		err := ctx.withClient(func(client *ipc.Client) error {
			resp, describeErr := client.Describe(jobKey)
			if describeErr != nil {
				return describeErr
			}
			job = &resp.Job
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !quiet && job.Progress.Percent != lastPercent {
			lastPercent = job.Progress.Percent
			message := job.Progress.Message
			if message == "" {
				message = job.Status
			}
			fmt.Fprintf(stdout, "  %3d%% %s\n", job.Progress.Percent, message)
		}
		if status, ok := queue.ParseStatus(job.Status); ok && queue.IsTerminal(status) {
			return job, nil
		}
	}
}
