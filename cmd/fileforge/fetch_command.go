package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fileforge/internal/ipc"
)

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "fetch <job-key> [artifact]",
		Short: "Download artifacts for a completed job",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jobKey := strings.TrimSpace(args[0])
			var artifactFilter string
			if len(args) == 2 {
				artifactFilter = strings.TrimSpace(args[1])
			}

			var names []string
			err := ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Describe(jobKey)
				if err != nil {
					return err
				}
				if resp.Job.Status != "completed" {
					return fmt.Errorf("job %s is %s; artifacts are only available for completed jobs", jobKey, resp.Job.Status)
				}
				for _, artifact := range resp.Job.Artifacts {
					if artifactFilter != "" && artifact.Name != artifactFilter {
						continue
					}
					names = append(names, artifact.Name)
				}
				return nil
			})
			if err != nil {
				return err
			}
			if len(names) == 0 {
				if artifactFilter != "" {
					return fmt.Errorf("job %s has no artifact named %s", jobKey, artifactFilter)
				}
				return fmt.Errorf("job %s has no artifacts", jobKey)
			}

			baseURL, err := ctx.apiBaseURL()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			for _, name := range names {
				dest := filepath.Join(destDir, name)
				written, err := downloadArtifact(baseURL, jobKey, name, dest)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Saved %s (%d bytes)\n", dest, written)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&destDir, "dest", "d", ".", "Destination directory for downloaded artifacts")
	return cmd
}
