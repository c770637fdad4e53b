package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fileforge/internal/ipc"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var jobKey string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream job lifecycle events",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			var since uint64
			for {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				var resp *ipc.WatchResponse
				err := ctx.withClient(func(client *ipc.Client) error {
					var watchErr error
					resp, watchErr = client.Watch(ipc.WatchRequest{
						Since:      since,
						Limit:      200,
						WaitMillis: 25000,
					})
					return watchErr
				})
				if err != nil {
					return err
				}
				for _, event := range resp.Events {
					if jobKey != "" && event.JobKey != jobKey {
						continue
					}
					if jsonOut {
						if err := writeJSON(cmd, event); err != nil {
							return err
						}
						continue
					}
					line := fmt.Sprintf("%s %s %s %d%%", event.Timestamp, event.JobKey, event.Status, event.Progress)
					if event.Message != "" {
						line += " " + event.Message
					}
					if event.Error != "" {
						line += " error=" + event.Error
					}
					fmt.Fprintln(stdout, line)
				}
				since = resp.Next
			}
		},
	}

	cmd.Flags().StringVar(&jobKey, "job", "", "Only show events for one job key")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit events as JSON lines")
	return cmd
}
