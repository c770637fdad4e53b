package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fileforge/internal/ipc"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var jobKey string
	var page int
	var pageSize int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the append-only audit ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Audit(ipc.AuditRequest{
					Page:     page,
					PageSize: pageSize,
					JobKey:   jobKey,
				})
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Entries) == 0 {
					fmt.Fprintln(stdout, "No audit entries found")
					return nil
				}
				rows := make([][]string, 0, len(resp.Entries))
				for _, entry := range resp.Entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.Timestamp,
						entry.JobKey,
						entry.EventType,
						entry.Payload,
					})
				}
				headers := []string{"ID", "Timestamp", "Job", "Event", "Detail"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}
				fmt.Fprintln(stdout, renderTable(headers, rows, aligns))
				if jobKey == "" && resp.Total > int64(len(resp.Entries)) {
					fmt.Fprintf(stdout, "Showing %d of %d entries (page %d)\n", len(resp.Entries), resp.Total, page)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&jobKey, "job", "", "Show the full trail for one job key")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 50, "Entries per page")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit entries as JSON")
	return cmd
}
