package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fileforge/internal/api"
	"fileforge/internal/formats"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "formats",
		Short:       "List supported format categories",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := api.FromCategories(formats.NewRegistry().Categories())
			if jsonOut {
				return writeJSON(cmd, api.FormatsResponse{Categories: categories})
			}

			rows := make([][]string, 0, len(categories))
			for _, category := range categories {
				rows = append(rows, []string{
					category.DisplayName,
					strings.Join(category.Inputs, ", "),
					strings.Join(category.Outputs, ", "),
				})
			}
			headers := []string{"Category", "Inputs", "Outputs"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the catalog as JSON")
	return cmd
}
