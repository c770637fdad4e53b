package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"fileforge/internal/api"
	"fileforge/internal/quality"
)

func newQualityCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "quality",
		Short:       "List quality tiers and their processing profiles",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tiers := api.FromProfiles(quality.Profiles())
			if jsonOut {
				return writeJSON(cmd, api.QualityResponse{Tiers: tiers, Default: quality.DefaultTier})
			}

			rows := make([][]string, 0, len(tiers))
			for _, tier := range tiers {
				name := tier.Tier
				if name == quality.DefaultTier {
					name += " (default)"
				}
				rows = append(rows, []string{
					name,
					tier.Priority,
					strconv.Itoa(tier.QualityPercent) + "%",
					fmt.Sprintf("%.1fx", tier.CostMultiplier),
					yesNo(tier.FullAuditDetail),
				})
			}
			headers := []string{"Tier", "Priority", "Quality", "Cost", "Full Audit"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit tiers as JSON")
	return cmd
}
