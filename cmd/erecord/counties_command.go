package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"erecord/internal/county"
)

func newCountiesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "counties",
		Short:       "List the supported recording jurisdictions",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := county.Builtin()

			headers := []string{"ID", "County", "State", "Deed Type", "Satisfaction Type", "Grantee", "Indexed Fields"}
			var rows [][]string
			for _, profile := range registry.All() {
				rows = append(rows, []string{
					profile.ID,
					profile.Name,
					profile.State,
					profile.DocType(county.KindDeed),
					profile.DocType(county.KindMortgageSatisfaction),
					string(profile.GranteeRule),
					fieldSummary(profile.FieldsFor(county.KindDeed)),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			return nil
		},
	}
}

func fieldSummary(fields county.FieldSet) string {
	var parts []string
	if fields.ExecutionDate {
		parts = append(parts, "execution date")
	}
	if fields.LegalDescription {
		parts = append(parts, "legal description")
	}
	if fields.ReferenceInfo {
		parts = append(parts, "references")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
