package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"filesorter/internal/category"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the effective category rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := ctx.openOrganizer("")
			if err != nil {
				return err
			}
			defer org.Close()

			rules := org.Rules()
			var rows [][]string
			for _, c := range rules.Categories() {
				rows = append(rows, []string{category.DisplayName(c.Name), strings.Join(c.Extensions, " ")})
			}
			rows = append(rows, []string{category.DisplayName(rules.Fallback()), "(everything else)"})
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Category", "Extensions"}, rows, nil))
			return nil
		},
	}
}
