package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"filesorter/internal/category"
	"filesorter/internal/organizer"
)

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <dir>",
		Short: "Show where each file would go without moving anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			org, err := ctx.openOrganizer(args[0])
			if err != nil {
				return err
			}
			defer org.Close()

			preview, err := org.Preview(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if preview.Total == 0 {
				fmt.Fprintln(out, paint(statusInfo, "No files to organize", shouldColorize(out)))
				return nil
			}
			fmt.Fprintln(out, renderPreview(preview))
			return nil
		},
	}
}

// renderPreview lists up to maxPreviewFiles per category, then a count of the
// rest.
func renderPreview(preview *organizer.Preview) string {
	var rows [][]string
	var total uint64
	for _, name := range preview.Categories {
		files := preview.Files[name]
		var size uint64
		for _, f := range files {
			if f.Size > 0 {
				size += uint64(f.Size)
			}
		}
		total += size
		label := fmt.Sprintf("%s (%d, %s)", category.DisplayName(name), len(files), humanize.Bytes(size))
		for i, f := range files {
			if i == maxPreviewFiles {
				rows = append(rows, []string{"", fmt.Sprintf("... and %d more files", len(files)-maxPreviewFiles), ""})
				break
			}
			first := ""
			if i == 0 {
				first = label
			}
			rows = append(rows, []string{first, f.Name, humanize.Bytes(uint64(max(f.Size, 0)))})
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Preview of %s\n", preview.Target)
	b.WriteString(renderTable([]string{"Category", "File", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
	fmt.Fprintf(&b, "\n%d files, %s, %d categories", preview.Total, humanize.Bytes(total), len(preview.Categories))
	return b.String()
}
