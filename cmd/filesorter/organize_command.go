package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filesorter/internal/category"
	"filesorter/internal/faults"
	"filesorter/internal/organizer"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "organize <dir>",
		Short: "Move files into category folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrganize(cmd, ctx, args[0], categories)
		},
	}
	cmd.Flags().StringArrayVar(&categories, "category", nil, "Extra category as Name=.ext1,.ext2 (repeatable)")
	return cmd
}

func runOrganize(cmd *cobra.Command, ctx *commandContext, target string, categories []string) error {
	org, err := ctx.openOrganizer(target)
	if err != nil {
		return err
	}
	defer org.Close()

	for _, raw := range categories {
		name, exts, err := parseCategoryFlag(raw)
		if err != nil {
			return err
		}
		if err := org.AddCustomCategory(name, exts); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	preview, err := org.Preview(cmd.Context())
	if err != nil {
		return err
	}
	if preview.Total == 0 {
		fmt.Fprintln(out, paint(statusInfo, "No files to organize", colorize))
		return nil
	}
	fmt.Fprintln(out, renderPreview(preview))
	question := fmt.Sprintf("Move %d files into %d category folders?", preview.Total, len(preview.Categories))
	if !ctx.assumeYes && !confirm(ctx.stdin, out, question) {
		fmt.Fprintln(out, "Canceled; no files were moved")
		return nil
	}

	bar := newProgressBar(out, preview.Total)
	result, err := org.Organize(cmd.Context(), organizer.OrganizeOptions{
		Progress: func(p organizer.Progress) {
			if bar == nil {
				return
			}
			bar.Describe(p.Category)
			_ = bar.Add(1)
		},
	})
	if bar != nil {
		_ = bar.Finish()
	}
	if result != nil {
		renderOrganizeResult(out, result, colorize)
	}
	if err != nil {
		return err
	}
	switch {
	case result.Canceled:
		return context.Canceled
	case result.Outcome == organizer.OutcomeFailed:
		return fmt.Errorf("no files were moved (%d failures)", result.Failed)
	}
	return nil
}

func renderOrganizeResult(out io.Writer, result *organizer.OrganizeResult, colorize bool) {
	if result.Outcome == organizer.OutcomeNothingToDo {
		fmt.Fprintln(out, paint(statusInfo, result.Message, colorize))
		return
	}
	names := make([]string, 0, len(result.Counts))
	for name := range result.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		count := result.Counts[name]
		rows = append(rows, []string{category.DisplayName(name), strconv.Itoa(count.Moved), strconv.Itoa(count.Failed)})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Category", "Moved", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
		"Total", strconv.Itoa(result.Moved), strconv.Itoa(result.Failed),
	))
	fmt.Fprintln(out, summaryLine(result.Success, result.Failed > 0, result.Message, colorize))
	if result.Canceled {
		fmt.Fprintln(out, paint(statusWarn, fmt.Sprintf("Interrupted after %d of %d files", len(result.Records), result.Total), colorize))
	}
	printErrors(out, result.Errors, result.Failed)
}

// printErrors lists at most maxErrorLines details out of total failures.
func printErrors(out io.Writer, details []string, total int) {
	for i, detail := range details {
		if i == maxErrorLines {
			break
		}
		fmt.Fprintf(out, "  - %s\n", detail)
	}
	if total > maxErrorLines {
		fmt.Fprintf(out, "  ... and %d more errors\n", total-maxErrorLines)
	}
}

// parseCategoryFlag splits "Fonts=.ttf,.otf" into a name and its extensions.
func parseCategoryFlag(raw string) (string, []string, error) {
	name, list, ok := strings.Cut(raw, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", nil, faults.Wrap(faults.ErrInvalidCategory, "cli", "parse category",
			fmt.Sprintf("expected Name=.ext1,.ext2, got %q", raw), nil)
	}
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			exts = append(exts, ext)
		}
	}
	if len(exts) == 0 {
		return "", nil, faults.Wrap(faults.ErrInvalidCategory, "cli", "parse category",
			fmt.Sprintf("category %q lists no extensions", name), errors.New("empty extension list"))
	}
	return name, exts, nil
}
