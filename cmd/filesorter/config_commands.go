package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"filesorter/internal/category"
	"filesorter/internal/config"
	"filesorter/internal/ledger"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the filesorter configuration",
	}
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())
	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a sample configuration with example categories",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := resolveInitPath(targetPath)
			if err != nil {
				return err
			}
			if !overwrite {
				_, statErr := os.Stat(target)
				switch {
				case statErr == nil:
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				case !errors.Is(statErr, fs.ErrNotExist):
					return fmt.Errorf("check config path: %w", statErr)
				}
			}
			if err := config.CreateSample(target); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Add custom categories under [categories] to extend the built-in rules.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}

func resolveInitPath(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return path, nil
	}
	path, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Check the configuration and the custom categories it defines",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(strings.TrimSpace(ctx.configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			rules := category.WithMiscellaneous(cfg.Organizer.MiscCategory, nil)
			rows := make([][]string, 0, len(cfg.Categories))
			for _, name := range cfg.CategoryNames() {
				overrides, err := rules.AddCategory(name, cfg.Categories[name])
				if err != nil {
					return fmt.Errorf("categories.%s: %w", name, err)
				}
				rows = append(rows, []string{name, strings.Join(cfg.Categories[name], " "), describeOverrides(overrides)})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			source := path
			if !exists {
				source = path + " (not found, defaults used)"
			}
			fmt.Fprintln(out, renderStatusLine("Config path", statusInfo, source, colorize))
			fmt.Fprintln(out, renderStatusLine("Move logs", statusOK, cfg.Paths.LogDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Undo ledger", statusOK, ledger.DatabasePath(cfg), colorize))
			fmt.Fprintln(out, renderStatusLine("Fallback category", statusInfo, rules.Fallback(), colorize))
			renderCustomCategories(out, rows)
			fmt.Fprintln(out, paint(statusOK, "Configuration valid", colorize))
			return nil
		},
	}
}

func renderCustomCategories(out io.Writer, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No custom categories; built-in rules apply.")
		return
	}
	fmt.Fprintln(out, renderTable([]string{"Custom category", "Extensions", "Takes over"}, rows, nil))
}

func describeOverrides(overrides []category.Override) string {
	if len(overrides) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(overrides))
	for _, o := range overrides {
		parts = append(parts, fmt.Sprintf("%s from %s", o.Extension, o.Previous))
	}
	return strings.Join(parts, ", ")
}
