package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(ctx *commandContext) *cobra.Command {
	var cliTarget string

	rootCmd := &cobra.Command{
		Use:           "filesorter",
		Short:         "Sort a directory's files into category folders",
		Long:          "filesorter moves the top-level files of a directory into folders named after their type (Images, Documents, ...) and can undo the last run.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cliTarget == "" {
				return cmd.Help()
			}
			ctx.assumeYes = true
			return runOrganize(cmd, ctx, cliTarget, nil)
		},
	}

	rootCmd.Flags().StringVar(&cliTarget, "cli", "", "Organize the directory non-interactively and print a summary")
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&ctx.assumeYes, "yes", "y", false, "Skip confirmation prompts")

	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newOrganizeCommand(ctx))
	rootCmd.AddCommand(newUndoCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newLedgerCommand(ctx))
	rootCmd.AddCommand(newLogsCommand(ctx))
	rootCmd.AddCommand(newCategoriesCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
