package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage remembered answers",
	}

	cmd.AddCommand(c.cacheClearCommand(g))
	cmd.AddCommand(c.cachePathCommand(g))

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget all remembered answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(g.dir)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}

			count, err := clearAnswers(cmd.Context(), dir)
			if err != nil {
				return err
			}

			if count == 0 {
				printInfo("No remembered answers")
				return nil
			}
			printSuccess("Cleared %d remembered answers", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the directory holding remembered answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := targetDir(g.dir)
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
