package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/smfinstall/internal/config"
	"github.com/matzehuels/smfinstall/pkg/buildinfo"
	"github.com/matzehuels/smfinstall/pkg/prompt"
	"github.com/matzehuels/smfinstall/pkg/resolver"
)

// Exit codes returned by [ExitCode].
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUserAbort   = 2
	ExitInterrupted = 130 // Standard shell convention for SIGINT
)

// globalOptions are flags shared by every command.
type globalOptions struct {
	verbose    bool
	dir        string
	configPath string
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var g globalOptions
	var opts installOptions

	root := &cobra.Command{
		Use:   "smfinstall [restart]",
		Short: "Command line installer for SMF",
		Long: `smfinstall downloads and unpacks Simple Machines Forum releases and language packs into a directory.

Answers are remembered in the directory, so an interrupted run resumes where it
stopped. Pass "restart" to forget them and start over.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          restartArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if g.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			c.tally = registerHooks(c.Logger, g.verbose)
			cmd.SetContext(withLogger(cmd.Context(), withRunID(c.Logger)))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.restart = opts.restart || slices.Contains(args, restartArg)
			opts.parallelSet = cmd.Flags().Changed("parallel")
			return c.runInstall(cmd.Context(), g, opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&g.dir, "dir", "d", "", "installation directory (default: current directory)")
	pf.StringVarP(&g.configPath, "config", "c", "", "config file (default: <dir>/"+config.FileName+")")

	f := root.Flags()
	f.BoolVar(&opts.restart, "restart", false, "forget remembered answers before starting")
	f.BoolVar(&opts.noCache, "no-cache", false, "do not remember answers")
	f.IntVarP(&opts.parallel, "parallel", "p", 1, "number of packages downloaded at once")

	root.AddCommand(c.cacheCommand(&g))
	root.AddCommand(c.completionCommand())

	return root
}

// restartArgs accepts no positional arguments other than "restart".
func restartArgs(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		if arg != restartArg {
			return fmt.Errorf("unknown argument %q for %q", arg, cmd.CommandPath())
		}
	}
	return nil
}

// ExitCode maps the error returned by the root command to a process exit
// code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, resolver.ErrUserExit):
		return ExitUserAbort
	case errors.Is(err, context.Canceled), errors.Is(err, prompt.ErrInputClosed):
		return ExitInterrupted
	default:
		return ExitError
	}
}
