// Package cli implements the smfinstall command-line interface.
//
// The root command runs an installation in the target directory: it loads
// the mirror information, asks which version and language packs to install,
// downloads the packages from the mirrors, and unpacks them in place. Every
// answer is remembered in the target directory so an interrupted run picks
// up where it stopped; "smfinstall restart" forgets them first.
//
// # Commands
//
//   - smfinstall [restart]: run (or resume) an installation
//   - cache clear: forget remembered answers
//   - cache path: print where answers are remembered
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context; each run is tagged with a short run ID.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/smfinstall/internal/config"
	"github.com/matzehuels/smfinstall/pkg/cache"
	"github.com/matzehuels/smfinstall/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "smfinstall"

	// restartArg clears remembered answers when passed as an argument.
	restartArg = "restart"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer // Menus, prompts and progress lines

	tally *observability.Tally
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Cache Factory
// =============================================================================

// clearAnswers removes the answers remembered in dir. It works on the
// files directly, so "restart" also forgets them under --no-cache.
func clearAnswers(ctx context.Context, dir string) (int, error) {
	fc, err := cache.NewFileCache(dir, 0)
	if err != nil {
		return 0, err
	}
	return fc.Clear(ctx)
}

// newCache opens the decision cache inside the target directory.
func newCache(dir string, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir, cfg.Cache.TTL)
}

// =============================================================================
// Paths
// =============================================================================

// targetDir resolves the installation directory, defaulting to the working
// directory.
func targetDir(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	return filepath.Abs(dir)
}

// loadConfig reads an explicit config file, or the one in dir if present.
func loadConfig(path, dir string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadDir(dir)
}
