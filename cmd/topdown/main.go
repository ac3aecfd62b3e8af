// topdown runs real-time scenes on the engine in a terminal, a GPU window
// or headless.
//
// Usage:
//
//	topdown run [scene]       - Run a scene (menu when omitted in a terminal)
//	topdown list              - List registered scenes
//	topdown scores [scene]    - Show high scores and recent runs
//	topdown serve --ssh :addr - Serve the terminal demo over SSH
//
// Global flags:
//
//	--config <path>     - Engine config YAML (default: search order)
//	--db <path>         - Scores database (default: ~/.topdown/scores.db)
//	--log-level <level> - debug, info, warn or error
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/platform"
	"github.com/vovakirdan/topdown/internal/resource"

	// Import scenes to register them
	_ "github.com/vovakirdan/topdown/internal/demo"
)

// Process exit codes by error class.
const (
	exitFailure  = 1
	exitConfig   = 2
	exitPlatform = 3
	exitResource = 4
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var (
		cfgErr  *config.Error
		platErr *platform.Error
		loadErr *resource.LoadError
	)
	switch {
	case errors.As(err, &cfgErr):
		return exitConfig
	case errors.As(err, &platErr):
		return exitPlatform
	case errors.As(err, &loadErr):
		return exitResource
	}
	return exitFailure
}

var rootCmd = &cobra.Command{
	Use:   "topdown",
	Short: "topdown - a real-time 2D engine with a terminal demo",
	Long: `topdown runs scenes on a fixed-timestep game loop. Scenes draw through
the same engine in a terminal, in a GPU window or headless.

Available commands:
  run      - Run a scene
  list     - Show all registered scenes
  scores   - View high scores and recent runs
  serve    - Start SSH server for remote play

Examples:
  topdown run
  topdown run topdown --backend ebiten
  topdown run --backend headless --frames 600
  topdown serve --ssh :2222
  topdown scores topdown`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to engine config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default ~/.topdown/scores.db)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
}
