package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/topdown/internal/platform/tui"
	"github.com/vovakirdan/topdown/internal/registry"
	"github.com/vovakirdan/topdown/internal/storage"
)

var flagPlain bool

var scoresCmd = &cobra.Command{
	Use:   "scores [scene]",
	Short: "Show high scores and recent runs",
	Long: `Display the top 10 high scores and the latest runs for a scene.

In a terminal without a scene argument, the interactive scoreboard opens.

Examples:
  topdown scores
  topdown scores topdown
  topdown scores topdown --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagPlain, "plain", false, "Print instead of opening the scoreboard")
}

func runScores(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		return fmt.Errorf("opening scores database: %w", err)
	}
	defer store.Close()

	if len(args) == 0 {
		if !flagPlain && term.IsTerminal(int(os.Stdout.Fd())) {
			w, h, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				w, h = 80, 24
			}
			_, err = tui.RunScoreboard(store, w, h)
			return err
		}
		for _, info := range registry.List() {
			if err := printScores(store, info); err != nil {
				return err
			}
		}
		return nil
	}

	info, ok := registry.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown scene %q (run 'topdown list' to see available scenes)", args[0])
	}
	return printScores(store, info)
}

func printScores(store *storage.Store, info registry.SceneInfo) error {
	scores, err := store.TopScores(info.ID, 10)
	if err != nil {
		return fmt.Errorf("retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", info.Title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Run 'topdown run %s' to set the first high score!\n", info.ID)
		fmt.Println()
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Format("2006-01-02 15:04"))
	}

	runs, err := store.RecentRuns(info.ID, 5)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}
	if len(runs) > 0 {
		fmt.Println()
		fmt.Println("Recent runs:")
		for _, r := range runs {
			fmt.Printf("  %s  %-8s  %6d frames  %4d dropped  %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.Backend, r.Frames, r.Dropped, r.ExitState)
		}
	}
	fmt.Println()
	return nil
}
