// Command mineprobe reads a Minesweeper board from an input file, solves
// it for per-cell mine probabilities and (when the remaining state is
// small enough) the optimal-play win probability and best move, and
// either prints the result once or keeps re-solving it live as the file
// changes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/herbhall/mineprobe/internal/config"
	"github.com/herbhall/mineprobe/internal/history"
	"github.com/herbhall/mineprobe/internal/host"
	"github.com/herbhall/mineprobe/internal/tui"
)

func main() {
	inFlag := flag.String("in", "", "path to the board input file (default from settings, else minesweeper.inp)")
	minesFlag := flag.Int("mines", -1, "override the mine count declared in the input file")
	watchFlag := flag.Bool("watch", false, "force the live watch view (requires a terminal)")
	noWatchFlag := flag.Bool("no-watch", false, "force the plain one-shot stdout format")
	historyFlag := flag.String("history", "", "path to the run-history file (default ~/.mineprobe/history.json)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load settings: %v\n", err)
	}

	inPath := *inFlag
	if inPath == "" {
		inPath = cfg.Config.DefaultInput
	}

	if *watchFlag && *noWatchFlag {
		fmt.Fprintln(os.Stderr, "Error: -watch and -no-watch are mutually exclusive")
		os.Exit(1)
	}

	isTerminal := isatty.IsTerminal(os.Stdout.Fd())
	useWatch := isTerminal && cfg.Config.WatchByDefault
	if *watchFlag {
		if !isTerminal {
			fmt.Fprintln(os.Stderr, "Error: -watch requires stdout to be a terminal")
			os.Exit(1)
		}
		useWatch = true
	}
	if *noWatchFlag {
		useWatch = false
	}

	if useWatch {
		runWatch(inPath, *minesFlag, cfg.Config.Theme)
		return
	}

	runOnce(inPath, *minesFlag, *historyFlag)
}

func runWatch(inPath string, minesOverride int, theme config.Theme) {
	m := tui.New(inPath, minesOverride, theme)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runOnce(inPath string, minesOverride int, historyPath string) {
	parsed, err := host.ParseBoardFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	mines := parsed.Mines
	if minesOverride >= 0 {
		mines = minesOverride
	}

	probs, canEndgame, valid := host.SolveBoard(parsed.Rows, parsed.Cols, parsed.Flat, mines)
	if !valid {
		fmt.Fprintln(os.Stderr, "Error: board is malformed or infeasible with the declared mine count")
		os.Exit(1)
	}

	if err := host.RenderProbabilities(os.Stdout, parsed.Rows, parsed.Cols, parsed.Flat, probs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	entry := history.Entry{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Rows:       parsed.Rows,
		Cols:       parsed.Cols,
		Mines:      mines,
		CanEndgame: canEndgame,
		BestRow:    -1,
		BestCol:    -1,
	}

	if canEndgame {
		winProb, bestRow, bestCol, valid := host.SolveEndgame(parsed.Rows, parsed.Cols, parsed.Flat, mines)
		if valid {
			fmt.Printf("win probability: %.1f%%  best move: (%d, %d)\n", winProb*100, bestRow, bestCol)
			entry.WinProbability = winProb
			entry.BestRow, entry.BestCol = bestRow, bestCol
		}
	}

	h, err := history.LoadFrom(historyPath)
	if err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: could not load history: %v\n", err)
		return
	}
	h.Record(entry)
	if err := h.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not save history: %v\n", err)
	}
}
