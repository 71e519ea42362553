package tui

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/config"
)

func writeInp(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "minesweeper.inp")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRefreshLoadsAndSolves(t *testing.T) {
	path := writeInp(t, "1 3 1\n-1 1 -1\n")
	m := New(path, -1, config.ThemeHeatmap)
	m.refresh()

	if m.loadErr != nil {
		t.Fatalf("refresh: %v", m.loadErr)
	}
	if m.rows != 1 || m.cols != 3 || m.mines != 1 {
		t.Fatalf("dims = (%d,%d) mines=%d, want (1,3) mines=1", m.rows, m.cols, m.mines)
	}
	if !m.canEndgame {
		t.Error("canEndgame = false, want true")
	}
	if m.probs[0] < 49 || m.probs[0] > 51 {
		t.Errorf("probs[0] = %v, want ~50", m.probs[0])
	}
	if !m.endgameValid {
		t.Error("endgameValid = false, want true")
	}
}

func TestRefreshMinesOverride(t *testing.T) {
	path := writeInp(t, "1 3 99\n-1 1 -1\n")
	m := New(path, 1, config.ThemeHeatmap)
	m.refresh()

	if m.loadErr != nil {
		t.Fatalf("refresh: %v", m.loadErr)
	}
	if m.mines != 1 {
		t.Errorf("mines = %d, want override value 1", m.mines)
	}
}

func TestRefreshMissingFileSetsLoadErr(t *testing.T) {
	m := New(filepath.Join(t.TempDir(), "missing.inp"), -1, config.ThemeHeatmap)
	m.refresh()
	if m.loadErr == nil {
		t.Error("loadErr = nil, want an error for a missing file")
	}
}

func TestHeatmapColorEndpointsDiffer(t *testing.T) {
	m := Model{theme: config.ThemeHeatmap}
	safe := m.heatmapColor(0)
	mined := m.heatmapColor(100)
	if safe == mined {
		t.Error("heatmapColor(0) == heatmapColor(100), want distinct endpoint colors")
	}
}

func TestHeatmapColorMonoIsFlat(t *testing.T) {
	m := Model{theme: config.ThemeMono}
	if m.heatmapColor(0) != m.heatmapColor(100) {
		t.Error("mono theme should render every probability the same color")
	}
}

func TestRenderCellRevealedNumber(t *testing.T) {
	m := Model{}
	if got := m.renderCell(3, -1); got != " 3 " {
		t.Errorf("renderCell(3) = %q, want %q", got, " 3 ")
	}
}

func TestRenderCellFlagAndSafe(t *testing.T) {
	m := Model{}
	if got := m.renderCell(board.Flag, 100); got != " F " {
		t.Errorf("renderCell(Flag) = %q, want %q", got, " F ")
	}
	if got := m.renderCell(board.Safe, 0); got != " . " {
		t.Errorf("renderCell(Safe) = %q, want %q", got, " . ")
	}
}
