package sample

import (
	"math/rand/v2"
	"testing"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/solver"
)

func newRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// Scenario 1: 1x3, mines=1, [-1, 1, -1]. Exactly one of cell0/cell2 is a
// mine in every valid configuration; the revealed "1" is never a mine.
func TestConfigurationScenario1(t *testing.T) {
	b, err := board.New([][]int{{board.Undiscovered, 1, board.Undiscovered}})
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}
	s, err := solver.New(b)
	if err != nil {
		t.Fatalf("solver.New: %v", err)
	}
	if _, err := s.GeneralSolve(1); err != nil {
		t.Fatalf("GeneralSolve: %v", err)
	}

	rng := newRNG()
	for i := 0; i < 20; i++ {
		conf := Configuration(s, 1, rng)
		if conf[0][1] != 0 {
			t.Fatalf("conf[0][1] = %d, want 0 (revealed cell is never a mine)", conf[0][1])
		}
		total := conf[0][0] + conf[0][2]
		if total != 1 {
			t.Fatalf("conf = %v, want exactly one mine among cells 0 and 2", conf[0])
		}
	}
}

// Scenario 6: 1x5, mines=2, [-1, 2, -1, -1, -1]. Cells 0 and 2 must
// always be mines; cells 3 and 4 must always be safe.
func TestConfigurationScenario6Deterministic(t *testing.T) {
	b, err := board.New([][]int{{board.Undiscovered, 2, board.Undiscovered, board.Undiscovered, board.Undiscovered}})
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}
	s, err := solver.New(b)
	if err != nil {
		t.Fatalf("solver.New: %v", err)
	}
	if _, err := s.GeneralSolve(2); err != nil {
		t.Fatalf("GeneralSolve: %v", err)
	}

	conf := Configuration(s, 2, newRNG())
	want := []int{1, 0, 1, 0, 0}
	for i, w := range want {
		if conf[0][i] != w {
			t.Errorf("conf[0][%d] = %d, want %d", i, conf[0][i], w)
		}
	}
}

func TestWarpOnAlreadyDeterminedCellReturnsNilConfig(t *testing.T) {
	raw := [][]int{{board.Undiscovered, 2, board.Undiscovered, board.Undiscovered, board.Undiscovered}}
	// Cell (0,0) is already forced to be a mine (warpPoint would be 100
	// when asking "is it a mine"), so there's nothing left to sample.
	warpPoint, conf, err := Warp(raw, 2, 0, 0, true, newRNG())
	if err != nil {
		t.Fatalf("Warp: %v", err)
	}
	if warpPoint != 100 {
		t.Errorf("warpPoint = %v, want 100", warpPoint)
	}
	if conf != nil {
		t.Errorf("conf = %v, want nil (no sampling needed for a determined cell)", conf)
	}
}

// Warp always forces the requested cell to the requested state in the
// configuration it returns, no matter what the underlying sample of the
// rest of the board looks like — that overwrite happens unconditionally
// after Configuration runs, so it holds even in the degenerate case where
// the warped board's remaining mine budget turns out infeasible.
func TestWarpOnUncertainCellSamplesConsistently(t *testing.T) {
	raw := [][]int{{board.Undiscovered, 1, board.Undiscovered}}
	warpPoint, conf, err := Warp(raw, 1, 0, 0, true, newRNG())
	if err != nil {
		t.Fatalf("Warp: %v", err)
	}
	if !almostEqual(warpPoint, 50, 1e-6) {
		t.Errorf("warpPoint = %v, want 50", warpPoint)
	}
	if conf == nil {
		t.Fatal("conf = nil, want a sampled configuration")
	}
	if conf[0][0] != 1 {
		t.Errorf("conf[0][0] = %d, want 1 (forced mine)", conf[0][0])
	}
}

// Mirrors the isMine=true case above but forcing the cell safe instead,
// which takes Warp through its other branch (no mines decrement, Safe
// instead of Flag written into the warped board).
func TestWarpOnUncertainCellForcedSafe(t *testing.T) {
	raw := [][]int{{board.Undiscovered, 1, board.Undiscovered}}
	warpPoint, conf, err := Warp(raw, 1, 0, 0, false, newRNG())
	if err != nil {
		t.Fatalf("Warp: %v", err)
	}
	if !almostEqual(warpPoint, 50, 1e-6) {
		t.Errorf("warpPoint = %v, want 50", warpPoint)
	}
	if conf == nil {
		t.Fatal("conf = nil, want a sampled configuration")
	}
	if conf[0][0] != 0 {
		t.Errorf("conf[0][0] = %d, want 0 (forced safe)", conf[0][0])
	}
}

func almostEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
