package endgame

import (
	"math"
	"testing"

	"github.com/herbhall/mineprobe/internal/board"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// scenario 1: 1x3, mines=1, [-1, 1, -1] -> either guess is a coinflip.
func TestSolveScenario1(t *testing.T) {
	b, _ := board.New([][]int{{board.Undiscovered, 1, board.Undiscovered}})
	e, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Solve(1)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !result.Valid {
		t.Fatal("result.Valid = false, want true")
	}
	if !almostEqual(result.WinProbability, 0.5, 1e-6) {
		t.Errorf("WinProbability = %v, want 0.5", result.WinProbability)
	}
}

// scenario 3: 3x3, mines=1, center revealed as 1, eight unknowns -> 7/8.
func TestSolveScenario3(t *testing.T) {
	raw := [][]int{
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
		{board.Undiscovered, 1, board.Undiscovered},
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
	}
	b, _ := board.New(raw)
	e, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Solve(1)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !almostEqual(result.WinProbability, 7.0/8.0, 1e-6) {
		t.Errorf("WinProbability = %v, want 0.875", result.WinProbability)
	}
}

// scenario 4: 2x2, mines=4, all unknown -> nothing to click, win by completion.
func TestSolveScenario4(t *testing.T) {
	raw := [][]int{
		{board.Undiscovered, board.Undiscovered},
		{board.Undiscovered, board.Undiscovered},
	}
	b, _ := board.New(raw)
	e, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Solve(4)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !almostEqual(result.WinProbability, 1, 1e-6) {
		t.Errorf("WinProbability = %v, want 1.0", result.WinProbability)
	}
	if result.BestRow != -1 || result.BestCol != -1 {
		t.Errorf("BestRow,BestCol = %d,%d, want -1,-1 (no cell left to click)", result.BestRow, result.BestCol)
	}
}

// scenario 5: 1x2, mines=2, all unknown -> same shape as scenario 4.
func TestSolveScenario5(t *testing.T) {
	b, _ := board.New([][]int{{board.Undiscovered, board.Undiscovered}})
	e, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := e.Solve(2)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if !almostEqual(result.WinProbability, 1, 1e-6) {
		t.Errorf("WinProbability = %v, want 1.0", result.WinProbability)
	}
}

func TestSolveMalformedInputPropagatesError(t *testing.T) {
	b, _ := board.New([][]int{{8, board.Undiscovered}})
	_, err := New(b)
	if err == nil {
		t.Fatal("New() with malformed input, want error")
	}
}

func TestConfigMaskBasics(t *testing.T) {
	m := newConfigMask(130)
	m.setBit(0)
	m.setBit(65)
	m.setBit(129)
	if !m.getBit(0) || !m.getBit(65) || !m.getBit(129) {
		t.Fatal("setBit/getBit round trip failed")
	}
	if m.getBit(1) || m.getBit(64) {
		t.Fatal("getBit returned true for an unset bit")
	}
	if m.popcount() != 3 {
		t.Errorf("popcount() = %d, want 3", m.popcount())
	}
}
