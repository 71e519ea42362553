package solver

import (
	"math"
	"testing"

	"github.com/herbhall/mineprobe/internal/board"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func mustSolve(t *testing.T, raw [][]int, mines int) *Solver {
	t.Helper()
	b, err := board.New(raw)
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}
	s, err := New(b)
	if err != nil {
		t.Fatalf("solver.New: %v", err)
	}
	ok, err := s.GeneralSolve(mines)
	if err != nil || !ok {
		t.Fatalf("GeneralSolve(%d) = (%v, %v), want (true, nil)", mines, ok, err)
	}
	return s
}

// scenario 1: 1x3, mines=1, [-1, 1, -1]
func TestGeneralSolveScenario1(t *testing.T) {
	s := mustSolve(t, [][]int{{board.Undiscovered, 1, board.Undiscovered}}, 1)

	for _, col := range []int{0, 2} {
		if got := s.Board.Cell(0, col).MinePerc; !almostEqual(got, 50, 1e-6) {
			t.Errorf("Cell(0,%d).MinePerc = %v, want 50", col, got)
		}
	}
	if !s.CanEndgame {
		t.Error("CanEndgame = false, want true")
	}
}

// scenario 2: 1x4, mines=1, [-1, 1, -1, -1]
func TestGeneralSolveScenario2(t *testing.T) {
	s := mustSolve(t, [][]int{{board.Undiscovered, 1, board.Undiscovered, board.Undiscovered}}, 1)

	if got := s.Board.Cell(0, 0).MinePerc; !almostEqual(got, 50, 1e-6) {
		t.Errorf("Cell(0,0).MinePerc = %v, want 50", got)
	}
	if got := s.Board.Cell(0, 2).MinePerc; !almostEqual(got, 50, 1e-6) {
		t.Errorf("Cell(0,2).MinePerc = %v, want 50", got)
	}
	if got := s.Board.Cell(0, 3).MinePerc; !almostEqual(got, 0, 1e-6) {
		t.Errorf("Cell(0,3).MinePerc (isolated) = %v, want 0", got)
	}
}

// scenario 3: 3x3, mines=1, center revealed as 1, eight unknowns
func TestGeneralSolveScenario3(t *testing.T) {
	raw := [][]int{
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
		{board.Undiscovered, 1, board.Undiscovered},
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
	}
	s := mustSolve(t, raw, 1)

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if r == 1 && c == 1 {
				continue
			}
			if got := s.Board.Cell(r, c).MinePerc; !almostEqual(got, 12.5, 1e-6) {
				t.Errorf("Cell(%d,%d).MinePerc = %v, want 12.5", r, c, got)
			}
		}
	}
	if !s.CanEndgame {
		t.Error("CanEndgame = false, want true")
	}
}

// scenario 4: 2x2, mines=4, all unknown
func TestGeneralSolveScenario4(t *testing.T) {
	raw := [][]int{
		{board.Undiscovered, board.Undiscovered},
		{board.Undiscovered, board.Undiscovered},
	}
	s := mustSolve(t, raw, 4)

	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if got := s.Board.Cell(r, c).MinePerc; !almostEqual(got, 100, 1e-6) {
				t.Errorf("Cell(%d,%d).MinePerc = %v, want 100", r, c, got)
			}
			if s.Board.Cell(r, c).Value != board.Flag {
				t.Errorf("Cell(%d,%d).Value = %v, want Flag", r, c, s.Board.Cell(r, c).Value)
			}
		}
	}
}

// scenario 5: 1x2, mines=2, all unknown
func TestGeneralSolveScenario5(t *testing.T) {
	s := mustSolve(t, [][]int{{board.Undiscovered, board.Undiscovered}}, 2)
	for _, col := range []int{0, 1} {
		if got := s.Board.Cell(0, col).MinePerc; !almostEqual(got, 100, 1e-6) {
			t.Errorf("Cell(0,%d).MinePerc = %v, want 100", col, got)
		}
	}
}

// scenario 6: 1x5, mines=2, [-1, 2, -1, -1, -1]
func TestGeneralSolveScenario6(t *testing.T) {
	raw := [][]int{{board.Undiscovered, 2, board.Undiscovered, board.Undiscovered, board.Undiscovered}}
	s := mustSolve(t, raw, 2)

	for _, col := range []int{0, 2} {
		if got := s.Board.Cell(0, col).MinePerc; !almostEqual(got, 100, 1e-6) {
			t.Errorf("Cell(0,%d).MinePerc = %v, want 100", col, got)
		}
	}
	for _, col := range []int{3, 4} {
		if got := s.Board.Cell(0, col).MinePerc; !almostEqual(got, 0, 1e-6) {
			t.Errorf("Cell(0,%d).MinePerc (isolated) = %v, want 0", col, got)
		}
	}
}

// invariant 2: sum of minePerc/100 over all cells equals the declared mine count.
func TestGeneralSolveProbabilitiesSumToMineCount(t *testing.T) {
	raw := [][]int{
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
		{board.Undiscovered, 1, board.Undiscovered},
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
	}
	s := mustSolve(t, raw, 1)

	sum := 0.0
	for r := 0; r < s.Board.Height; r++ {
		for c := 0; c < s.Board.Width; c++ {
			cell := s.Board.Cell(r, c)
			if cell.Value >= 0 {
				continue
			}
			sum += cell.MinePerc / 100
		}
	}
	if !almostEqual(sum, 1, 1e-6) {
		t.Errorf("sum of mine probabilities = %v, want 1", sum)
	}
}

func TestGeneralSolveMalformedInput(t *testing.T) {
	// a revealed "8" with only one undiscovered neighbor can never be satisfied.
	raw := [][]int{{8, board.Undiscovered}}
	b, err := board.New(raw)
	if err != nil {
		t.Fatalf("board.New: %v", err)
	}
	_, err = New(b)
	if err != ErrMalformedInput {
		t.Fatalf("New() err = %v, want ErrMalformedInput", err)
	}
}

func TestChainSolutionInvariants(t *testing.T) {
	raw := [][]int{
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
		{board.Undiscovered, 1, board.Undiscovered},
		{board.Undiscovered, board.Undiscovered, board.Undiscovered},
	}
	b, _ := board.New(raw)
	s, err := New(b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !s.iterativeSolve() {
		t.Fatal("iterativeSolve reported contradiction")
	}

	chains := s.getGroupChains()
	if len(chains) != 1 {
		t.Fatalf("len(chains) = %d, want 1", len(chains))
	}
	cs := s.solveChain(chains[0])

	totalConfigs := len(cs.AllConfigs)
	sumFreq := 0
	for _, f := range cs.FreqNoMines {
		sumFreq += f
	}
	if sumFreq != totalConfigs {
		t.Errorf("sum(FreqNoMines) = %d, want %d (= len(AllConfigs))", sumFreq, totalConfigs)
	}

	for j, noMines := range cs.NoMines {
		sumPos := 0
		for _, v := range cs.FreqMinesPos[j] {
			sumPos += v
		}
		want := noMines * cs.FreqNoMines[j]
		if sumPos != want {
			t.Errorf("bucket %d: sum(FreqMinesPos) = %d, want %d", j, sumPos, want)
		}
	}
}
