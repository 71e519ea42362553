package endgame

import (
	"errors"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/solver"
)

// ErrOverBudget is returned when the endgame preconditions fail: more
// than maxEndgameCells cells would need tracking, or the number of
// distinct global configurations would exceed maxEndgameConfigs.
var ErrOverBudget = errors.New("endgame: over budget")

const (
	maxEndgameCells   = 64
	maxEndgameConfigs = 100
)

// Solver runs the endgame expectimax search on top of a constraint
// solver: it materializes every mine configuration consistent with the
// chains' enumerations and the remaining mine budget, then searches the
// resulting game tree for the optimal-play win probability.
type Solver struct {
	solver *solver.Solver

	NumCells   int
	NumConfigs int

	cellPos           [][2]int
	posToIdx          [][]int
	configMine        [][]bool
	configRevealValue [][]int
	adjacency         [][]int

	memo map[string]float64
}

// New builds an endgame solver over a board, without yet running
// propagation or enumeration (that happens in Solve).
func New(b *board.Board) (*Solver, error) {
	s, err := solver.New(b)
	if err != nil {
		return nil, err
	}
	return &Solver{solver: s}, nil
}

// choose enumerates every length-n vector with exactly k entries set to
// -1 (the rest 0), one per combination of positions — the set of ways
// to distribute k mines among n undifferentiated isolated cells.
func choose(n, k int) [][]int8 {
	if k < 0 || k > n {
		return nil
	}
	var out [][]int8
	idxs := make([]int, k)
	var rec func(start, depth int)
	rec = func(start, depth int) {
		if depth == k {
			row := make([]int8, n)
			for _, i := range idxs {
				row[i] = -1
			}
			out = append(out, row)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			idxs[depth] = i
			rec(i+1, depth+1)
		}
	}
	rec(0, 0)
	return out
}

// combineAllGroupsConfigs recursively picks one enumerated configuration
// per chain, then distributes whatever mine budget remains across the
// isolated-cell tail, producing every full-board endgame configuration
// respecting the global mine count.
func combineAllGroupsConfigs(chainSols []solver.ChainSolution, config []int8, mines, id, arrIdx int, out *[][]int8) {
	if id == len(chainSols) {
		remaining := len(config) - arrIdx
		if mines > remaining {
			return
		}
		for _, bm := range choose(remaining, mines) {
			row := append([]int8(nil), config...)
			copy(row[arrIdx:], bm)
			*out = append(*out, row)
		}
		return
	}

	cs := chainSols[id]
	for _, conf := range cs.AllConfigs {
		nMines := 0
		for i, v := range conf {
			nMines += v
			config[i+arrIdx] = int8(-v)
		}
		if nMines > mines {
			continue
		}
		combineAllGroupsConfigs(chainSols, config, mines-nMines, id+1, arrIdx+len(conf), out)
	}
}

// buildConfigurations runs the underlying constraint solver, collects
// the endgame cell set (every chain/isolated cell plus any
// deterministically-safe cell adjacent to one of them, since clicking it
// yields information), and enumerates every mine configuration
// consistent with the remaining mine budget.
func (e *Solver) buildConfigurations(mines, maxConfigs int) error {
	ok, err := e.solver.GeneralSolve(mines)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOverBudget
	}

	remainingMines := mines
	for _, c := range e.solver.SolvedCells() {
		if c.MinePerc == 100 {
			remainingMines--
		}
	}
	if remainingMines < 0 {
		return ErrOverBudget
	}

	chainSols := e.solver.ChainSolutions()

	var allCells []*board.Cell
	for _, cs := range chainSols {
		for _, id := range cs.RelatedCells {
			allCells = append(allCells, e.solver.Board.CellByID(id))
		}
	}
	allCells = append(allCells, e.solver.NoNeighbors...)
	uncertainCellCount := len(allCells)

	b := e.solver.Board
	tmpPosToIdx := make([][]int, b.Height)
	for r := range tmpPosToIdx {
		tmpPosToIdx[r] = make([]int, b.Width)
		for c := range tmpPosToIdx[r] {
			tmpPosToIdx[r][c] = -1
		}
	}
	for i, c := range allCells {
		tmpPosToIdx[c.Row][c.Col] = i
	}

	for _, c := range e.solver.SolvedCells() {
		if c.MinePerc != 0 || c.Value != board.Safe {
			continue
		}
		if tmpPosToIdx[c.Row][c.Col] >= 0 {
			continue
		}
		adjacent := false
		for _, n := range b.Neighbors(c.Row, c.Col) {
			if tmpPosToIdx[n[0]][n[1]] >= 0 {
				adjacent = true
				break
			}
		}
		if adjacent {
			allCells = append(allCells, c)
		}
	}

	if len(allCells) > maxEndgameCells {
		return ErrOverBudget
	}

	config := make([]int8, uncertainCellCount)
	var allConfigs [][]int8
	combineAllGroupsConfigs(chainSols, config, remainingMines, 0, 0, &allConfigs)

	if len(allConfigs) == 0 || len(allConfigs) > maxConfigs {
		return ErrOverBudget
	}

	e.NumCells = len(allCells)
	e.NumConfigs = len(allConfigs)

	e.cellPos = make([][2]int, e.NumCells)
	e.posToIdx = make([][]int, b.Height)
	for r := range e.posToIdx {
		e.posToIdx[r] = make([]int, b.Width)
		for c := range e.posToIdx[r] {
			e.posToIdx[r][c] = -1
		}
	}
	for i, c := range allCells {
		e.cellPos[i] = [2]int{c.Row, c.Col}
		e.posToIdx[c.Row][c.Col] = i
	}

	e.configMine = make([][]bool, e.NumConfigs)
	for ci := 0; ci < e.NumConfigs; ci++ {
		row := make([]bool, e.NumCells)
		for i := 0; i < uncertainCellCount; i++ {
			row[i] = allConfigs[ci][i] == -1
		}
		e.configMine[ci] = row
	}

	return nil
}
