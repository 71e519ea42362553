// Package sample draws one concrete mine layout consistent with a
// solved board's constraints, and answers "what if this cell were
// forced safe/mine" what-if questions by resolving a warped copy of the
// board and sampling from it. Neither operation is required for the
// probability or endgame engines; both are analysis conveniences built
// on top of the same chain-enumeration data GeneralSolve produces.
package sample

import (
	"math/rand/v2"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/solver"
)

// weightedChoice picks an index with probability proportional to its
// weight. Returns 0 if every weight is non-positive.
func weightedChoice(weights []float64, rng *rand.Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 0
	}
	x := rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if x < cum {
			return i
		}
	}
	return len(weights) - 1
}

func emptyConf(h, w int) [][]int {
	conf := make([][]int, h)
	for r := range conf {
		conf[r] = make([]int, w)
		for c := range conf[r] {
			conf[r][c] = -1
		}
	}
	return conf
}

// Configuration samples one full mine layout consistent with the
// constraints GeneralSolve has already propagated into s: deterministic
// cells (revealed numbers, proven safe/flagged) are fixed, the
// remaining mine budget is distributed across chains via a backward DP
// over achievable per-chain sums followed by a uniform pick among each
// chain's matching configurations, and any leftover mines are
// distributed uniformly at random across the isolated cells. mines is
// the same total mine count passed to GeneralSolve. Returns an
// all-(-1) grid if no feasible distribution exists.
func Configuration(s *solver.Solver, mines int, rng *rand.Rand) [][]int {
	h, w := s.Board.Height, s.Board.Width
	conf := emptyConf(h, w)

	solved := make(map[*board.Cell]bool)
	for _, cell := range s.SolvedCells() {
		solved[cell] = true
	}

	adjustedMines := mines
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			cell := s.Board.Cell(r, c)
			switch {
			case cell.Value >= 0:
				conf[r][c] = 0
			case cell.MinePerc == 0:
				conf[r][c] = 0
			case cell.MinePerc == 100:
				conf[r][c] = 1
				if solved[cell] {
					adjustedMines--
				}
			}
		}
	}

	chainSols := s.ChainSolutions()
	numChains := len(chainSols)

	cmines, offset, minMines := solver.CombineChainMineCount(chainSols)

	weight := make([]int, len(cmines))
	l := 0
	if len(cmines) > 0 {
		l = len(cmines[0])
	}
	if len(offset) > 1 {
		l = offset[1]
	}
	for i := range cmines {
		for j := 0; j < l; j++ {
			weight[i] += cmines[i][j]
		}
	}

	low, high := 0, len(cmines)-1
	if high+minMines > adjustedMines {
		high = adjustedMines - minMines
	}
	if adjustedMines-(low+minMines) > len(s.NoNeighbors) {
		low = adjustedMines - len(s.NoNeighbors) - minMines
	}
	if low > high || low < 0 || high < 0 {
		return emptyConf(h, w)
	}

	noMinesProb := make([]float64, high-low+1)
	sumW := 0
	for i := low; i <= high; i++ {
		sumW += weight[i]
	}
	if sumW == 0 {
		noMinesProb[0] = 1.0
	} else {
		remainingMines := make([]int, len(weight))
		for i := low; i <= high; i++ {
			noMines := i + minMines
			remainingMines[i] = adjustedMines - noMines
		}
		p := solver.ComputeNormalizedBinomials(len(s.NoNeighbors), remainingMines[low:high+1], weight[low:high+1])
		copy(noMinesProb, p)
	}

	kIdx := weightedChoice(noMinesProb, rng)
	totalChainMines := (kIdx + low) + minMines
	remainingForNoNeighbors := adjustedMines - totalChainMines

	maxBudget := totalChainMines + 1
	dp := make([][]float64, numChains+1)
	for i := range dp {
		dp[i] = make([]float64, maxBudget)
	}
	dp[numChains][0] = 1.0
	for i := numChains - 1; i >= 0; i-- {
		cs := chainSols[i]
		for sum := 0; sum < maxBudget; sum++ {
			for j, m := range cs.NoMines {
				rem := sum - m
				if rem >= 0 && rem < maxBudget {
					dp[i][sum] += float64(cs.FreqNoMines[j]) * dp[i+1][rem]
				}
			}
		}
	}

	chosenMines := make([]int, numChains)
	remaining := totalChainMines
	for i := 0; i < numChains; i++ {
		cs := chainSols[i]
		var weights []float64
		var candidates []int
		for j, m := range cs.NoMines {
			rem := remaining - m
			if rem >= 0 && rem < maxBudget {
				wt := float64(cs.FreqNoMines[j]) * dp[i+1][rem]
				if wt > 0 {
					weights = append(weights, wt)
					candidates = append(candidates, j)
				}
			}
		}
		chosen := weightedChoice(weights, rng)
		jIdx := candidates[chosen]
		chosenMines[i] = cs.NoMines[jIdx]
		remaining -= chosenMines[i]
	}

	for i := 0; i < numChains; i++ {
		cs := chainSols[i]
		target := chosenMines[i]
		var matching []int
		for ci, c := range cs.AllConfigs {
			sum := 0
			for _, v := range c {
				sum += v
			}
			if sum == target {
				matching = append(matching, ci)
			}
		}
		picked := matching[rng.IntN(len(matching))]
		pickedConfig := cs.AllConfigs[picked]
		for idx, id := range cs.RelatedCells {
			r, c := s.Board.CoordOf(id)
			conf[r][c] = pickedConfig[idx]
		}
	}

	if len(s.NoNeighbors) > 0 {
		n := len(s.NoNeighbors)
		isMine := make([]bool, n)
		for i := 0; i < remainingForNoNeighbors && i < n; i++ {
			isMine[i] = true
		}
		rng.Shuffle(n, func(i, j int) { isMine[i], isMine[j] = isMine[j], isMine[i] })
		for i, cell := range s.NoNeighbors {
			v := 0
			if isMine[i] {
				v = 1
			}
			conf[cell.Row][cell.Col] = v
		}
	}

	return conf
}

// Warp asks "what is the probability that (row, col) is safe/mine given
// everything already known, and what would a sampled board look like if
// we committed to that outcome" — it re-solves a copy of raw with
// (row, col) forced to the requested state and samples a configuration
// from the result. raw is the original, unsolved board; row/col must
// currently be Undiscovered in it.
//
// Returns the warp point (the probability, in percent, that (row, col)
// actually is in the requested state before warping) and a sampled
// configuration consistent with the warped board — nil if the warp
// point is already 0 or 100 (nothing left to sample) or if either solve
// fails.
func Warp(raw [][]int, mines, row, col int, isMine bool, rng *rand.Rand) (warpPoint float64, conf [][]int, err error) {
	b, err := board.New(raw)
	if err != nil {
		return -1, nil, err
	}
	s, err := solver.New(b)
	if err != nil {
		return -1, nil, err
	}
	if _, err := s.GeneralSolve(mines); err != nil {
		return -1, nil, err
	}

	cell := s.Board.Cell(row, col)
	if isMine {
		warpPoint = cell.MinePerc
	} else {
		warpPoint = 100 - cell.MinePerc
	}

	if warpPoint <= 0 || warpPoint >= 100 {
		return warpPoint, nil, nil
	}

	warpedRaw := make([][]int, len(raw))
	for r := range raw {
		warpedRaw[r] = append([]int(nil), raw[r]...)
	}
	if isMine {
		warpedRaw[row][col] = board.Flag
	} else {
		warpedRaw[row][col] = board.Safe
	}
	warpedMines := mines
	if isMine {
		warpedMines--
	}

	warpedBoard, err := board.New(warpedRaw)
	if err != nil {
		return warpPoint, nil, nil
	}
	warpedSolver, err := solver.New(warpedBoard)
	if err != nil {
		return warpPoint, nil, nil
	}
	if _, err := warpedSolver.GeneralSolve(warpedMines); err != nil {
		return warpPoint, nil, nil
	}

	conf = Configuration(warpedSolver, warpedMines, rng)
	conf[row][col] = 0
	if isMine {
		conf[row][col] = 1
	}
	return warpPoint, conf, nil
}
