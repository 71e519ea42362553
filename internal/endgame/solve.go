package endgame

import (
	"strconv"
	"strings"

	"github.com/herbhall/mineprobe/internal/board"
)

// Result is the outcome of an endgame search: the optimal-play win
// probability and the move that achieves it.
type Result struct {
	WinProbability float64
	BestRow        int
	BestCol        int
	Valid          bool
}

func (e *Solver) precomputeRevealValues() {
	e.configRevealValue = make([][]int, e.NumConfigs)
	b := e.solver.Board

	for c := 0; c < e.NumConfigs; c++ {
		row := make([]int, e.NumCells)
		for i := 0; i < e.NumCells; i++ {
			if e.configMine[c][i] {
				row[i] = -1
				continue
			}

			count := 0
			r, col := e.cellPos[i][0], e.cellPos[i][1]
			for nr := r - 1; nr <= r+1; nr++ {
				for nc := col - 1; nc <= col+1; nc++ {
					if nr == r && nc == col {
						continue
					}
					if !b.IsValidCoord(nr, nc) {
						continue
					}
					v := b.Cell(nr, nc).Value
					switch {
					case v == board.Flag:
						count++
					case v == board.Undiscovered:
						idx := e.posToIdx[nr][nc]
						if idx >= 0 && e.configMine[c][idx] {
							count++
						}
					}
				}
			}
			row[i] = count
		}
		e.configRevealValue[c] = row
	}
}

func (e *Solver) buildAdjacency() {
	e.adjacency = make([][]int, e.NumCells)
	b := e.solver.Board
	for i := 0; i < e.NumCells; i++ {
		r, c := e.cellPos[i][0], e.cellPos[i][1]
		var adj []int
		for nr := r - 1; nr <= r+1; nr++ {
			for nc := c - 1; nc <= c+1; nc++ {
				if nr == r && nc == c {
					continue
				}
				if !b.IsValidCoord(nr, nc) {
					continue
				}
				if idx := e.posToIdx[nr][nc]; idx >= 0 {
					adj = append(adj, idx)
				}
			}
		}
		e.adjacency[i] = adj
	}
}

// simulateReveal floods out from cellIdx through zero-valued neighbors
// under configIdx's mine layout, returning the full set of cells the
// player would see revealed after that single click.
func (e *Solver) simulateReveal(cellIdx, configIdx int, currentRevealed uint64) uint64 {
	newRevealed := currentRevealed | (1 << uint(cellIdx))

	if e.configRevealValue[configIdx][cellIdx] == 0 {
		queue := []int{cellIdx}
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]
			for _, neighbor := range e.adjacency[curr] {
				if (newRevealed>>uint(neighbor))&1 != 0 {
					continue
				}
				if e.configMine[configIdx][neighbor] {
					continue
				}
				newRevealed |= 1 << uint(neighbor)
				if e.configRevealValue[configIdx][neighbor] == 0 {
					queue = append(queue, neighbor)
				}
			}
		}
	}

	return newRevealed
}

// observationKey encodes the tuple (newRevealedMask, revealed values in
// traversal order) that the player actually observes after a click —
// the equivalence class configurations are grouped by before recursing.
func observationKey(newRevealedMask uint64, values []int) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(newRevealedMask, 36))
	b.WriteByte('|')
	for _, v := range values {
		b.WriteString(strconv.Itoa(v))
		b.WriteByte(',')
	}
	return b.String()
}

type obsGroup struct {
	newRevealedMask uint64
	mask            configMask
}

func stateKey(revealedMask uint64, mask configMask) string {
	return strconv.FormatUint(revealedMask, 36) + "|" + mask.key()
}

// solve is the memoized expectimax search: maximize over which
// unrevealed cell to click (or take the forced free-information click),
// averaging over the observation-equivalence classes a click produces.
func (e *Solver) solve(revealedMask uint64, mask configMask) float64 {
	totalAlive := mask.popcount()
	if totalAlive == 0 {
		return 0
	}
	if totalAlive == 1 {
		return 1
	}

	needToClick := false
	for i := 0; i < e.NumCells && !needToClick; i++ {
		if (revealedMask>>uint(i))&1 != 0 {
			continue
		}
		for c := 0; c < e.NumConfigs && !needToClick; c++ {
			if !mask.getBit(c) {
				continue
			}
			if !e.configMine[c][i] {
				needToClick = true
			}
		}
	}
	if !needToClick {
		return 1
	}

	key := stateKey(revealedMask, mask)
	if v, ok := e.memo[key]; ok {
		return v
	}

	for i := 0; i < e.NumCells; i++ {
		if (revealedMask>>uint(i))&1 != 0 {
			continue
		}
		safeInAll := true
		for c := 0; c < e.NumConfigs; c++ {
			if !mask.getBit(c) {
				continue
			}
			if e.configMine[c][i] {
				safeInAll = false
				break
			}
		}
		if !safeInAll {
			continue
		}

		prob := e.exploreClick(i, revealedMask, mask, totalAlive)
		e.memo[key] = prob
		return prob
	}

	bestProb := 0.0
	for i := 0; i < e.NumCells; i++ {
		if (revealedMask>>uint(i))&1 != 0 {
			continue
		}

		anySafe := false
		for c := 0; c < e.NumConfigs; c++ {
			if mask.getBit(c) && !e.configMine[c][i] {
				anySafe = true
				break
			}
		}
		if !anySafe {
			continue
		}

		prob := e.exploreClickSafeOnly(i, revealedMask, mask, totalAlive)
		if prob > bestProb {
			bestProb = prob
		}
	}

	e.memo[key] = bestProb
	return bestProb
}

// exploreClick groups every alive config by the observation clicking i
// produces, recurses per group, and returns the weighted average —
// used for the forced free-information click, where every alive config
// is safe at i by construction.
func (e *Solver) exploreClick(i int, revealedMask uint64, mask configMask, totalAlive int) float64 {
	groups := map[string]*obsGroup{}
	var order []string
	for c := 0; c < e.NumConfigs; c++ {
		if !mask.getBit(c) {
			continue
		}
		newRevealed := e.simulateReveal(i, c, revealedMask)
		newlyRevealed := newRevealed &^ revealedMask
		var values []int
		for j := 0; j < e.NumCells; j++ {
			if (newlyRevealed>>uint(j))&1 != 0 {
				values = append(values, e.configRevealValue[c][j])
			}
		}
		key := observationKey(newRevealed, values)
		g, ok := groups[key]
		if !ok {
			g = &obsGroup{newRevealedMask: newRevealed, mask: newConfigMask(e.NumConfigs)}
			groups[key] = g
			order = append(order, key)
		}
		g.mask.setBit(c)
	}

	prob := 0.0
	for _, key := range order {
		g := groups[key]
		groupSize := g.mask.popcount()
		prob += float64(groupSize) / float64(totalAlive) * e.solve(g.newRevealedMask, g.mask)
	}
	return prob
}

// exploreClickSafeOnly is exploreClick restricted to configs where i is
// not a mine — used for the guessing branch, where clicking a cell that
// is a mine in some alive configs ends the game in those branches.
func (e *Solver) exploreClickSafeOnly(i int, revealedMask uint64, mask configMask, totalAlive int) float64 {
	groups := map[string]*obsGroup{}
	var order []string
	for c := 0; c < e.NumConfigs; c++ {
		if !mask.getBit(c) || e.configMine[c][i] {
			continue
		}
		newRevealed := e.simulateReveal(i, c, revealedMask)
		newlyRevealed := newRevealed &^ revealedMask
		var values []int
		for j := 0; j < e.NumCells; j++ {
			if (newlyRevealed>>uint(j))&1 != 0 {
				values = append(values, e.configRevealValue[c][j])
			}
		}
		key := observationKey(newRevealed, values)
		g, ok := groups[key]
		if !ok {
			g = &obsGroup{newRevealedMask: newRevealed, mask: newConfigMask(e.NumConfigs)}
			groups[key] = g
			order = append(order, key)
		}
		g.mask.setBit(c)
	}

	prob := 0.0
	for _, key := range order {
		g := groups[key]
		groupSize := g.mask.popcount()
		prob += float64(groupSize) / float64(totalAlive) * e.solve(g.newRevealedMask, g.mask)
	}
	return prob
}

// Solve runs the full endgame pipeline: constraint propagation,
// configuration enumeration, and the memoized expectimax search. It
// reports the move to play at the root by a fallback chain: any cell
// safe in every configuration, else any cell the constraint solver
// itself already proved safe, else the best expectimax guess, else any
// cell that is not a mine in every configuration.
func (e *Solver) Solve(mines int) (Result, error) {
	result := Result{BestRow: -1, BestCol: -1}

	if err := e.buildConfigurations(mines, maxEndgameConfigs); err != nil {
		return result, err
	}

	if e.NumCells == 0 {
		result.WinProbability = 1
		result.Valid = true
		for _, c := range e.solver.SolvedCells() {
			if c.MinePerc == 0 && c.Value == board.Safe {
				result.BestRow, result.BestCol = c.Row, c.Col
				break
			}
		}
		return result, nil
	}

	e.precomputeRevealValues()
	e.buildAdjacency()
	e.memo = make(map[string]float64)

	allConfigs := newConfigMask(e.NumConfigs)
	for c := 0; c < e.NumConfigs; c++ {
		allConfigs.setBit(c)
	}

	winProb := e.solve(0, allConfigs)

	bestRow, bestCol := -1, -1
	bestProb := -1.0

	for i := 0; i < e.NumCells; i++ {
		safeInAll := true
		for c := 0; c < e.NumConfigs; c++ {
			if e.configMine[c][i] {
				safeInAll = false
				break
			}
		}
		if safeInAll {
			bestRow, bestCol = e.cellPos[i][0], e.cellPos[i][1]
			bestProb = winProb
			break
		}
	}

	if bestRow == -1 {
		for _, c := range e.solver.SolvedCells() {
			if c.MinePerc == 0 && c.Value == board.Safe {
				bestRow, bestCol = c.Row, c.Col
				break
			}
		}
	}

	if bestRow == -1 {
		for i := 0; i < e.NumCells; i++ {
			anySafe := false
			for c := 0; c < e.NumConfigs; c++ {
				if allConfigs.getBit(c) && !e.configMine[c][i] {
					anySafe = true
					break
				}
			}
			if !anySafe {
				continue
			}

			prob := e.exploreClickSafeOnly(i, 0, allConfigs, e.NumConfigs)
			if prob > bestProb {
				bestProb = prob
				bestRow, bestCol = e.cellPos[i][0], e.cellPos[i][1]
			}
		}
	}

	if bestRow == -1 {
		for i := 0; i < e.NumCells; i++ {
			mineInAll := true
			for c := 0; c < e.NumConfigs; c++ {
				if !e.configMine[c][i] {
					mineInAll = false
					break
				}
			}
			if !mineInAll {
				bestRow, bestCol = e.cellPos[i][0], e.cellPos[i][1]
				break
			}
		}
	}

	if bestRow == -1 {
		for _, c := range e.solver.SolvedCells() {
			if c.MinePerc == 0 && c.Value == board.Safe {
				bestRow, bestCol = c.Row, c.Col
				break
			}
		}
	}

	result.WinProbability = winProb
	result.BestRow = bestRow
	result.BestCol = bestCol
	result.Valid = true
	return result, nil
}
