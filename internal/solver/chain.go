package solver

import (
	"sort"

	"github.com/herbhall/mineprobe/internal/group"
)

// ChainSolution is the exhaustive enumeration result for one connected
// component of groups: every valid 0/1 mine assignment over the chain's
// cells, bucketed by total mine count.
type ChainSolution struct {
	RelatedCells []int // sorted cell IDs spanned by the chain's groups
	NoMines      []int // distinct total-mine-counts with at least one valid config, ascending
	FreqNoMines  []int // count of configs per entry in NoMines
	FreqMinesPos [][]int // FreqMinesPos[k][i]: how many of the bucket-k configs flag cell i as a mine
	AllConfigs   [][]int // every valid 0/1 assignment, indexed like RelatedCells
}

// getGroupChains partitions the solver's active groups into connected
// components (two groups are connected if they share a cell), via BFS.
func (s *Solver) getGroupChains() [][]*group.Group {
	n := len(s.Groups)
	added := make([]bool, n)
	var out [][]*group.Group

	idx := 0
	for {
		for idx < n && added[idx] {
			idx++
		}
		if idx >= n {
			break
		}

		var chain []*group.Group
		queue := []*group.Group{s.Groups[idx]}
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			if added[next.ID] {
				continue
			}
			added[next.ID] = true
			if len(next.Cells) == 0 {
				continue
			}
			chain = append(chain, next)
			queue = append(queue, s.getOverlaps(next)...)
		}

		if len(chain) > 0 {
			out = append(out, chain)
		}
	}

	return out
}

// solveRec recursively assigns 0/1 mine values to every unassigned cell
// of the chain, in group-by-group order, pruning any branch that can no
// longer satisfy a group's [min,max] bound. sol holds -1 for unassigned
// cells.
func (s *Solver) solveRec(chain []*group.Group, order []int, groupCellsID [][]int,
	freqNoMines []int, freqMinesPos [][]int, sol []int, allConfigs *[][]int, id int) {

	if id == len(order) {
		sumMines := 0
		for _, v := range sol {
			sumMines += v
		}
		cfg := append([]int(nil), sol...)
		*allConfigs = append(*allConfigs, cfg)
		freqNoMines[sumMines]++
		for i, v := range sol {
			freqMinesPos[sumMines][i] += v
		}
		return
	}

	g := chain[order[id]]
	cellsID := groupCellsID[order[id]]

	var toAssign []int
	c := len(cellsID)
	mx := g.MaxV
	mn := g.MinV
	for _, idx := range cellsID {
		if sol[idx] == -1 {
			toAssign = append(toAssign, idx)
			continue
		}
		c--
		mx -= sol[idx]
		mn -= sol[idx]
	}

	if mx < 0 {
		return
	}
	if mn > c {
		return
	}
	if mn < 0 {
		mn = 0
	}

	for v := mn; v <= mx; v++ {
		for _, try := range s.combinations(c, v) {
			for i, j := range toAssign {
				sol[j] = try[i]
			}
			s.solveRec(chain, order, groupCellsID, freqNoMines, freqMinesPos, sol, allConfigs, id+1)
		}
	}

	for _, idx := range toAssign {
		sol[idx] = -1
	}
}

// solveChain enumerates every valid mine assignment for one chain. It
// first picks a processing order that visits the most interconnected
// groups first, which prunes dead branches earlier in solveRec.
func (s *Solver) solveChain(chain []*group.Group) ChainSolution {
	n := len(chain)
	gid2idx := make(map[int]int, n)
	for i, g := range chain {
		gid2idx[g.ID] = i
	}

	overlaps := make([][]*group.Group, n)
	startIdx, maxOverlap := -1, -1
	for i, g := range chain {
		overlaps[i] = s.getOverlaps(g)
		if len(overlaps[i]) > maxOverlap {
			maxOverlap = len(overlaps[i])
			startIdx = i
		}
	}

	for i := range overlaps {
		ov := overlaps[i]
		sort.Slice(ov, func(a, b int) bool {
			return len(overlaps[gid2idx[ov[a].ID]]) > len(overlaps[gid2idx[ov[b].ID]])
		})
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return len(overlaps[order[a]]) > len(overlaps[order[b]])
	})

	existed := make([]bool, n)
	processQ := make([]int, 0, n)
	existed[startIdx] = true
	processQ = append(processQ, startIdx)
	for i := 0; i < n; i++ {
		for _, g := range overlaps[order[i]] {
			idx := gid2idx[g.ID]
			if existed[idx] {
				continue
			}
			existed[idx] = true
			processQ = append(processQ, idx)
		}
	}

	relatedSet := make(map[int]bool)
	for _, g := range chain {
		for _, id := range g.Cells {
			relatedSet[id] = true
		}
	}
	relatedCells := make([]int, 0, len(relatedSet))
	for id := range relatedSet {
		relatedCells = append(relatedCells, id)
	}
	sort.Ints(relatedCells)

	c2i := make(map[int]int, len(relatedCells))
	for i, id := range relatedCells {
		c2i[id] = i
	}

	nCells := len(relatedCells)
	freqNoMines := make([]int, nCells+1)
	freqMinesPos := make([][]int, nCells+1)
	for i := range freqMinesPos {
		freqMinesPos[i] = make([]int, nCells)
	}

	groupCellsID := make([][]int, n)
	for i, g := range chain {
		ids := make([]int, len(g.Cells))
		for j, id := range g.Cells {
			ids[j] = c2i[id]
		}
		groupCellsID[i] = ids
	}

	sol := make([]int, nCells)
	for i := range sol {
		sol[i] = -1
	}

	var allConfigs [][]int
	s.solveRec(chain, processQ, groupCellsID, freqNoMines, freqMinesPos, sol, &allConfigs, 0)

	var noMines, freqNoMinesOut []int
	var freqMinesPosOut [][]int
	for i := 0; i <= nCells; i++ {
		if freqNoMines[i] == 0 {
			continue
		}
		noMines = append(noMines, i)
		freqNoMinesOut = append(freqNoMinesOut, freqNoMines[i])
		freqMinesPosOut = append(freqMinesPosOut, freqMinesPos[i])
	}

	return ChainSolution{
		RelatedCells: relatedCells,
		NoMines:      noMines,
		FreqNoMines:  freqNoMinesOut,
		FreqMinesPos: freqMinesPosOut,
		AllConfigs:   allConfigs,
	}
}
