// Package solver runs constraint propagation to a fixpoint (component C),
// partitions the remaining groups into independent chains and enumerates
// each chain's valid mine assignments (component D), and composes the
// per-chain distributions into per-cell marginal mine probabilities
// (component E).
package solver

import (
	"errors"
	"sort"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/group"
)

// ErrMalformedInput is returned when a numbered cell's neighborhood
// constraint is already arithmetically impossible at construction time
// (e.g. a revealed "2" with only one undiscovered, unflagged neighbor).
var ErrMalformedInput = errors.New("solver: malformed input")

// ErrInfeasible is returned when constraint propagation derives an empty
// or negative [min,max] bound for some group.
var ErrInfeasible = errors.New("solver: infeasible board")

// Solver owns the board and the dense, ID-indexed group list, and runs
// the propagate/enumerate/compose pipeline over them.
type Solver struct {
	Board  *board.Board
	Groups []*group.Group

	solvedCells map[int]bool // cell ID -> in solvedCells
	NoNeighbors []*board.Cell
	groupedCells []*board.Cell // cells that belong to at least one group

	CanEndgame  bool
	validInput  bool
	inputSafe   int // Safe cells from the input grid, also held in solvedCells

	combCache map[uint64][][]int
}

// New builds a solver from a board, constructing one group per revealed
// number and validating every group's bound against its own cell count.
func New(b *board.Board) (*Solver, error) {
	s := &Solver{
		Board:       b,
		solvedCells: make(map[int]bool),
		combCache:   make(map[uint64][][]int),
		validInput:  true,
	}

	validInput := true
	for i := 0; i < b.Height; i++ {
		for j := 0; j < b.Width; j++ {
			cell := b.Cell(i, j)
			if cell.Value == board.Safe {
				cell.MinePerc = 0
				s.solvedCells[b.ID(i, j)] = true
				s.inputSafe++
				continue
			}
			if cell.Value < 0 {
				continue
			}

			g := group.FromNumberedCell(b, i, j)
			if g == nil {
				continue
			}
			if len(g.Cells) == 0 && g.MinV == 0 && g.MaxV == 0 {
				continue
			}
			if g.MaxV < 0 || g.MinV > len(g.Cells) {
				validInput = false
			}
			s.addGroup(g)
		}
	}
	s.validInput = validInput
	if !validInput {
		return s, ErrMalformedInput
	}

	s.NoNeighbors = b.NoNeighborCells()

	for i := 0; i < b.Height; i++ {
		for j := 0; j < b.Width; j++ {
			cell := b.Cell(i, j)
			if len(cell.Groups) > 0 {
				s.groupedCells = append(s.groupedCells, cell)
			}
		}
	}

	return s, nil
}

// SolvedCells returns every cell the propagator has resolved to SAFE or
// FLAG, in no particular order.
func (s *Solver) SolvedCells() []*board.Cell {
	out := make([]*board.Cell, 0, len(s.solvedCells))
	for id := range s.solvedCells {
		out = append(out, s.Board.CellByID(id))
	}
	return out
}

// ChainSolutions partitions the solver's active groups into chains and
// enumerates each one, in one call. Exported for the endgame solver,
// which needs the same per-chain configuration data generalSolve
// consumes internally.
func (s *Solver) ChainSolutions() []ChainSolution {
	chains := s.getGroupChains()
	out := make([]ChainSolution, len(chains))
	for i, c := range chains {
		out[i] = s.solveChain(c)
	}
	return out
}

// addGroup assigns the next dense ID to g, appends it to the solver's
// group list, and wires every cell it touches to reference it back.
func (s *Solver) addGroup(g *group.Group) {
	g.ID = len(s.Groups)
	s.Groups = append(s.Groups, g)
	for _, id := range g.Cells {
		c := s.Board.CellByID(id)
		c.Groups = append(c.Groups, g.ID)
	}
}

// getOverlaps returns every other active group that shares at least one
// cell with g.
func (s *Solver) getOverlaps(g *group.Group) []*group.Group {
	seen := map[int]bool{g.ID: true}
	var out []*group.Group
	for _, id := range g.Cells {
		for _, gid := range s.Board.CellByID(id).Groups {
			if seen[gid] {
				continue
			}
			seen[gid] = true
			out = append(out, s.Groups[gid])
		}
	}
	return out
}

// crossAllGroups crosses every pair of groups sharing a cell, appending
// any new groups produced. Bounded to pairs present at call time, so
// groups created mid-pass don't themselves get crossed again this round.
func (s *Solver) crossAllGroups() {
	maxGroupID := len(s.Groups)

	for _, c := range s.groupedCells {
		if len(c.Groups) <= 1 {
			continue
		}
		n := len(c.Groups)
		for x := 0; x < n-1; x++ {
			gx := s.Groups[c.Groups[x]]
			if gx.Disabled || gx.ID >= maxGroupID {
				continue
			}
			for y := x + 1; y < n; y++ {
				gy := s.Groups[c.Groups[y]]
				if gy.Disabled || gy.ID >= maxGroupID {
					continue
				}
				for _, ng := range gx.Cross(gy) {
					s.addGroup(ng)
				}
			}
		}
	}
}

// filterTrivial disables every group whose bound spans its full cell
// range [0, size] — it carries no constraint information.
func (s *Solver) filterTrivial() {
	for _, g := range s.Groups {
		if g.Disabled {
			continue
		}
		if g.MaxV == len(g.Cells) && g.MinV == 0 {
			g.Disabled = true
		}
	}
}

// cleanDisabled compacts the group list and every cell's group-ID list,
// dropping disabled groups and reassigning the survivors contiguous IDs.
func (s *Solver) cleanDisabled() {
	for i := 0; i < s.Board.Height; i++ {
		for j := 0; j < s.Board.Width; j++ {
			c := s.Board.Cell(i, j)
			if c.Value != board.Undiscovered {
				c.Groups = nil
				continue
			}
			kept := c.Groups[:0]
			for _, gid := range c.Groups {
				if !s.Groups[gid].Disabled {
					kept = append(kept, gid)
				}
			}
			c.Groups = kept
		}
	}

	kept := s.Groups[:0]
	for _, g := range s.Groups {
		if g.Disabled {
			continue
		}
		g.ID = len(kept)
		kept = append(kept, g)
	}
	s.Groups = kept

	// Cell-side group IDs above now refer to pre-compaction IDs; rebuild
	// them from the surviving groups' own cell lists.
	for i := 0; i < s.Board.Height; i++ {
		for j := 0; j < s.Board.Width; j++ {
			s.Board.Cell(i, j).Groups = nil
		}
	}
	s.groupedCells = s.groupedCells[:0]
	for _, g := range s.Groups {
		for _, id := range g.Cells {
			s.Board.CellByID(id).Groups = append(s.Board.CellByID(id).Groups, g.ID)
		}
	}
	for i := 0; i < s.Board.Height; i++ {
		for j := 0; j < s.Board.Width; j++ {
			c := s.Board.Cell(i, j)
			if len(c.Groups) > 0 {
				s.groupedCells = append(s.groupedCells, c)
			}
		}
	}
}

// apply stamps every cell of a fully-determined group (min == max == 0 or
// == size) SAFE or FLAG, and records it in solvedCells. Returns true if
// any cell was newly resolved.
func (s *Solver) apply() bool {
	reduced := false
	for _, g := range s.Groups {
		if g.Disabled {
			continue
		}
		if g.MinV != g.MaxV || (g.MaxV != len(g.Cells) && g.MaxV != 0) {
			continue
		}
		reduced = true
		for _, id := range g.Cells {
			c := s.Board.CellByID(id)
			if g.MinV == 0 {
				c.Value = board.Safe
				c.MinePerc = 0
			} else {
				c.Value = board.Flag
				c.MinePerc = 100
			}
			s.solvedCells[id] = true
		}
	}
	return reduced
}

// syncAllGroups merges every pair of equal-cell-set groups sharing a
// cell, tightening their bounds. Returns false on contradiction.
func (s *Solver) syncAllGroups() bool {
	for _, c := range s.groupedCells {
		if len(c.Groups) <= 1 {
			continue
		}
		n := len(c.Groups)
		for i := 0; i < n-1; i++ {
			gi := s.Groups[c.Groups[i]]
			if gi.Disabled {
				continue
			}
			for j := i + 1; j < n; j++ {
				gj := s.Groups[c.Groups[j]]
				if gj.Disabled {
					continue
				}
				if !gi.Merge(gj) {
					return false
				}
			}
		}
	}
	return true
}

// isDone reports whether every originally-undiscovered cell has been
// resolved.
func (s *Solver) isDone() bool {
	return s.Board.Unsolved == len(s.solvedCells)-s.inputSafe
}

func (s *Solver) sortedSolvedCells() []int {
	out := make([]int, 0, len(s.solvedCells))
	for id := range s.solvedCells {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// filter disables every group touching a solved cell, replacing partially
// covered groups with a reduced successor whose bound accounts for how
// many of the intersecting solved cells turned out to be mines. Returns
// false on contradiction.
func (s *Solver) filter() bool {
	solved := s.sortedSolvedCells()
	maxID := len(s.Groups)
	for i := 0; i < maxID; i++ {
		g := s.Groups[i]
		if g.Disabled {
			continue
		}
		intersect := g.Intersect(solved)
		if len(intersect) == 0 {
			continue
		}

		g.Disabled = true
		if len(intersect) == len(g.Cells) {
			continue
		}

		newG := group.New(g.Subtract(solved), -1)
		newG.MinV = g.MinV
		newG.MaxV = g.MaxV
		for _, id := range intersect {
			if s.Board.CellByID(id).MinePerc == 100 {
				newG.MinV--
				newG.MaxV--
				if newG.MaxV < 0 {
					return false
				}
				if newG.MinV < 0 {
					newG.MinV = 0
				}
			}
		}
		s.addGroup(newG)
	}

	s.filterTrivial()
	return true
}

// iterativeSolve runs crossing/merging/applying/filtering to a fixpoint.
// Returns false if propagation finds a contradiction.
func (s *Solver) iterativeSolve() bool {
	for !s.isDone() {
		s.crossAllGroups()
		progressed := false
		for {
			if !s.syncAllGroups() {
				return false
			}
			if !s.apply() {
				break
			}
			progressed = true
			if !s.filter() {
				return false
			}
		}
		if !progressed {
			break
		}
	}
	s.filterTrivial()
	s.cleanDisabled()
	return true
}
