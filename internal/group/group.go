// Package group implements the constraint algebra over sets of
// undiscovered cells: a Group pairs a set of cell IDs with an inclusive
// [Min, Max] bound on how many of those cells are mines.
//
// Groups are plain data — they never mutate a board.Board. The owning
// solver is responsible for assigning dense IDs, wiring cell
// back-references, and deciding what to do with groups this package
// returns (merge them in, disable them, compact the list).
package group

import (
	"sort"

	"github.com/herbhall/mineprobe/internal/board"
)

// Relation classifies how two groups' cell sets relate to each other.
type Relation int

const (
	Disjoint Relation = iota - 2
	Subset
	Equal
	Superset
	Joint
)

// Group is a set of undiscovered-cell IDs with a mine-count bound.
type Group struct {
	Cells []int // sorted, deduplicated cell IDs (board.Board.ID)
	MinV  int
	MaxV  int
	ID    int // dense index in the owning solver's group list; -1 until added

	Disabled bool
}

func sortedUnique(cells []int) []int {
	out := append([]int(nil), cells...)
	sort.Ints(out)
	out = out[:unique(out)]
	return out
}

func unique(s []int) int {
	if len(s) == 0 {
		return 0
	}
	n := 1
	for i := 1; i < len(s); i++ {
		if s[i] != s[n-1] {
			s[n] = s[i]
			n++
		}
	}
	return n
}

// New builds a group from an arbitrary cell-ID set. maxMines, if >= 0,
// caps MaxV below len(cells) (used when a parent bound is known).
func New(cells []int, maxMines int) *Group {
	cs := sortedUnique(cells)
	maxV := len(cs)
	if maxMines >= 0 && maxMines < maxV {
		maxV = maxMines
	}
	return &Group{Cells: cs, MinV: 0, MaxV: maxV, ID: -1}
}

// NewExact builds a group with an explicit [minV, maxV] bound, without
// clamping against len(cells). Used when the bound is already known, as
// when deriving a group from a revealed number.
func NewExact(cells []int, minV, maxV int) *Group {
	return &Group{Cells: sortedUnique(cells), MinV: minV, MaxV: maxV, ID: -1}
}

// FromNumberedCell builds the group implied by a revealed number at
// (row, col): its undiscovered neighbors, bounded by the number of mines
// still unaccounted for after subtracting already-flagged neighbors.
// Returns nil if the cell is not a revealed number.
func FromNumberedCell(b *board.Board, row, col int) *Group {
	cell := b.Cell(row, col)
	if cell == nil || cell.Value < 0 {
		return nil
	}
	mines := cell.Value

	var cells []int
	for _, n := range b.Neighbors(row, col) {
		v := b.Cell(n[0], n[1]).Value
		if v >= 0 {
			continue
		}
		if v == board.Undiscovered {
			cells = append(cells, b.ID(n[0], n[1]))
		} else if v == board.Flag {
			mines-- // flagged neighbor already accounted for
		}
	}

	return NewExact(cells, mines, mines)
}

func intersectSorted(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func subtractSorted(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) {
		if j >= len(b) || a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else if a[i] > b[j] {
			j++
		} else {
			i++
			j++
		}
	}
	return out
}

// Intersect returns the cell IDs shared between g and other.
func (g *Group) Intersect(other []int) []int {
	return intersectSorted(g.Cells, sortedUnique(other))
}

// Subtract returns g's cell IDs with other's removed.
func (g *Group) Subtract(other []int) []int {
	return subtractSorted(g.Cells, sortedUnique(other))
}

// IsDisjoint reports whether g and other share no cells.
func (g *Group) IsDisjoint(other *Group) bool {
	return len(intersectSorted(g.Cells, other.Cells)) == 0
}

// RelationTo classifies how g's cell set relates to other's.
func (g *Group) RelationTo(other *Group) Relation {
	ilen := len(intersectSorted(g.Cells, other.Cells))
	len1, len2 := len(g.Cells), len(other.Cells)

	switch {
	case ilen == len1 && len1 == len2:
		return Equal
	case ilen == len1:
		return Subset
	case ilen == len2:
		return Superset
	case ilen != 0:
		return Joint
	default:
		return Disjoint
	}
}

// Sync tightens g and other's bounds given that, together, their
// (disjoint) cells must hold between minV and maxV mines. A bound of -1
// means "no constraint on that side". Returns a bitmask: bit 0 set if g
// changed, bit 1 set if other changed. No-ops (returns 0) if g and other
// are not disjoint.
func (g *Group) Sync(other *Group, minV, maxV int) int {
	if !g.IsDisjoint(other) {
		return 0
	}

	t1 := g.MinV + other.MaxV
	t2 := g.MaxV + other.MinV
	out := 0

	if minV != -1 {
		if t1 < minV {
			g.MinV += minV - t1
			out |= 1
		}
		if t2 < minV {
			other.MinV += minV - t2
			out |= 2
		}
	}

	if maxV != -1 {
		if t1 > maxV {
			other.MaxV -= t1 - maxV
			out |= 2
		}
		if t2 > maxV {
			g.MaxV -= t2 - maxV
			out |= 1
		}
	}

	return out
}

// Merge tightens g in place against an equal-set peer, disabling other.
// It is a no-op (returning true) unless g and other's cell sets are
// exactly equal. Returns false if the tightened range is empty
// (contradiction).
func (g *Group) Merge(other *Group) bool {
	if g.RelationTo(other) != Equal {
		return true
	}

	if other.MinV > g.MinV {
		g.MinV = other.MinV
	}
	if other.MaxV < g.MaxV {
		g.MaxV = other.MaxV
	}

	if g.MinV > g.MaxV {
		return false
	}

	other.Disabled = true
	return true
}

// Subcross handles the case where other's cell set is a superset of g's:
// it returns the one new group for other \ g, synced against other's
// bound.
func (g *Group) Subcross(other *Group) []*Group {
	diff := other.Subtract(g.Cells)
	newGroup := New(diff, -1)
	g.Sync(newGroup, other.MinV, other.MaxV)
	return []*Group{newGroup}
}

// Cross splits two overlapping groups into up to three new groups: the
// parts exclusive to g, the shared intersection, and the part exclusive
// to other. Each exclusive part is synced with the intersection against
// its own parent's bound, so the intersection is tightened by both
// parents.
func (g *Group) Cross(other *Group) []*Group {
	switch g.RelationTo(other) {
	case Disjoint:
		return nil
	case Subset:
		return g.Subcross(other)
	case Superset:
		return other.Subcross(g)
	}

	inter := g.Intersect(other.Cells)
	left := g.Subtract(inter)
	right := other.Subtract(inter)

	g1 := New(left, -1)
	g2 := New(inter, -1)
	g3 := New(right, -1)

	g1.Sync(g2, g.MinV, g.MaxV)
	g3.Sync(g2, other.MinV, other.MaxV)
	g1.Sync(g2, g.MinV, g.MaxV)

	return []*Group{g1, g2, g3}
}
