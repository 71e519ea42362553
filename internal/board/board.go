// Package board models a Minesweeper grid as read from the host layer:
// revealed numbers, flags, proven-safe cells, and undiscovered cells.
package board

import "fmt"

// Cell values, as they appear in the raw input grid.
const (
	Floating     = -4 // unused/invalid sentinel
	Safe         = -3 // proven safe, not yet clicked
	Flag         = -2 // flagged as a mine
	Undiscovered = -1 // not yet revealed
	// 0..8 are revealed numbers, used directly as the grid value.
)

// Cell is a single square of the board.
type Cell struct {
	Row, Col int
	Value    int     // Floating, Safe, Flag, Undiscovered, or 0..8
	MinePerc float64 // -1 = unpredicted, 0..100 = probability percent

	// Groups holds the IDs (indices into Solver.Groups) of every active
	// group that currently contains this cell. Non-owning back-reference,
	// kept in sync whenever groups are created, merged, crossed, or
	// disabled.
	Groups []int

	Disabled bool
}

// newCell builds a cell at (r, c) with the given raw value, deriving the
// initial MinePerc: a flag starts at 100%, a revealed number or a
// proven-safe cell at 0%, everything else unpredicted.
func newCell(r, c, value int) Cell {
	perc := -1.0
	if value == Flag {
		perc = 100
	} else if value >= 0 || value == Safe {
		perc = 0
	}
	return Cell{Row: r, Col: c, Value: value, MinePerc: perc}
}

// IsUnpredicted reports whether this cell is undiscovered and has not yet
// received a probability estimate.
func (c *Cell) IsUnpredicted() bool {
	return c.Value == Undiscovered && c.MinePerc < 0
}

// Board is a H×W grid of cells, plus the number of cells that were
// Undiscovered in the input grid (set once by New; the propagator's
// termination check compares its resolved cells against it).
type Board struct {
	Cells    [][]Cell
	Height   int
	Width    int
	Unsolved int
}

// New builds a board from a raw row-major integer grid. Every entry must
// be Floating, Safe, Flag, Undiscovered, or a number 0..8.
func New(raw [][]int) (*Board, error) {
	if len(raw) == 0 || len(raw[0]) == 0 {
		return nil, fmt.Errorf("board: empty grid")
	}
	h := len(raw)
	w := len(raw[0])

	b := &Board{
		Cells:  make([][]Cell, h),
		Height: h,
		Width:  w,
	}
	for i := 0; i < h; i++ {
		if len(raw[i]) != w {
			return nil, fmt.Errorf("board: ragged row %d: got %d cols, want %d", i, len(raw[i]), w)
		}
		b.Cells[i] = make([]Cell, w)
		for j := 0; j < w; j++ {
			b.Cells[i][j] = newCell(i, j, raw[i][j])
			if raw[i][j] == Undiscovered {
				b.Unsolved++
			}
		}
	}
	return b, nil
}

// IsValidCoord reports whether (r, c) lies inside the board.
func (b *Board) IsValidCoord(r, c int) bool {
	return r >= 0 && r < b.Height && c >= 0 && c < b.Width
}

// Cell returns a pointer to the cell at (r, c), or nil if out of range.
func (b *Board) Cell(r, c int) *Cell {
	if !b.IsValidCoord(r, c) {
		return nil
	}
	return &b.Cells[r][c]
}

// ID returns the dense cell identifier used by groups (row-major index).
func (b *Board) ID(r, c int) int {
	return r*b.Width + c
}

// CoordOf inverts ID.
func (b *Board) CoordOf(id int) (r, c int) {
	return id / b.Width, id % b.Width
}

// CellByID returns a pointer to the cell with the given dense ID.
func (b *Board) CellByID(id int) *Cell {
	r, c := b.CoordOf(id)
	return b.Cell(r, c)
}

// Neighbors returns the up-to-8 valid coordinates around (r, c).
func (b *Board) Neighbors(r, c int) [][2]int {
	var out [][2]int
	for nr := r - 1; nr <= r+1; nr++ {
		for nc := c - 1; nc <= c+1; nc++ {
			if nr == r && nc == c {
				continue
			}
			if b.IsValidCoord(nr, nc) {
				out = append(out, [2]int{nr, nc})
			}
		}
	}
	return out
}

// NoNeighborCells returns every undiscovered cell none of whose 8
// neighbors is a revealed number. These cells participate in no group and
// are off-board from constraint reasoning; component E distributes the
// residual mine probability uniformly across them.
func (b *Board) NoNeighborCells() []*Cell {
	var out []*Cell
	for i := 0; i < b.Height; i++ {
		for j := 0; j < b.Width; j++ {
			if b.Cells[i][j].Value != Undiscovered {
				continue
			}
			hasNeighbor := false
			for _, n := range b.Neighbors(i, j) {
				if b.Cells[n[0]][n[1]].Value >= 0 {
					hasNeighbor = true
					break
				}
			}
			if !hasNeighbor {
				out = append(out, b.Cell(i, j))
			}
		}
	}
	return out
}
