// Package host adapts the core probability/endgame engine to the two
// FFI-shaped entry points a caller actually drives: a flat row-major
// board plus a mine count in, a flat probability buffer (or a win
// probability and move) out. Neither entry point ever propagates a Go
// error across the boundary — failures collapse to a single boolean,
// matching the "report validity, don't log or retry" error model the
// core packages implement.
package host

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/endgame"
	"github.com/herbhall/mineprobe/internal/solver"
)

// ParsedBoard is the decoded contents of a minesweeper.inp-format input
// file: dimensions, declared mine count, and the flat row-major grid.
type ParsedBoard struct {
	Rows, Cols int
	Mines      int
	Flat       []int
}

// ParseBoardFile reads the CLI input format spec.md §6 defines: a first
// line of "<H> <W> <mines>" followed by H rows of W whitespace-separated
// integers.
func ParseBoardFile(path string) (ParsedBoard, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is caller-supplied CLI input, same as the teacher's file loads
	if err != nil {
		return ParsedBoard{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(bufio.ScanWords)

	nextInt := func() (int, error) {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, fmt.Errorf("host: unexpected end of input")
		}
		return strconv.Atoi(scanner.Text())
	}

	rows, err := nextInt()
	if err != nil {
		return ParsedBoard{}, fmt.Errorf("host: reading rows: %w", err)
	}
	cols, err := nextInt()
	if err != nil {
		return ParsedBoard{}, fmt.Errorf("host: reading cols: %w", err)
	}
	mines, err := nextInt()
	if err != nil {
		return ParsedBoard{}, fmt.Errorf("host: reading mines: %w", err)
	}

	flat := make([]int, rows*cols)
	for i := range flat {
		v, err := nextInt()
		if err != nil {
			return ParsedBoard{}, fmt.Errorf("host: reading cell %d: %w", i, err)
		}
		flat[i] = v
	}

	return ParsedBoard{Rows: rows, Cols: cols, Mines: mines, Flat: flat}, nil
}

func buildBoard(rows, cols int, flat []int) (*board.Board, error) {
	if len(flat) != rows*cols {
		return nil, fmt.Errorf("host: flat board has %d cells, want %d", len(flat), rows*cols)
	}
	raw := make([][]int, rows)
	for r := 0; r < rows; r++ {
		raw[r] = append([]int(nil), flat[r*cols:(r+1)*cols]...)
	}
	return board.New(raw)
}

// SolveBoard runs constraint propagation and probability composition
// over a flat row-major board, returning a flat row-major probability
// buffer (in percent for every non-revealed cell, including cells the
// solver proved safe or flagged; -1 for revealed numbers and unpredicted
// cells) alongside the endgame
// eligibility flag. valid is false on any malformed or infeasible input,
// in which case probs is nil and canEndgame is false.
func SolveBoard(rows, cols int, flat []int, mines int) (probs []float64, canEndgame, valid bool) {
	b, err := buildBoard(rows, cols, flat)
	if err != nil {
		return nil, false, false
	}

	s, err := solver.New(b)
	if err != nil {
		return nil, false, false
	}

	if _, err := s.GeneralSolve(mines); err != nil {
		return nil, false, false
	}

	out := make([]float64, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := b.Cell(r, c)
			if cell.Value < 0 {
				out[r*cols+c] = cell.MinePerc
			} else {
				out[r*cols+c] = -1
			}
		}
	}

	return out, s.CanEndgame, true
}

// SolveEndgame runs the full propagation + configuration + expectimax
// pipeline and reports the optimal-play win probability and the move
// that achieves it. valid is false if the board is malformed or the
// endgame preconditions (configuration/cell budget) are exceeded, in
// which case bestRow and bestCol are -1 and winProb is 0.
func SolveEndgame(rows, cols int, flat []int, mines int) (winProb float64, bestRow, bestCol int, valid bool) {
	b, err := buildBoard(rows, cols, flat)
	if err != nil {
		return 0, -1, -1, false
	}

	e, err := endgame.New(b)
	if err != nil {
		return 0, -1, -1, false
	}

	result, err := e.Solve(mines)
	if err != nil {
		return 0, -1, -1, false
	}

	return result.WinProbability, result.BestRow, result.BestCol, true
}

// RenderProbabilities writes a human-readable board to w: each revealed
// number is printed bare, undiscovered cells as "[xxx.x%]", flags as
// "[100.0%]", and proven-safe cells as "[  0.0%]" — the exact format
// spec.md's boundary scenarios compare against.
func RenderProbabilities(w io.Writer, rows, cols int, flat []int, probs []float64) error {
	if len(flat) != rows*cols || len(probs) != rows*cols {
		return fmt.Errorf("host: board/probs length mismatch: %d cells, %d probs, want %d", len(flat), len(probs), rows*cols)
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := flat[r*cols+c]
			switch v {
			case board.Flag:
				if _, err := fmt.Fprint(w, "[100.0%] "); err != nil {
					return err
				}
			case board.Safe:
				if _, err := fmt.Fprint(w, "[  0.0%] "); err != nil {
					return err
				}
			case board.Undiscovered:
				if _, err := fmt.Fprintf(w, "[%5.1f%%] ", probs[r*cols+c]); err != nil {
					return err
				}
			default:
				if _, err := fmt.Fprintf(w, "    %d    ", v); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}
