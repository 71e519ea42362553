// Package tui drives the live "--watch" board view: it re-reads and
// re-solves the input file on an interval so a human player editing
// minesweeper.inp by hand can see probabilities refresh without
// restarting the CLI. It never touches the core solver packages except
// through internal/host's FFI-shaped entry points — same boundary the
// plain stdout renderer uses.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/herbhall/mineprobe/internal/board"
	"github.com/herbhall/mineprobe/internal/config"
	"github.com/herbhall/mineprobe/internal/host"
)

// refreshInterval is how often the watch view re-reads the input file.
const refreshInterval = time.Second

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Model is the Bubbletea model for the live probability view.
type Model struct {
	path         string
	minesOverride int // -1 means "use the count from the input file"
	theme        config.Theme

	width, height int

	rows, cols int
	mines      int
	flat       []int
	probs      []float64
	canEndgame bool

	winProb          float64
	bestRow, bestCol int
	endgameValid     bool
	showEndgame      bool

	loadErr error
	done    bool
}

// New creates a watch-mode model that re-solves path on every tick.
// minesOverride, if >= 0, takes precedence over the mine count declared
// in the input file's first line.
func New(path string, minesOverride int, theme config.Theme) Model {
	return Model{
		path:          path,
		minesOverride: minesOverride,
		theme:         theme,
	}
}

// Init starts the refresh ticker; the first load happens on the
// initial tea.WindowSizeMsg bubbletea always sends on startup.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Done reports whether the user asked to quit.
func (m Model) Done() bool {
	return m.done
}

// Update handles ticks, resize, and key input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
		return m, nil

	case tickMsg:
		m.refresh()
		return m, tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.done = true
			return m, tea.Quit
		case "e":
			m.showEndgame = !m.showEndgame
			return m, nil
		}
	}

	return m, nil
}

// refresh re-reads and re-solves the input file. A load or solve error
// is kept on the model and surfaced in View rather than panicking or
// exiting; the previous successful result (if any) stays on the model,
// but View shows only the error until a later refresh succeeds.
func (m *Model) refresh() {
	parsed, err := host.ParseBoardFile(m.path)
	if err != nil {
		m.loadErr = err
		return
	}

	mines := parsed.Mines
	if m.minesOverride >= 0 {
		mines = m.minesOverride
	}

	probs, canEndgame, valid := host.SolveBoard(parsed.Rows, parsed.Cols, parsed.Flat, mines)
	if !valid {
		m.loadErr = errMalformedOrInfeasible
		return
	}

	m.loadErr = nil
	m.rows, m.cols, m.mines = parsed.Rows, parsed.Cols, mines
	m.flat = parsed.Flat
	m.probs = probs
	m.canEndgame = canEndgame

	m.endgameValid = false
	if canEndgame {
		winProb, bestRow, bestCol, valid := host.SolveEndgame(parsed.Rows, parsed.Cols, parsed.Flat, mines)
		if valid {
			m.winProb, m.bestRow, m.bestCol = winProb, bestRow, bestCol
			m.endgameValid = true
		}
	}
}

var errMalformedOrInfeasible = simpleError("board is malformed or infeasible with the declared mine count")

type simpleError string

func (e simpleError) Error() string { return string(e) }

// View renders the full watch screen.
func (m Model) View() string {
	var sections []string

	sections = append(sections, titleStyle.Render("M I N E P R O B E"), "")

	if m.loadErr != nil {
		sections = append(sections, errorStyle.Render("error: "+m.loadErr.Error()), "",
			footerStyle.Render("watching "+m.path+" — Q Quit"))
		content := lipgloss.JoinVertical(lipgloss.Center, sections...)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}

	if m.flat == nil {
		sections = append(sections, statusStyle.Render("loading "+m.path+"..."))
		content := lipgloss.JoinVertical(lipgloss.Center, sections...)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}

	status := statusStyle.Render(
		"mines: " + itoa(m.mines) + "  cells: " + itoa(m.rows*m.cols) +
			"  endgame: " + yesNo(m.canEndgame))
	sections = append(sections, status, "", m.renderGrid(), "")

	if m.showEndgame {
		if m.endgameValid {
			best := "none (already determined)"
			if m.bestRow >= 0 {
				best = "(" + itoa(m.bestRow) + ", " + itoa(m.bestCol) + ")"
			}
			sections = append(sections,
				optionStyle.Render("win probability: "+percent(m.winProb*100)+"  best move: "+best), "")
		} else {
			sections = append(sections, optionStyle.Render("endgame not available for this board"), "")
		}
	}

	footer := "watching " + m.path + " — E Toggle endgame | Q Quit"
	sections = append(sections, footerStyle.Render(footer))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) renderGrid() string {
	var rows []string
	for r := 0; r < m.rows; r++ {
		var cells []string
		for c := 0; c < m.cols; c++ {
			v := m.flat[r*m.cols+c]
			p := m.probs[r*m.cols+c]
			isBest := m.showEndgame && m.endgameValid && r == m.bestRow && c == m.bestCol
			text := m.renderCell(v, p)
			style := m.cellStyle(v, p, isBest)
			cells = append(cells, style.Render(text))
		}
		rows = append(rows, joinCells(cells))
	}
	return joinRows(rows)
}

func (m Model) renderCell(v int, p float64) string {
	switch v {
	case board.Flag:
		return " F "
	case board.Safe:
		return " . "
	case board.Undiscovered:
		if p < 0 {
			return " ? "
		}
		return percent(p)
	default:
		return " " + itoa(v) + " "
	}
}

func (m Model) cellStyle(v int, p float64, isBest bool) lipgloss.Style {
	base := lipgloss.NewStyle().Width(5)
	fg := m.cellForeground(v, p)

	style := base.Foreground(fg)
	if isBest {
		style = style.Background(lipgloss.Color("#444444")).Bold(true)
	}
	return style
}

func (m Model) cellForeground(v int, p float64) lipgloss.Color {
	switch v {
	case board.Flag:
		return lipgloss.Color("#FF0000")
	case board.Safe:
		return lipgloss.Color("#00E632")
	case board.Undiscovered:
		if p < 0 {
			return lipgloss.Color("#808080")
		}
		return m.heatmapColor(p)
	default:
		return numberColor(v)
	}
}

// heatmapColor blends green (safe) to red (mined) in Luv space, keyed by
// mine probability percent, according to the configured theme.
func (m Model) heatmapColor(percentMine float64) lipgloss.Color {
	t := percentMine / 100
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	switch m.theme {
	case config.ThemeMono:
		return lipgloss.Color("#C0C0C0")
	case config.ThemeMatrix:
		green := colorful.Color{R: 0, G: 0.15 + 0.55*t, B: 0.05}
		return lipgloss.Color(green.Hex())
	default: // ThemeHeatmap
		safe := colorful.Color{R: 0, G: 0.7, B: 0.1}
		mined := colorful.Color{R: 0.9, G: 0, B: 0}
		blended := safe.BlendLuv(mined, t)
		return lipgloss.Color(blended.Hex())
	}
}

func numberColor(n int) lipgloss.Color {
	switch n {
	case 1:
		return lipgloss.Color("#0000FF")
	case 2:
		return lipgloss.Color("#008200")
	case 3:
		return lipgloss.Color("#FF0000")
	case 4:
		return lipgloss.Color("#000084")
	case 5:
		return lipgloss.Color("#840000")
	case 6:
		return lipgloss.Color("#008284")
	case 7:
		return lipgloss.Color("#840084")
	case 8:
		return lipgloss.Color("#808080")
	default:
		return lipgloss.Color("#FFFFFF")
	}
}

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("242"))

	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00E632"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF0000"))
)
