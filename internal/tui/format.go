package tui

import (
	"fmt"
	"strconv"
	"strings"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func percent(p float64) string {
	return fmt.Sprintf("%3.0f%%", p)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinCells(cells []string) string {
	return strings.Join(cells, "")
}

func joinRows(rows []string) string {
	return strings.Join(rows, "\n")
}
