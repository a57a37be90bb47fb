package presenter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

var (
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	metaStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#d29922"))
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e")).Italic(true).Padding(1, 2)
)

// linesPerRow is the rendered height of one row including its spacer.
const linesPerRow = 4

// Render draws rows as a list with the cursor row highlighted. height limits
// the output to the rows that fit; zero means unlimited.
func Render(rows []Row, cursor, width, height int) string {
	if len(rows) == 0 {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	start, end := visibleWindow(len(rows), cursor, height)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderRow(rows[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// RenderEmpty draws a fixed empty-state message.
func RenderEmpty(msg string) string {
	return emptyStyle.Render(msg)
}

func renderRow(r Row, selected bool, width int) string {
	inner := width - 2
	if inner < 10 {
		inner = 10
	}

	marker := "  "
	title := titleStyle
	if selected {
		marker = cursorStyle.Render("▌ ")
		title = selectedStyle
	}

	lines := []string{
		marker + categoryStyle.Render(Truncate(strings.ToUpper(r.Category), inner)),
		marker + title.Render(Truncate(r.Title, inner)),
	}

	meta := r.Date
	if r.ShowAuthor {
		meta = r.Date + " · " + r.Author
	}
	lines = append(lines, marker+metaStyle.Render(Truncate(meta, inner)))

	return strings.Join(lines, "\n")
}

// visibleWindow picks the slice of rows that keeps cursor on screen.
func visibleWindow(n, cursor, height int) (int, int) {
	if height <= 0 {
		return 0, n
	}
	fit := height / linesPerRow
	if fit < 1 {
		fit = 1
	}
	if fit >= n {
		return 0, n
	}

	start := cursor - fit/2
	if start < 0 {
		start = 0
	}
	if start+fit > n {
		start = n - fit
	}
	return start, start + fit
}

// Truncate shortens s to at most width terminal cells, adding an ellipsis.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
