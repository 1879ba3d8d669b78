// Package components holds reusable rendering helpers for CLI output.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/bnema/sitectl/internal/adapters/in/cli/ui/styles"
	"github.com/bnema/sitectl/internal/domain"
)

// TableColumn defines a table column. A zero Width leaves the column unbounded.
type TableColumn struct {
	Title string
	Width int
}

// TableModel is a styled table component.
type TableModel struct {
	columns     []TableColumn
	rows        [][]string
	border      lipgloss.Border
	borderStyle lipgloss.Style
	headerStyle lipgloss.Style
	cellStyle   lipgloss.Style
}

// TableOption configures a TableModel.
type TableOption func(*TableModel)

// NewTable creates a new styled table.
func NewTable(opts ...TableOption) *TableModel {
	t := &TableModel{
		border:      lipgloss.RoundedBorder(),
		borderStyle: styles.Theme.TableBorder,
		headerStyle: styles.Theme.TableHeader,
		cellStyle:   styles.Theme.TableCell,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// WithColumns sets the table columns.
func WithColumns(cols []TableColumn) TableOption {
	return func(t *TableModel) {
		t.columns = cols
	}
}

// WithRows sets the table rows.
func WithRows(rows [][]string) TableOption {
	return func(t *TableModel) {
		t.rows = rows
	}
}

// WithPlainStyles drops colors and padding, for tests and dumb terminals.
func WithPlainStyles() TableOption {
	return func(t *TableModel) {
		t.headerStyle = lipgloss.NewStyle()
		t.cellStyle = lipgloss.NewStyle()
		t.borderStyle = lipgloss.NewStyle()
	}
}

// Render renders the table as a string.
func (t *TableModel) Render() string {
	if len(t.columns) == 0 {
		return ""
	}

	headers := make([]string, len(t.columns))
	for i, col := range t.columns {
		headers[i] = truncateCell(col.Title, col.Width)
	}

	rows := make([][]string, len(t.rows))
	for r, row := range t.rows {
		rows[r] = make([]string, len(row))
		for c, cell := range row {
			rows[r][c] = truncateCell(cell, t.columnWidth(c))
		}
	}

	return table.New().
		Border(t.border).
		BorderStyle(t.borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := t.cellStyle
			if row == table.HeaderRow {
				s = t.headerStyle
			}
			if w := t.columnWidth(col); w > 0 {
				s = s.Width(w).MaxWidth(w)
			}
			return s
		}).
		String()
}

func (t *TableModel) columnWidth(col int) int {
	if col < 0 || col >= len(t.columns) {
		return 0
	}
	return t.columns[col].Width
}

// truncateCell shortens value to maxWidth display cells, ending in "...".
// Styled (ANSI) values are returned unchanged.
func truncateCell(value string, maxWidth int) string {
	if strings.Contains(value, "\x1b[") {
		return value
	}
	if maxWidth <= 0 || runewidth.StringWidth(value) <= maxWidth {
		return value
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	target := maxWidth - 3
	var b strings.Builder
	width := 0
	g := uniseg.NewGraphemes(value)
	for g.Next() {
		w := runewidth.StringWidth(g.Str())
		if width+w > target {
			break
		}
		b.WriteString(g.Str())
		width += w
	}
	return b.String() + "..."
}

// SiteTable renders sites with a mode badge per row.
func SiteTable(sites []domain.Site, opts ...TableOption) string {
	rows := make([][]string, 0, len(sites))
	for _, s := range sites {
		backend := s.Backend
		if backend == "" {
			backend = "-"
		}
		rows = append(rows, []string{s.Domain, backend, styles.RenderModeBadge(string(s.Mode))})
	}

	opts = append([]TableOption{
		WithColumns([]TableColumn{
			{Title: "DOMAIN", Width: 40},
			{Title: "BACKEND", Width: 40},
			{Title: "MODE"},
		}),
		WithRows(rows),
	}, opts...)
	return NewTable(opts...).Render()
}
