// Package explorer is a small interactive terminal UI for trying queries
// against a loaded catalog and seeing the inferred nullability of each
// projected column without leaving the terminal.
package explorer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nullsql/nullsql/pkg/catalog"
	"github.com/nullsql/nullsql/pkg/dialect"
	"github.com/nullsql/nullsql/pkg/nullable"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	resultStyle = lipgloss.NewStyle().PaddingLeft(2)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

type tableItem struct {
	*catalog.TableDescriptor
}

func (t tableItem) Title() string { return t.QualifiedName() }
func (t tableItem) Description() string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}
func (t tableItem) FilterValue() string { return t.QualifiedName() }

// Model is the bubbletea model backing `nullsql explore`.
type Model struct {
	cat     *catalog.Catalog
	dialect dialect.Dialect
	input   textarea.Model
	tables  list.Model
	result  string
	err     error
}

// New builds an explorer Model bound to cat.
func New(cat *catalog.Catalog, d dialect.Dialect) Model {
	ta := textarea.New()
	ta.Placeholder = "SELECT ..."
	ta.Focus()

	items := make([]list.Item, 0, len(cat.Tables()))
	for _, t := range cat.Tables() {
		items = append(items, tableItem{t})
	}
	tables := list.New(items, list.NewDefaultDelegate(), 0, 0)
	tables.Title = "Catalog"

	return Model{cat: cat, dialect: d, input: ta, tables: tables}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return textarea.Blink }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.run()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.tables.SetSize(msg.Width/3, msg.Height-4)
		m.input.SetWidth(2 * msg.Width / 3)
		m.input.SetHeight(msg.Height / 3)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) run() {
	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		return
	}
	a, err := nullable.New(query, m.cat, m.dialect)
	if err != nil {
		m.err = err
		m.result = ""
		return
	}
	got, err := a.Infer(nil)
	if err != nil {
		m.err = err
		m.result = ""
		return
	}
	m.err = nil
	var b strings.Builder
	for i, v := range got {
		fmt.Fprintf(&b, "column%d\tnullable=%v\n", i+1, v)
	}
	m.result = b.String()
}

// View implements tea.Model.
func (m Model) View() string {
	left := m.tables.View()
	right := titleStyle.Render("Query (Ctrl+R to run, Esc to quit)") + "\n" + m.input.View()
	if m.err != nil {
		right += "\n" + errorStyle.Render(m.err.Error())
	} else if m.result != "" {
		right += "\n" + resultStyle.Render(m.result)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}
