// Package explore is an interactive terminal browser over a registry: the
// symbol library, the model library, and the starter materials.
package explore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matsolve/propgraph/internal/config"
	"github.com/matsolve/propgraph/internal/model"
	"github.com/matsolve/propgraph/internal/registry"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

type state int

const (
	stateMenu state = iota
	stateList
	stateDetail
)

var sections = []string{"symbols", "models", "presets"}

var sectionInfo = map[string]string{
	"symbols": "property types and canonical units",
	"models":  "equation models and their variables",
	"presets": "starter materials with measured values",
}

type Model struct {
	reg     *registry.Registry
	state   state
	cursor  int
	section string
	tbl     table.Model
	detail  string

	width  int
	height int
}

func New(reg *registry.Registry) *Model {
	return &Model{
		reg:    reg,
		state:  stateMenu,
		width:  80,
		height: 24,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.state == stateList {
			m.tbl.SetHeight(m.tableHeight())
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateMenu:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(sections)-1 {
				m.cursor++
			}
		case "enter", " ":
			m.section = sections[m.cursor]
			m.tbl = m.buildTable()
			m.state = stateList
		}
	case stateList:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "escape":
			m.state = stateMenu
		case "enter", " ":
			if row := m.tbl.SelectedRow(); row != nil {
				m.detail = m.buildDetail(row[0])
				m.state = stateDetail
			}
		default:
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
	case stateDetail:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q", "escape", "enter":
			m.state = stateList
		}
	}
	return m, nil
}

func (m Model) tableHeight() int {
	h := m.height - 8
	if h < 5 {
		h = 5
	}
	return h
}

func (m Model) buildTable() table.Model {
	var cols []table.Column
	var rows []table.Row

	switch m.section {
	case "symbols":
		cols = []table.Column{
			{Title: "name", Width: 30},
			{Title: "units", Width: 26},
			{Title: "category", Width: 10},
			{Title: "builtin", Width: 7},
		}
		for _, name := range m.reg.Symbols.Names() {
			s, _ := m.reg.Symbols.Get(name)
			builtin := ""
			if m.reg.Symbols.IsBuiltin(name) {
				builtin = "yes"
			}
			rows = append(rows, table.Row{name, s.Units.String(), s.Category, builtin})
		}
	case "models":
		cols = []table.Column{
			{Title: "name", Width: 34},
			{Title: "inputs", Width: 22},
			{Title: "outputs", Width: 22},
		}
		for _, name := range m.reg.Models.Names() {
			md, _ := m.reg.Models.Get(name)
			rows = append(rows, table.Row{
				name,
				strings.Join(md.InputSymbols(), ", "),
				strings.Join(md.OutputSymbols(), ", "),
			})
		}
	case "presets":
		cols = []table.Column{
			{Title: "name", Width: 20},
			{Title: "properties", Width: 50},
		}
		names := config.ListPresets()
		sort.Strings(names)
		for _, name := range names {
			props := make([]string, 0)
			for p := range config.GetPreset(name) {
				props = append(props, p)
			}
			sort.Strings(props)
			rows = append(rows, table.Row{name, strings.Join(props, ", ")})
		}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(lipgloss.Color("238")).
		Foreground(lipgloss.Color("86")).
		Bold(false)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("236")).
		Bold(false)
	t.SetStyles(styles)
	return t
}

func (m Model) buildDetail(name string) string {
	var b strings.Builder
	switch m.section {
	case "symbols":
		s, ok := m.reg.Symbols.Get(name)
		if !ok {
			return dim.Render("symbol no longer registered")
		}
		fmt.Fprintf(&b, "%s\n\n", cyan.Render(name))
		fmt.Fprintf(&b, "%s %s\n", dim.Render("units     "), white.Render(s.Units.String()))
		fmt.Fprintf(&b, "%s %s\n", dim.Render("category  "), white.Render(s.Category))
		fmt.Fprintf(&b, "%s %v\n", dim.Render("shape     "), s.Shape)
		if len(s.DisplayNames) > 0 {
			fmt.Fprintf(&b, "%s %s\n", dim.Render("display   "), strings.Join(s.DisplayNames, ", "))
		}
		if s.Complex {
			fmt.Fprintf(&b, "%s\n", green.Render("complex domain"))
		}
		if s.Comment != "" {
			fmt.Fprintf(&b, "\n%s\n", dim.Render(s.Comment))
		}
	case "models":
		md, ok := m.reg.Models.Get(name)
		if !ok {
			return dim.Render("model no longer registered")
		}
		fmt.Fprintf(&b, "%s\n\n", cyan.Render(name))
		if em, ok := md.(*model.EquationModel); ok {
			if em.Description() != "" {
				fmt.Fprintf(&b, "%s\n\n", dim.Render(em.Description()))
			}
			for _, eq := range em.Equations() {
				fmt.Fprintf(&b, "  %s\n", white.Render(eq))
			}
			b.WriteString("\n")
			vars := em.Dict().Variables
			varNames := make([]string, 0, len(vars))
			for v := range vars {
				varNames = append(varNames, v)
			}
			sort.Strings(varNames)
			for _, v := range varNames {
				fmt.Fprintf(&b, "  %s %s %s\n", green.Render(fmt.Sprintf("%-6s", v)), dim.Render("->"), vars[v])
			}
		} else {
			fmt.Fprintf(&b, "%s %s\n", dim.Render("inputs  "), strings.Join(md.InputSymbols(), ", "))
			fmt.Fprintf(&b, "%s %s\n", dim.Render("outputs "), strings.Join(md.OutputSymbols(), ", "))
		}
	case "presets":
		preset := config.GetPreset(name)
		if preset == nil {
			return dim.Render("unknown preset")
		}
		fmt.Fprintf(&b, "%s\n\n", cyan.Render(name))
		props := make([]string, 0, len(preset))
		for p := range preset {
			props = append(props, p)
		}
		sort.Strings(props)
		for _, p := range props {
			unit := ""
			if s, ok := m.reg.Symbols.Get(p); ok {
				unit = s.Units.String()
			}
			fmt.Fprintf(&b, "  %s %s %s\n", white.Render(fmt.Sprintf("%-24s", p)),
				green.Render(fmt.Sprintf("%10.3f", preset[p])), dim.Render(unit))
		}
	}
	return b.String()
}

func (m Model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateList:
		return m.viewList()
	case stateDetail:
		return m.viewDetail()
	}
	return ""
}

func (m Model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("p r o p g r a p h") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, name := range sections {
		desc := sectionInfo[name]
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-10s", name)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-10s", name)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter open   q quit") + "\n")

	return b.String()
}

func (m Model) viewList() string {
	var b strings.Builder
	b.WriteString("\n      " + cyan.Render(m.section) + "  " + dim.Render(sectionInfo[m.section]) + "\n\n")
	b.WriteString(m.tbl.View() + "\n\n")
	b.WriteString(dim.Render("      ↑↓ move   enter inspect   esc back   ctrl+c quit") + "\n")
	return b.String()
}

func (m Model) viewDetail() string {
	var b strings.Builder
	b.WriteString("\n")
	for _, line := range strings.Split(m.detail, "\n") {
		b.WriteString("      " + line + "\n")
	}
	b.WriteString("\n" + dim.Render("      esc back") + "\n")
	return b.String()
}

// Run starts the browser and blocks until the user quits.
func Run(reg *registry.Registry) error {
	p := tea.NewProgram(New(reg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
