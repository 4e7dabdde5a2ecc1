package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/molforge/sdfio/sdf"
)

// BrowseModel is a Bubble Tea model that pages through an indexed SD
// file one record at a time.
type BrowseModel struct {
	reader   *sdf.Reader
	path     string
	metaRows int

	cur     int // index of the record on screen
	total   int
	current sdf.Result
	loadErr error

	width    int
	height   int
	quitting bool
}

// NewBrowseModel creates a browse model over an indexed reader. The
// first record is loaded eagerly so the initial view is never blank.
func NewBrowseModel(r *sdf.Reader, path string, metaRows int) (BrowseModel, error) {
	total, err := r.Len()
	if err != nil {
		return BrowseModel{}, err
	}
	m := BrowseModel{
		reader:   r,
		path:     path,
		metaRows: metaRows,
		total:    total,
	}
	if total > 0 {
		m.load(0)
	}
	return m, nil
}

// load seeks to record n and reads it.
func (m *BrowseModel) load(n int) {
	if err := m.reader.Seek(n); err != nil {
		m.loadErr = err
		return
	}
	res, err := m.reader.Next()
	if err != nil {
		m.loadErr = err
		return
	}
	m.cur = n
	m.current = res
	m.loadErr = nil
}

// Init implements tea.Model.
func (m BrowseModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, browseKeys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, browseKeys.Next):
			if m.cur+1 < m.total {
				m.load(m.cur + 1)
			}
		case key.Matches(msg, browseKeys.Prev):
			if m.cur > 0 {
				m.load(m.cur - 1)
			}
		case key.Matches(msg, browseKeys.First):
			if m.total > 0 {
				m.load(0)
			}
		case key.Matches(msg, browseKeys.Last):
			if m.total > 0 {
				m.load(m.total - 1)
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m BrowseModel) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch {
	case m.total == 0:
		content = "(empty file)"
	case m.loadErr != nil:
		content = ErrorStyle.Render(fmt.Sprintf("read failed: %v", m.loadErr))
	case m.current.Ok():
		content = m.renderMolecule()
	default:
		content = m.renderParseError()
	}

	header := TitleStyle.Render(m.path) + "  " +
		PositionStyle.Render(fmt.Sprintf("[%d/%d]", m.cur+1, m.total))
	help := HelpStyle.Render("n/→ next • p/← prev • g first • G last • q quit")
	return header + "\n" + BoxStyle.Render(content) + "\n" + help
}

func (m BrowseModel) renderMolecule() string {
	mol := m.current.Molecule

	var b strings.Builder
	title := mol.Title
	if title == "" {
		title = "(untitled)"
	}
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Title:"), ValueStyle.Render(title)))
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Status:"), OutcomeStyle(true).Render("parsed")))
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Atoms:"),
		ValueStyle.Render(fmt.Sprintf("%d", mol.AtomCount()))))
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Bonds:"),
		ValueStyle.Render(fmt.Sprintf("%d", mol.BondCount()))))
	if f := mol.Formula(); f != "" {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Formula:"), ValueStyle.Render(f)))
	}
	if q := mol.NetCharge(); q != 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Charge:"), ValueStyle.Render(fmt.Sprintf("%+d", q))))
	}

	keys := mol.Meta.Keys()
	if len(keys) > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Metadata"))
		b.WriteString("\n")
		shown := keys
		if m.metaRows > 0 && len(shown) > m.metaRows {
			shown = shown[:m.metaRows]
		}
		for _, k := range shown {
			v, _ := mol.Meta.Get(k)
			first, _, more := strings.Cut(v, "\n")
			if more {
				first += " …"
			}
			b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(k+":"), ValueStyle.Render(first)))
		}
		if len(shown) < len(keys) {
			b.WriteString(HelpStyle.Render(fmt.Sprintf("(+%d more)", len(keys)-len(shown))))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (m BrowseModel) renderParseError() string {
	pe := m.current.Err

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Status:"), OutcomeStyle(false).Render("malformed")))
	if pe.Offset >= 0 {
		b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render("Offset:"),
			ValueStyle.Render(fmt.Sprintf("%d", pe.Offset))))
	}
	if pe.Log != "" {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Diagnostics"))
		b.WriteString("\n")
		for _, line := range strings.Split(pe.Log, "\n") {
			b.WriteString(ErrorStyle.Render(line))
			b.WriteString("\n")
		}
	}
	if pe.Meta != nil && pe.Meta.Len() > 0 {
		b.WriteString("\n")
		b.WriteString(TitleStyle.Render("Partial metadata"))
		b.WriteString("\n")
		for _, k := range pe.Meta.Keys() {
			v, _ := pe.Meta.Get(k)
			first, _, _ := strings.Cut(v, "\n")
			b.WriteString(fmt.Sprintf("%s %s\n", LabelStyle.Render(k+":"), ValueStyle.Render(first)))
		}
	}

	return b.String()
}

// browseKeyMap defines key bindings.
type browseKeyMap struct {
	Next  key.Binding
	Prev  key.Binding
	First key.Binding
	Last  key.Binding
	Quit  key.Binding
}

var browseKeys = browseKeyMap{
	Next: key.NewBinding(
		key.WithKeys("n", "right", "l"),
		key.WithHelp("n", "next record"),
	),
	Prev: key.NewBinding(
		key.WithKeys("p", "left", "h"),
		key.WithHelp("p", "previous record"),
	),
	First: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "first record"),
	),
	Last: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "last record"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// RunBrowse runs the record browser over an indexed reader.
func RunBrowse(r *sdf.Reader, path string, metaRows int) error {
	model, err := NewBrowseModel(r, path, metaRows)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
