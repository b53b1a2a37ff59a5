// Package menu implements the interactive record picker: a compact
// Bubble Tea table the session shows after each page of results.
package menu

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/litescript/ls-rarbg-cli/internal/scrape"
	"github.com/litescript/ls-rarbg-cli/internal/search"
	"github.com/litescript/ls-rarbg-cli/internal/theme"
	"github.com/litescript/ls-rarbg-cli/internal/units"
)

// Menu renders pages of records on the terminal and reports what the
// user picked. It implements search.Selector.
type Menu struct {
	styles theme.Styles
	unit   string // display unit, empty means auto

	in  io.Reader
	out io.Writer
}

// New creates a menu using the detected terminal theme. The menu draws
// on stderr so stdout stays clean for the final output.
func New(unit string) *Menu {
	return &Menu{
		styles: theme.Load(),
		unit:   unit,
		in:     os.Stdin,
		out:    os.Stderr,
	}
}

// Select shows one page of records and blocks until the user picks a
// record, asks for the next page, declines, or quits.
func (m *Menu) Select(ctx context.Context, records []scrape.Record) (search.Choice, error) {
	p := tea.NewProgram(
		newModel(records, m.styles, m.unit),
		tea.WithContext(ctx),
		tea.WithInput(m.in),
		tea.WithOutput(m.out),
	)

	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return search.Choice{}, ctxErr
		}
		return search.Choice{}, fmt.Errorf("running menu: %w", err)
	}

	return final.(model).choice, nil
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding
	Select key.Binding
	Next   key.Binding
	None   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "bottom"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next page"),
		),
		None: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "none"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type model struct {
	records []scrape.Record
	styles  theme.Styles
	unit    string
	keys    keyMap

	cursor int
	width  int
	height int

	choice search.Choice
}

func newModel(records []scrape.Record, styles theme.Styles, unit string) model {
	return model{
		records: records,
		styles:  styles,
		unit:    unit,
		keys:    defaultKeyMap(),
		width:   120,
		height:  30,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Top):
			m.cursor = 0
		case key.Matches(msg, m.keys.Bottom):
			m.cursor = len(m.records) - 1
		case key.Matches(msg, m.keys.Select):
			if len(m.records) > 0 {
				m.choice = search.Choice{Index: m.cursor, Selected: true}
				return m, tea.Quit
			}
		case key.Matches(msg, m.keys.Next):
			m.choice = search.Choice{Next: true}
			return m, tea.Quit
		case key.Matches(msg, m.keys.None):
			m.choice = search.Choice{}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Quit):
			m.choice = search.Choice{Quit: true}
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	titleWidth := m.width - 4 - 10 - 6 - 6 - 14 - 5 - 2
	if titleWidth < 20 {
		titleWidth = 20
	}

	header := fmt.Sprintf("%s %s %s %s %s",
		padRight("SN  NAME", 4+titleWidth),
		padLeft("SIZE", 10),
		padLeft("SEED", 6),
		padLeft("LEECH", 6),
		padLeft("UPLOADER", 14))
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")

	visible := m.height - 4
	if visible < 1 {
		visible = 1
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := start + visible
	if end > len(m.records) {
		end = len(m.records)
	}

	for i := start; i < end; i++ {
		row := m.rowText(i, titleWidth)
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + row))
		} else {
			b.WriteString(m.styles.Row.Render("  " + row))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help())

	return b.String()
}

func (m model) rowText(i, titleWidth int) string {
	r := m.records[i]
	return fmt.Sprintf("%s%s %s %s %s %s",
		padRight(fmt.Sprintf("%d", i+1), 4),
		padRight(truncate(r.Title, titleWidth), titleWidth),
		padLeft(units.FormatSize(r.SizeBytes, m.unit), 10),
		padLeft(fmt.Sprintf("%d", r.Seeders), 6),
		padLeft(fmt.Sprintf("%d", r.Leechers), 6),
		padLeft(truncate(r.Uploader, 14), 14))
}

func (m model) help() string {
	bindings := []key.Binding{
		m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Next, m.keys.None, m.keys.Quit,
	}

	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts,
			m.styles.HelpKey.Render(h.Key)+" "+m.styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, m.styles.HelpKey.Render(" · "))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return strings.Repeat(" ", width-len(s)) + s
}
