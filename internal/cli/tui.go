package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/traitforge/pkg/dna"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// DNAListModel - Interactive DNA browsing
// =============================================================================

// DNAListModel is the bubbletea model for paging through a DNA set.
// Cursor and Offset are 0-based positions in Set; ids shown are 1-based.
type DNAListModel struct {
	Set      dna.Set
	Cursor   int
	Offset   int
	Height   int
	Selected int // id chosen with enter, 0 if none
}

// NewDNAListModel creates a list model positioned on the first vector.
func NewDNAListModel(set dna.Set) DNAListModel {
	return DNAListModel{Set: set, Height: 15}
}

func (m DNAListModel) Init() tea.Cmd {
	return nil
}

func (m DNAListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup", "b":
			m.move(-m.Height)
		case "pgdown", "f", " ":
			m.move(m.Height)
		case "home", "g":
			m.move(-len(m.Set))
		case "end", "G":
			m.move(len(m.Set))
		case "enter":
			if len(m.Set) > 0 {
				m.Selected = m.Cursor + 1
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by n rows, clamped to the set, and scrolls the
// window to keep it visible.
func (m *DNAListModel) move(n int) {
	if len(m.Set) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+n, 0), len(m.Set)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m DNAListModel) View() string {
	var b strings.Builder

	b.WriteString(styleTitle.Render("DNA Set"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  pgup/pgdn page  ⏎ inspect  q quit"))
	b.WriteString("\n\n")

	if len(m.Set) == 0 {
		b.WriteString(listDimStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Set))
	headers := []string{"", "ID"}
	for _, s := range dna.Slots() {
		headers = append(headers, s.String())
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		row := []string{cursor, strconv.Itoa(i + 1)}
		for _, v := range m.Set[i] {
			row = append(row, strconv.Itoa(v))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return styleOK.Bold(true)
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorGray)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Set))))

	return b.String()
}

// browseCommand creates the browse command, an interactive view of the DNA
// set. Pressing enter prints the configuration of the highlighted vector.
func (c *CLI) browseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Page through the DNA set interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			in, err := c.loadInputs(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			p := tea.NewProgram(NewDNAListModel(in.set), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			fm, ok := final.(DNAListModel)
			if !ok || fm.Selected == 0 {
				printDetail("No selection made")
				return nil
			}
			out, err := c.describe(in, fm.Selected)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}
