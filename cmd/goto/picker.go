package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diegostafa/goto/internal/ipc"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39"))

	pickerHelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	pickerErrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// windowItem adapts one IPC window entry to the list widget.
type windowItem struct {
	info ipc.WindowInfo
}

func (i windowItem) Title() string {
	title := i.info.Title
	if title == "" {
		title = fmt.Sprintf("0x%08x", i.info.ID)
	}
	if i.info.Minimized {
		title = title + " (minimized)"
	}
	return title
}

func (i windowItem) Description() string { return i.info.Class }

func (i windowItem) FilterValue() string {
	return i.info.Title + " " + i.info.Class
}

// pickerModel is the bubbletea model for the interactive window picker.
type pickerModel struct {
	list   list.Model
	client *ipc.Client
	errMsg string
	picked bool
}

func newPickerModel(client *ipc.Client, windows []ipc.WindowInfo) pickerModel {
	items := make([]list.Item, 0, len(windows))
	for _, w := range windows {
		items = append(items, windowItem{info: w})
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true

	l := list.New(items, delegate, 0, 0)
	l.Title = "Windows (most recent first)"
	l.Styles.Title = pickerTitleStyle
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	return pickerModel{
		list:   l,
		client: client,
	}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		// Reserve a line for the help footer.
		m.list.SetSize(msg.Width, msg.Height-2)
		return m, nil

	case tea.KeyMsg:
		// Let the filter input consume keys while it is active.
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "enter":
			item, ok := m.list.SelectedItem().(windowItem)
			if !ok {
				return m, tea.Quit
			}
			if err := m.client.Activate(item.info.ID); err != nil {
				m.errMsg = err.Error()
				return m, nil
			}
			m.picked = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	footer := pickerHelpStyle.Render("enter: activate • /: filter • q: quit")
	if m.errMsg != "" {
		footer = pickerErrStyle.Render("error: " + m.errMsg)
	}
	return m.list.View() + "\n" + footer
}

// runPick launches the interactive terminal window picker.
func runPick(args []string) int {
	fs := flag.NewFlagSet("pick", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: goto pick\n\n")
		fmt.Fprintf(os.Stderr, "Pick a window from a terminal list and activate it.\n")
		fmt.Fprintf(os.Stderr, "Requires a running daemon and an interactive terminal.\n")
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: pick requires an interactive terminal (stdin/stdout must be TTYs)")
		return 1
	}

	client := ipc.NewClient()
	data, err := client.ListWindows()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if len(data.Windows) == 0 {
		fmt.Println("No windows to pick from")
		return 0
	}

	model := newPickerModel(client, data.Windows)
	program := tea.NewProgram(model, tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if m, ok := final.(pickerModel); ok && m.picked {
		return 0
	}
	return 0
}
