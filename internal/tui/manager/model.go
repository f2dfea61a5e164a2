package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mattsolo1/grove-links/internal/tui/components/notice"
	"github.com/mattsolo1/grove-links/internal/tui/keymap"
	"github.com/mattsolo1/grove-links/internal/tui/theme"
	"github.com/mattsolo1/grove-links/pkg/deletion"
	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
)

// Keymap for the category manager TUI
type managerKeyMap struct {
	keymap.Base
}

func (k managerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rename")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "links")),
		k.Help,
		k.Quit,
	}
}

func (k managerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓, j/k", "Move cursor")),
			key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "Go to top")),
			key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "Go to bottom")),
			key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "Switch to links")),
		},
		{
			key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "Add category")),
			key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "Rename category")),
			key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "Delete category (links are kept)")),
			key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "Undo delete")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "Dismiss notice")),
			key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "Quit")),
		},
	}
}

var managerKeys = managerKeyMap{Base: keymap.NewBase()}

type inputMode int

const (
	noInput inputMode = iota
	addInput
	renameInput
)

// Model is the categories screen. It runs deferred deletion on its own
// coordinator, independent of the links screen.
type Model struct {
	table      table.Model
	categories []*models.Category
	service    *service.Service
	notice     notice.Model
	input      textinput.Model
	mode       inputMode
	renaming   *models.Category
	message    string
	help       help.Model
	width      int
	height     int

	changes     <-chan struct{}
	unwatch     func()
	states      <-chan deletion.State
	unsubscribe func()

	switchScreen bool
	quitting     bool
}

type categoriesLoadedMsg struct {
	categories []*models.Category
	err        error
}

type storeChangedMsg struct{}

type savedMsg struct {
	message string
	err     error
}

type flushedMsg struct{}

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.DefaultColors.LightText).
			Background(theme.DefaultColors.SelectedBackground).
			Padding(0, 1)

	messageStyle = lipgloss.NewStyle().
			Foreground(theme.DefaultColors.Green)

	warningStyle = lipgloss.NewStyle().
			Foreground(theme.DefaultColors.Yellow)
)

// New creates the categories screen.
func New(svc *service.Service) Model {
	columns := []table.Column{
		{Title: "NAME", Width: 32},
		{Title: "LINKS", Width: 7},
		{Title: "CREATED", Width: 16},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(theme.DefaultColors.Border).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(theme.DefaultColors.LightText).
		Background(theme.DefaultColors.SelectedBackground).
		Bold(false)
	t.SetStyles(s)

	ti := textinput.New()
	ti.CharLimit = 80

	changes, unwatch := svc.Watch()
	states, unsubscribe := svc.Categories.Notifications().Subscribe()

	return Model{
		table:       t,
		service:     svc,
		notice:      notice.New(),
		input:       ti,
		help:        help.New(),
		changes:     changes,
		unwatch:     unwatch,
		states:      states,
		unsubscribe: unsubscribe,
	}
}

// Init loads the categories and starts listening for changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), waitForChange(m.changes), notice.Listen(m.states))
}

// SwitchRequested reports whether the user asked for the links screen.
func (m Model) SwitchRequested() bool { return m.switchScreen }

// Close drops the subscriptions and commits every pending category deletion.
func (m Model) Close() {
	m.unwatch()
	m.unsubscribe()
	m.service.Categories.FlushAll()
}

func (m Model) load() tea.Cmd {
	svc := m.service
	return func() tea.Msg {
		cats, err := svc.ListCategories(context.Background())
		return categoriesLoadedMsg{categories: cats, err: err}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func (m Model) leave() tea.Cmd {
	svc := m.service
	return tea.Sequence(func() tea.Msg {
		svc.Categories.FlushAll()
		return flushedMsg{}
	}, tea.Quit)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.notice.Width = msg.Width
		m.table.SetHeight(max(3, m.height-10))
		return m, nil

	case categoriesLoadedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("Error loading categories: %v", msg.err)
			return m, nil
		}
		m.setCategories(m.service.Categories.Visible(msg.categories))
		return m, nil

	case storeChangedMsg:
		return m, tea.Batch(m.load(), waitForChange(m.changes))

	case notice.StateMsg:
		var cmd tea.Cmd
		m.notice, cmd = m.notice.Update(msg)
		return m, tea.Batch(cmd, notice.Listen(m.states), m.load())

	case notice.UndoMsg:
		if _, ok := m.service.Categories.Undo(); ok {
			return m, m.load()
		}
		return m, nil

	case notice.DismissMsg:
		m.service.Categories.Dismiss()
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.message = msg.err.Error()
		} else {
			m.message = msg.message
		}
		return m, m.load()

	case flushedMsg:
		return m, nil

	case tea.KeyMsg:
		if m.help.ShowAll {
			m.help.ShowAll = false // Any key closes help
			return m, nil
		}
		if m.mode != noInput {
			return m.updateInput(msg)
		}
		if m.notice.Handles(msg) {
			var cmd tea.Cmd
			m.notice, cmd = m.notice.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "?":
			m.help.ShowAll = true
			return m, nil

		case "q", "ctrl+c":
			m.quitting = true
			return m, m.leave()

		case "tab":
			m.switchScreen = true
			return m, m.leave()

		case "a":
			m.mode = addInput
			m.input.Placeholder = "New category name..."
			m.input.SetValue("")
			return m, m.input.Focus()

		case "r":
			if cat := m.selected(); cat != nil {
				m.mode = renameInput
				m.renaming = cat
				m.input.Placeholder = "New name..."
				m.input.SetValue(cat.Name)
				m.input.CursorEnd()
				return m, m.input.Focus()
			}
			return m, nil

		case "u", "esc":
			// Only meaningful while the notice is up.
			return m, nil

		case "d", "x", "delete":
			if cat := m.selected(); cat != nil {
				m.service.Categories.RequestDelete(cat)
				m.setCategories(m.service.Categories.Visible(m.categories))
				m.message = ""
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = noInput
		m.renaming = nil
		m.input.Blur()
		return m, nil

	case tea.KeyEnter:
		name := strings.TrimSpace(m.input.Value())
		mode, target := m.mode, m.renaming
		m.mode = noInput
		m.renaming = nil
		m.input.Blur()
		if name == "" {
			return m, nil
		}
		svc := m.service
		return m, func() tea.Msg {
			ctx := context.Background()
			if mode == renameInput {
				_, err := svc.RenameCategory(ctx, target.ID, name)
				return savedMsg{message: "Renamed to " + name, err: err}
			}
			_, err := svc.AddCategory(ctx, name)
			return savedMsg{message: "Added " + name, err: err}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) setCategories(cats []*models.Category) {
	m.categories = cats
	rows := make([]table.Row, len(cats))
	for i, c := range cats {
		rows[i] = table.Row{
			truncate(c.Name, 32),
			fmt.Sprintf("%d", c.LinkCount),
			humanize.Time(c.CreatedAt),
		}
	}
	m.table.SetRows(rows)
	if m.table.Cursor() >= len(rows) {
		m.table.SetCursor(max(0, len(rows)-1))
	}
}

func (m Model) selected() *models.Category {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.categories) {
		return nil
	}
	return m.categories[i]
}

// View renders the screen
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.help.ShowAll {
		return headerStyle.Render("Categories - Help") + "\n\n" + m.help.View(managerKeys)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Categories (%d)", len(m.categories))))
	b.WriteString("\n\n")

	if len(m.categories) == 0 {
		b.WriteString(theme.DefaultTheme.Muted.Render("No categories. Press a to add one."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")

	if m.mode != noInput {
		b.WriteString("\n" + m.input.View() + "\n")
	}
	if m.notice.Visible() {
		b.WriteString("\n" + m.notice.View() + "\n")
	}
	if m.message != "" {
		style := messageStyle
		if strings.HasPrefix(m.message, "Error") || strings.Contains(m.message, "already exists") {
			style = warningStyle
		}
		b.WriteString("\n" + style.Render(m.message) + "\n")
	}
	b.WriteString("\n" + m.help.View(managerKeys))
	return b.String()
}

// truncate shortens a string to fit within a given width
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
