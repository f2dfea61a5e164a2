package browser

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-links/internal/tui/components/notice"
	"github.com/mattsolo1/grove-links/pkg/deletion"
	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
)

// Model is the links screen. Deleting hides a link at once; the deletion is
// committed after the undo delay, or when the screen is left.
type Model struct {
	service    *service.Service
	links      []*models.Link // everything not pending deletion
	filtered   []*models.Link // links matching the filter
	categories map[string]string

	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	width        int
	height       int

	filterInput textinput.Model
	filtering   bool

	notice        notice.Model
	statusMessage string
	loaded        bool

	changes     <-chan struct{}
	unwatch     func()
	states      <-chan deletion.State
	unsubscribe func()

	switchScreen bool
	quitting     bool
}

// New creates the links screen and subscribes to store changes and to the
// link deletion notifications.
func New(svc *service.Service) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter links..."
	ti.CharLimit = 100

	changes, unwatch := svc.Watch()
	states, unsubscribe := svc.Links.Notifications().Subscribe()

	return Model{
		service:     svc,
		categories:  map[string]string{},
		keys:        keys,
		help:        help.New(),
		filterInput: ti,
		notice:      notice.New(),
		changes:     changes,
		unwatch:     unwatch,
		states:      states,
		unsubscribe: unsubscribe,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchLinksCmd(m.service),
		waitForChange(m.changes),
		notice.Listen(m.states),
	)
}

// SwitchRequested reports whether the screen was left for the categories
// screen rather than quit.
func (m Model) SwitchRequested() bool { return m.switchScreen }

// Close drops the subscriptions and commits every pending link deletion.
// It is safe to call more than once.
func (m Model) Close() {
	m.unwatch()
	m.unsubscribe()
	m.service.Links.FlushAll()
}

func (m Model) selectedLink() *models.Link {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return nil
	}
	return m.filtered[m.cursor]
}
