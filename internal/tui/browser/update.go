package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-links/internal/tui/components/notice"
	"github.com/mattsolo1/grove-links/pkg/models"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.notice.Width = msg.Width
		m.clampCursor()
		return m, nil

	case linksLoadedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error loading links: %v", msg.err)
			return m, nil
		}
		m.loaded = true
		// A deletion requested after the fetch started must stay hidden.
		m.links = m.service.Links.Visible(msg.links)
		m.categories = msg.categories
		m.applyFilter()
		return m, nil

	case storeChangedMsg:
		return m, tea.Batch(fetchLinksCmd(m.service), waitForChange(m.changes))

	case notice.StateMsg:
		var cmd tea.Cmd
		m.notice, cmd = m.notice.Update(msg)
		// A failed commit brings its link back, so any change may alter the list.
		return m, tea.Batch(cmd, notice.Listen(m.states), fetchLinksCmd(m.service))

	case notice.UndoMsg:
		if _, ok := m.service.Links.Undo(); ok {
			m.statusMessage = ""
			return m, fetchLinksCmd(m.service)
		}
		return m, nil

	case notice.DismissMsg:
		m.service.Links.Dismiss()
		return m, nil

	case visitedMsg:
		if msg.err != nil {
			m.statusMessage = fmt.Sprintf("Error opening %s: %v", msg.title, msg.err)
		} else {
			m.statusMessage = "Opened " + msg.title
		}
		return m, nil

	case flushedMsg:
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filterInput.Blur()
		m.filterInput.SetValue("")
		m.applyFilter()
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.help.ShowAll {
		if key.Matches(msg, m.keys.Help) || msg.Type == tea.KeyEsc {
			m.help.ShowAll = false
		}
		return m, nil
	}

	// The notice owns undo and esc while it is showing.
	if m.notice.Handles(msg) {
		var cmd tea.Cmd
		m.notice, cmd = m.notice.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Sequence(flushCmd(m.service), tea.Quit)

	case key.Matches(msg, m.keys.Categories):
		m.switchScreen = true
		return m, tea.Sequence(flushCmd(m.service), tea.Quit)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = true

	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.viewportHeight()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.viewportHeight()
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.filtered) - 1

	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		return m, m.filterInput.Focus()

	case key.Matches(msg, m.keys.Dismiss):
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.applyFilter()
		}

	case key.Matches(msg, m.keys.Open):
		if link := m.selectedLink(); link != nil {
			return m, visitCmd(m.service, link)
		}

	case key.Matches(msg, m.keys.Delete):
		if link := m.selectedLink(); link != nil {
			m.service.Links.RequestDelete(link)
			m.removeLink(link.ID)
			m.statusMessage = ""
		}
	}

	m.clampCursor()
	return m, nil
}

// removeLink drops id from the local lists without waiting for a reload.
func (m *Model) removeLink(id string) {
	keep := make([]*models.Link, 0, len(m.links))
	for _, l := range m.links {
		if l.ID != id {
			keep = append(keep, l)
		}
	}
	m.links = keep
	m.applyFilter()
}

func (m *Model) applyFilter() {
	query := strings.ToLower(strings.TrimSpace(m.filterInput.Value()))
	if query == "" {
		m.filtered = m.links
	} else {
		m.filtered = make([]*models.Link, 0, len(m.links))
		for _, l := range m.links {
			if m.matches(l, query) {
				m.filtered = append(m.filtered, l)
			}
		}
	}
	m.clampCursor()
}

func (m Model) matches(l *models.Link, query string) bool {
	fields := []string{l.Title, l.URL, m.categories[l.CategoryID], strings.Join(l.Tags, " ")}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.filtered) {
		m.cursor = len(m.filtered) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	height := m.viewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+height {
		m.scrollOffset = m.cursor - height + 1
	}
}

func (m Model) viewportHeight() int {
	// header, blank, column header, blank, notice box, status, footer
	h := m.height - 9
	if h < 3 {
		return 10
	}
	return h
}
