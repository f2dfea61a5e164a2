package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mattsolo1/grove-links/internal/tui/theme"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.loaded {
		return "Loading..."
	}
	if m.help.ShowAll {
		return theme.DefaultTheme.Header.Render("Links - Help") + "\n\n" + m.help.View(m.keys)
	}

	header := theme.DefaultTheme.Header.Render("Links")
	count := theme.DefaultTheme.Muted.Render(fmt.Sprintf(" %d", len(m.filtered)))
	if len(m.filtered) != len(m.links) {
		count = theme.DefaultTheme.Muted.Render(fmt.Sprintf(" %d of %d", len(m.filtered), len(m.links)))
	}

	parts := []string{header + count, ""}
	if m.filtering || m.filterInput.Value() != "" {
		parts = append(parts, m.filterInput.View(), "")
	}
	parts = append(parts, m.renderList())

	if m.notice.Visible() {
		parts = append(parts, "", m.notice.View())
	}
	if m.statusMessage != "" {
		parts = append(parts, theme.DefaultTheme.Muted.Render(m.statusMessage))
	}
	parts = append(parts, "", m.help.View(m.keys))

	// Add top margin to prevent border cutoff
	return "\n" + lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderList() string {
	if len(m.filtered) == 0 {
		if len(m.links) == 0 {
			return theme.DefaultTheme.Muted.Render("No links yet. Add one with: lk add <url>")
		}
		return theme.DefaultTheme.Muted.Render("No matching links found.")
	}

	var b strings.Builder
	height := m.viewportHeight()
	start := m.scrollOffset
	end := min(start+height, len(m.filtered))

	titleWidth := 40
	if m.width > 0 {
		titleWidth = max(20, m.width/2-4)
	}

	for i := start; i < end; i++ {
		l := m.filtered[i]
		cursor := "  "
		if i == m.cursor {
			cursor = theme.DefaultTheme.Highlight.Render("▶ ")
		}

		meta := shortenURL(l.URL)
		if cat := m.categories[l.CategoryID]; cat != "" {
			meta = cat + " · " + meta
		}
		if l.VisitCount > 0 {
			meta += fmt.Sprintf(" · %d visits", l.VisitCount)
		}
		meta += " · " + humanize.Time(l.CreatedAt)

		title := fmt.Sprintf("%-*s", titleWidth, truncate(l.DisplayName(), titleWidth))
		if i == m.cursor {
			title = theme.DefaultTheme.Selected.Render(title)
		}
		b.WriteString(cursor + title + "  " + theme.DefaultTheme.Muted.Render(meta) + "\n")
	}

	if len(m.filtered) > height {
		b.WriteString(lipgloss.NewStyle().Faint(true).Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.filtered))))
	}
	return strings.TrimRight(b.String(), "\n")
}

// shortenURL drops the scheme and a trailing slash.
func shortenURL(u string) string {
	for _, prefix := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, prefix)
	}
	return strings.TrimSuffix(u, "/")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
