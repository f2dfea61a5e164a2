package browser

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
	"github.com/mattsolo1/grove-links/pkg/store"
)

type linksLoadedMsg struct {
	links      []*models.Link
	categories map[string]string
	err        error
}

type storeChangedMsg struct{}

type visitedMsg struct {
	title string
	err   error
}

type flushedMsg struct {
	count int
}

func fetchLinksCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		links, err := svc.ListLinks(ctx, store.LinkQuery{})
		if err != nil {
			return linksLoadedMsg{err: err}
		}
		cats, err := svc.ListCategories(ctx)
		if err != nil {
			return linksLoadedMsg{err: err}
		}
		names := make(map[string]string, len(cats))
		for _, c := range cats {
			names[c.ID] = c.Name
		}
		return linksLoadedMsg{links: links, categories: names}
	}
}

// waitForChange blocks until the store reports a mutation.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func visitCmd(svc *service.Service, link *models.Link) tea.Cmd {
	return func() tea.Msg {
		err := svc.Visit(context.Background(), link, true)
		return visitedMsg{title: link.DisplayName(), err: err}
	}
}

func flushCmd(svc *service.Service) tea.Cmd {
	return func() tea.Msg {
		return flushedMsg{count: svc.Links.FlushAll()}
	}
}
