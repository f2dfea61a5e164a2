package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/cmd/config"
	"github.com/mattsolo1/grove-links/internal/tui/browser"
	"github.com/mattsolo1/grove-links/internal/tui/manager"
	"github.com/mattsolo1/grove-links/pkg/service"
)

// screen is a full screen view that can hand over to the other one.
type screen interface {
	tea.Model
	SwitchRequested() bool
	Close()
}

// NewTuiCmd creates the `lk tui` command.
func NewTuiCmd(svc **service.Service, logger **logrus.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse links interactively",
		Long: `Launch an interactive Terminal User Interface for browsing links.
Deleted links can be restored with u until the undo window closes.
Press tab to switch to the category manager.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreens(*svc, *logger, false)
		},
	}
	return cmd
}

func runScreens(s *service.Service, logger *logrus.Logger, categories bool) error {
	// Check for TTY
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return fmt.Errorf("TUI mode requires an interactive terminal")
	}
	if err := config.RedirectLogs(logger); err != nil {
		return err
	}

	for {
		var model screen
		if categories {
			model = manager.New(s)
		} else {
			model = browser.New(s)
		}

		p := tea.NewProgram(model, tea.WithAltScreen())
		final, err := p.Run()
		// The final model carries the same subscriptions as the initial one.
		if last, ok := final.(screen); ok {
			model = last
		}
		model.Close()
		if err != nil {
			return fmt.Errorf("error running TUI: %w", err)
		}
		if !model.SwitchRequested() {
			return nil
		}
		categories = !categories
	}
}
