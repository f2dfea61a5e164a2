package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/service"
)

// NewManageCmd creates the `lk manage` command, which opens the category
// manager directly.
func NewManageCmd(svc **service.Service, logger **logrus.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "manage",
		Short: "Interactively manage categories",
		Long: `Provides an interactive TUI to add, rename and delete categories.
Deleting a category keeps its links; they become uncategorized once the
undo window closes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScreens(*svc, *logger, true)
		},
	}
}
