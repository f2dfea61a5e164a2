package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewMoveCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "move <id> [category]",
		Aliases: []string{"mv"},
		Short:   "File a link under another category",
		Long: `File a link under a category, creating the category if needed.
Without a category the link becomes uncategorized.

Examples:
  lk move 3f2a Reading
  lk move 3f2a            # Uncategorize`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			category := ""
			if len(args) == 2 {
				category = args[1]
			}

			link, err := s.MoveLink(context.Background(), args[0], category)
			if err != nil {
				return err
			}
			if category == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now uncategorized\n", link.DisplayName())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", link.DisplayName(), category)
			}
			return nil
		},
	}
	return cmd
}
