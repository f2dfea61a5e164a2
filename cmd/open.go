package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewOpenCmd(svc **service.Service) *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "open <id>",
		Short: "Open a link in the browser and count the visit",
		Long: `Open a link in the configured browser ($BROWSER or the system opener).
The id may be shortened to any unique prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()

			link, err := s.FindLink(ctx, args[0])
			if err != nil {
				return err
			}
			if err := s.Visit(ctx, link, !printOnly); err != nil {
				return err
			}
			if printOnly {
				fmt.Fprintln(cmd.OutOrStdout(), link.URL)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&printOnly, "print", "p", false, "Print the URL instead of launching a browser")
	return cmd
}
