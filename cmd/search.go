package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewSearchCmd(svc **service.Service) *cobra.Command {
	var (
		searchLimit int
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search links",
		Long: `Search titles, URLs, notes and tags.

Examples:
  lk search golang
  lk search "release notes" --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			query := strings.Join(args, " ")

			results, err := s.SearchLinks(context.Background(), query, searchLimit)
			if err != nil {
				return err
			}
			if jsonOut {
				if results == nil {
					results = []*models.Link{}
				}
				return outputJSON(cmd.OutOrStdout(), results)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found")
				return nil
			}
			fmt.Fprintf(out, "Found %d results:\n\n", len(results))
			for i, l := range results {
				fmt.Fprintf(out, "%d. %s\n", i+1, l.DisplayName())
				fmt.Fprintf(out, "   %s  (%s)\n", l.URL, shortID(l.ID))
				if len(l.Tags) > 0 {
					fmt.Fprintf(out, "   #%s\n", strings.Join(l.Tags, " #"))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 50, "Maximum results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	return cmd
}
