package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewAddCmd(svc **service.Service) *cobra.Command {
	var (
		title    string
		category string
		tags     []string
		notes    string
		jsonOut  bool
	)

	cmd := &cobra.Command{
		Use:   "add <url> [title]",
		Short: "Save a link",
		Long: `Save a link, optionally filed under a category.

Examples:
  lk add go.dev                          # Title defaults to the host
  lk add https://go.dev/blog "Go Blog"   # Explicit title
  lk add go.dev -c Reading --tag lang    # Category is created if missing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()

			if title == "" && len(args) > 1 {
				title = strings.Join(args[1:], " ")
			}

			link, err := s.AddLink(ctx, args[0], title, category, tags)
			if err != nil {
				return err
			}
			link.Notes = strings.TrimSpace(notes)
			if link.Notes != "" {
				if err := s.Store.UpdateLink(ctx, link); err != nil {
					return fmt.Errorf("save notes: %w", err)
				}
			}

			if jsonOut {
				return outputJSON(cmd.OutOrStdout(), link)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s\n", shortID(link.ID), link.URL)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Link title (defaults to the host)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category to file the link under")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Tag to attach (repeatable or comma separated)")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Free form notes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	return cmd
}
