package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
	"github.com/mattsolo1/grove-links/pkg/store"
)

// AnnotationNoService marks commands that run without opening the database.
const AnnotationNoService = "lk/no-service"

func NewListCmd(svc **service.Service) *cobra.Command {
	var (
		category      string
		uncategorized bool
		tag           string
		sortBy        string
		limit         int
		jsonOut       bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List saved links",
		Aliases: []string{"ls"},
		Long: `List saved links, newest first.

Examples:
  lk list                    # Everything
  lk list -c Reading         # One category
  lk list --uncategorized    # Links without a category
  lk list --sort visits      # Most visited first`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()

			q := store.LinkQuery{Uncategorized: uncategorized, Tag: tag, Limit: limit}
			switch sortBy {
			case "", "newest":
			case "visits":
				q.OrderBy = store.MostVisited
			case "title":
				q.OrderBy = store.ByTitle
			default:
				return fmt.Errorf("unknown sort %q (want newest, visits or title)", sortBy)
			}
			if category != "" {
				cat, err := s.FindCategory(ctx, category)
				if err != nil {
					return err
				}
				q.CategoryID = cat.ID
			}

			links, err := s.ListLinks(ctx, q)
			if err != nil {
				return err
			}
			if jsonOut {
				if links == nil {
					links = []*models.Link{}
				}
				return outputJSON(cmd.OutOrStdout(), links)
			}
			if len(links) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No links found")
				return nil
			}

			names, err := categoryNames(ctx, s)
			if err != nil {
				return err
			}
			printLinksTable(cmd.OutOrStdout(), links, names)
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Only links in this category")
	cmd.Flags().BoolVar(&uncategorized, "uncategorized", false, "Only links without a category")
	cmd.Flags().StringVar(&tag, "tag", "", "Only links with this tag")
	cmd.Flags().StringVar(&sortBy, "sort", "newest", "Sort order: newest, visits or title")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of links (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	return cmd
}

func categoryNames(ctx context.Context, s *service.Service) (map[string]string, error) {
	cats, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func printLinksTable(out io.Writer, links []*models.Link, categories map[string]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tVISITS\tADDED")
	fmt.Fprintln(w, "--------\t-----------------------------\t------------\t------\t-----------")

	for _, l := range links {
		cat := categories[l.CategoryID]
		if cat == "" {
			cat = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			shortID(l.ID),
			truncateString(l.DisplayName(), 29),
			truncateString(cat, 12),
			l.VisitCount,
			humanize.Time(l.CreatedAt),
		)
	}

	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func outputJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
