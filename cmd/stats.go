package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewStatsCmd(svc **service.Service) *cobra.Command {
	var (
		top     int
		days    int
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show how the collection is used",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := (*svc).Stats(context.Background(), top, days)
			if err != nil {
				return err
			}
			if jsonOut {
				return outputJSON(cmd.OutOrStdout(), st)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s links in %s categories, %s visits\n",
				humanize.Comma(int64(st.TotalLinks)),
				humanize.Comma(int64(st.TotalCategories)),
				humanize.Comma(int64(st.TotalVisits)))
			fmt.Fprintf(out, "%d uncategorized, %d never opened\n", st.Uncategorized, st.NeverVisited)

			if len(st.TopLinks) > 0 {
				fmt.Fprintln(out, "\nMost visited:")
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for i, l := range st.TopLinks {
					last := "-"
					if l.LastVisitedAt != nil {
						last = humanize.Time(*l.LastVisitedAt)
					}
					fmt.Fprintf(w, "  %s\t%s\t%d visits\tlast %s\n",
						humanize.Ordinal(i+1), truncateString(l.DisplayName(), 40), l.VisitCount, last)
				}
				w.Flush()
			}

			if len(st.PerCategory) > 0 {
				fmt.Fprintln(out, "\nBy category:")
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				for _, c := range st.PerCategory {
					fmt.Fprintf(w, "  %s\t%d links\t%d visits\n", c.Name, c.Links, c.Visits)
				}
				w.Flush()
			}

			if len(st.RecentVisits) > 0 {
				fmt.Fprintf(out, "\nVisits, last %d days:\n", days)
				for _, d := range st.RecentVisits {
					fmt.Fprintf(out, "  %s %s %d\n", d.Day.Format("Mon Jan 02"), strings.Repeat("#", min(d.Visits, 50)), d.Visits)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 5, "Number of most visited links to show")
	cmd.Flags().IntVar(&days, "days", 7, "Days of visit history to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}
