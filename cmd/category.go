package cmd

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewCategoryCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}

	cmd.AddCommand(newCategoryAddCmd(svc))
	cmd.AddCommand(newCategoryListCmd(svc))
	cmd.AddCommand(newCategoryRenameCmd(svc))
	cmd.AddCommand(newCategoryDeleteCmd(svc))
	return cmd
}

func newCategoryAddCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := (*svc).AddCategory(context.Background(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s\n", cat.Name)
			return nil
		},
	}
}

func newCategoryListCmd(svc **service.Service) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List categories with their link counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := (*svc).ListCategories(context.Background())
			if err != nil {
				return err
			}
			if jsonOut {
				if cats == nil {
					cats = []*models.Category{}
				}
				return outputJSON(cmd.OutOrStdout(), cats)
			}
			if len(cats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No categories yet")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tLINKS")
			for _, c := range cats {
				fmt.Fprintf(w, "%s\t%d\n", c.Name, c.LinkCount)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	return cmd
}

func newCategoryRenameCmd(svc **service.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new name>",
		Short: "Rename a category",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := (*svc).RenameCategory(context.Background(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], cat.Name)
			return nil
		},
	}
}

func newCategoryDeleteCmd(svc **service.Service) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a category, keeping its links",
		Long: `Delete a category. Its links stay, uncategorized.
The deletion can be undone with Enter until the undo delay has passed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()

			cat, err := s.FindCategory(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			s.Categories.RequestDelete(cat)

			if now || !isInteractive(cmd.InOrStdin()) {
				s.Categories.FlushAll()
				return commitErrors(s.Categories)
			}
			return undoWindow(ctx, s.Categories, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Delete immediately without an undo window")
	return cmd
}
