package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/service"
)

func NewExportCmd(svc **service.Service) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export links as a markdown document",
		Long: `Write every link as markdown grouped by category, with a YAML header.
Without a file the document goes to stdout. The output can be read back
with "lk import".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var w io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return (*svc).Export(context.Background(), w, title)
		},
	}

	cmd.Flags().StringVar(&title, "title", "Links", "Document title")
	return cmd
}

func NewImportCmd(svc **service.Service) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import links from a markdown export",
		Long: `Read a document written by "lk export". Links whose URL is already saved
are skipped and missing categories are created. Use "-" for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer f.Close()
				r = f
			}

			res, err := (*svc).Import(context.Background(), r)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d links (%d already saved), created %d categories\n",
				res.Added, res.Skipped, res.Categories)
			return nil
		},
	}
	return cmd
}
