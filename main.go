package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/cmd"
	"github.com/mattsolo1/grove-links/cmd/config"
	"github.com/mattsolo1/grove-links/pkg/service"
)

var (
	svc    *service.Service
	logger *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "lk",
		Short:         "A bookmark manager with undoable deletes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		// This runs once before any subcommand
		config.InitConfig()
		logger = config.NewLogger()
		if c.Annotations[cmd.AnnotationNoService] == "true" {
			return nil
		}

		var err error
		svc, err = service.New(config.Load(), logger.WithField("app", "lk"))
		if err != nil {
			return fmt.Errorf("failed to initialize service: %w", err)
		}
		return nil
	}

	// Add subcommands
	rootCmd.AddCommand(cmd.NewAddCmd(&svc))
	rootCmd.AddCommand(cmd.NewListCmd(&svc))
	rootCmd.AddCommand(cmd.NewSearchCmd(&svc))
	rootCmd.AddCommand(cmd.NewOpenCmd(&svc))
	rootCmd.AddCommand(cmd.NewMoveCmd(&svc))
	rootCmd.AddCommand(cmd.NewDeleteCmd(&svc))
	rootCmd.AddCommand(cmd.NewCategoryCmd(&svc))
	rootCmd.AddCommand(cmd.NewStatsCmd(&svc))
	rootCmd.AddCommand(cmd.NewExportCmd(&svc))
	rootCmd.AddCommand(cmd.NewImportCmd(&svc))
	rootCmd.AddCommand(cmd.NewTuiCmd(&svc, &logger))
	rootCmd.AddCommand(cmd.NewManageCmd(&svc, &logger))
	rootCmd.AddCommand(cmd.NewVersionCmd())

	err := rootCmd.Execute()
	if svc != nil {
		// Commits whatever deletions are still waiting out their undo window.
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	config.CloseLogs()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
