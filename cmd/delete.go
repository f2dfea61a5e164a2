package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-links/pkg/deletion"
	"github.com/mattsolo1/grove-links/pkg/models"
	"github.com/mattsolo1/grove-links/pkg/service"
)

// pendingPoll is how often the undo window checks whether it can exit.
const pendingPoll = 100 * time.Millisecond

func NewDeleteCmd(svc **service.Service) *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete links, with a short window to undo",
		Long: `Delete links by id or unique id prefix.

The links disappear from every listing at once but are only removed from the
database once the undo delay has passed. While waiting, press Enter to undo
the most recent deletion or Ctrl-C to delete everything right away. When
stdin is not a terminal, or with --now, nothing waits.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := *svc
			ctx := context.Background()

			links := make([]*models.Link, 0, len(args))
			for _, ref := range args {
				link, err := s.FindLink(ctx, ref)
				if err != nil {
					return err
				}
				links = append(links, link)
			}
			for _, link := range links {
				s.Links.RequestDelete(link)
			}

			if now || !isInteractive(cmd.InOrStdin()) {
				s.Links.FlushAll()
				return commitErrors(s.Links)
			}
			return undoWindow(ctx, s.Links, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "Delete immediately without an undo window")
	return cmd
}

func isInteractive(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// undoWindow blocks until every pending deletion of c has been committed or
// undone. A line on in undoes the latest deletion; an interrupt commits the
// rest immediately.
func undoWindow[T any](ctx context.Context, c *deletion.Coordinator[T], in io.Reader, out io.Writer) error {
	states, unsubscribe := c.Notifications().Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)
	lines := make(chan struct{})
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- struct{}{}:
			case <-done:
				return
			}
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tick := time.NewTicker(pendingPoll)
	defer tick.Stop()

	for {
		select {
		case st, ok := <-states:
			if !ok {
				return nil
			}
			printState(out, st, c.Delay())
		case <-lines:
			if _, ok := c.Undo(); ok {
				fmt.Fprintln(out, "Restored.")
			}
		case <-sigCtx.Done():
			n := c.FlushAll()
			fmt.Fprintf(out, "\nCommitted %d pending deletion(s).\n", n)
			return commitErrors(c)
		case <-tick.C:
			if len(c.PendingIDs()) == 0 {
				return commitErrors(c)
			}
		}
	}
}

func printState(out io.Writer, st deletion.State, delay time.Duration) {
	if !st.IsVisible() {
		return
	}
	if st.Undoable {
		fmt.Fprintf(out, "%s: %s. Press Enter within %s to undo, Ctrl-C to delete now.\n", st.Message, st.Subject, delay)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", st.Message, st.Subject)
}

// commitErrors joins the deletions of c that were abandoned.
func commitErrors[T any](c *deletion.Coordinator[T]) error {
	return errors.Join(c.TakeErrors()...)
}
