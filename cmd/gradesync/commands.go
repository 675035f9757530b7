package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/younsl/gradesync/pkg/logging"
	"github.com/younsl/gradesync/pkg/publishing"
)

var (
	errSyncFailed     = errors.New("grade sync ended in error")
	errPollingStopped = errors.New("status polling stopped, run gradesync status to check again")
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the SIS grade sync status once",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func newPublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Sync grades to SIS and follow the job until it finishes",
		Args:  cobra.NoArgs,
		RunE:  runPublish,
	}
	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sync status changes for the course",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of entries to show (0 for all)")
	return cmd
}

func newCLISession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newSession(cfg, logging.NewStderrLogger(cfg.Logging.Level))
}

func runStatus(cmd *cobra.Command, args []string) error {
	sess, err := newCLISession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	presenter := newLinePresenter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	poller := sess.newPoller(presenter)
	defer poller.Stop()

	poller.TriggerCheck(cmd.Context())

	if poller.Snapshot().Status == publishing.StatusUnknown {
		return fmt.Errorf("no sync status available for course %s", sess.cfg.Canvas.CourseID)
	}
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := newCLISession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	presenter := newLinePresenter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	poller := sess.newPoller(presenter)
	defer poller.Stop()

	poller.TriggerCheck(ctx)
	if _, ok := poller.ConfirmPrompt(); !ok {
		status := poller.Snapshot().Status
		if status == publishing.StatusUnknown {
			return fmt.Errorf("no sync status available for course %s", sess.cfg.Canvas.CourseID)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Sync not available while status is %s\n", status)
		return nil
	}

	assumeYes, _ := cmd.Flags().GetBool("yes")
	confirmer := newPromptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes)
	poller.Publish(ctx, confirmer)
	if !confirmer.yes {
		fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
		return nil
	}

	status, err := waitForSync(ctx, poller, presenter.updates, sess.pollInterval())
	if err != nil {
		return err
	}
	if status == publishing.StatusError {
		return errSyncFailed
	}
	return nil
}

// waitForSync blocks until the held status leaves pending/publishing. Updates
// and the ticker only wake the loop; the poller snapshot is the source of
// truth. A failed or empty follow-up check stops polling without an update,
// so an idle poller with an in-progress status ends the wait.
func waitForSync(ctx context.Context, poller *publishing.Poller, updates <-chan publishing.Presentation, interval time.Duration) (publishing.JobStatus, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snapshot := poller.Snapshot()
		if !snapshot.Status.InProgress() {
			return snapshot.Status, nil
		}
		if !snapshot.Active {
			return snapshot.Status, fmt.Errorf("%w while the sync was %s", errPollingStopped, snapshot.Status)
		}

		select {
		case <-updates:
		case <-ticker.C:
		case <-ctx.Done():
			return snapshot.Status, ctx.Err()
		}
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	sess, err := newCLISession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()

	if sess.history == nil {
		return fmt.Errorf("history file %s is not available", sess.cfg.Publishing.HistoryFile)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := sess.history.List(sess.cfg.Canvas.CourseID, limit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No recorded status changes for course %s\n", sess.cfg.Canvas.CourseID)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tFROM\tTO\tMESSAGES")
	now := time.Now()
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			humanize.RelTime(e.RecordedAt, now, "ago", "from now"),
			e.From, e.To, humanize.Comma(int64(len(e.Report))))
	}
	return w.Flush()
}
