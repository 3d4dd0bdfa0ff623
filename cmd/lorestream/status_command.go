package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"lorestream/internal/deps"
	"lorestream/internal/journal"
	"lorestream/internal/resume"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent sessions, the resume point, and dependency health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			next := resume.NewLedger(cfg.ResumeFile(), nil).Read()
			fmt.Fprintf(out, "Next slide index: %d\n", next)
			fmt.Fprintf(out, "Destination: %s\n\n", cfg.Stream.Destination)

			if err := printSessions(cmd, cfg.JournalFile(), limit); err != nil {
				return err
			}

			fmt.Fprintln(out)
			printDependencies(cmd, deps.Check(deps.Requirements(cfg)))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of sessions to show")
	return cmd
}

func printSessions(cmd *cobra.Command, journalPath string, limit int) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat(journalPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "No sessions recorded yet")
			return nil
		}
		return fmt.Errorf("stat journal: %w", err)
	}

	store, err := journal.Open(journalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	sessions, err := store.RecentSessions(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(sessions))
	for _, sess := range sessions {
		rows = append(rows, []string{
			shortID(sess.ID),
			sess.Status,
			sess.StartedAt.Local().Format(time.DateTime),
			endedAt(sess),
			strconv.Itoa(sess.StartIndex),
			endIndex(sess),
			strconv.Itoa(sess.Slides),
			strconv.FormatInt(sess.Frames, 10),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Session", "Status", "Started", "Ended", "From", "Next", "Slides", "Frames"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func printDependencies(cmd *cobra.Command, statuses []deps.Status) {
	rows := make([][]string, 0, len(statuses))
	for _, status := range statuses {
		rows = append(rows, []string{
			status.Name,
			availability(status),
			status.Detail,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Dependency", "State", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func endedAt(sess journal.Session) string {
	if !sess.EndedAt.Valid {
		return "-"
	}
	return sess.EndedAt.Time.Local().Format(time.DateTime)
}

func endIndex(sess journal.Session) string {
	if !sess.EndIndex.Valid {
		return "-"
	}
	return strconv.FormatInt(sess.EndIndex.Int64, 10)
}

func availability(status deps.Status) string {
	switch {
	case status.Available:
		return "ok"
	case status.Optional:
		return "missing (optional)"
	default:
		return "missing"
	}
}
