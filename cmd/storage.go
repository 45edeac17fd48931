package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var flagPruneOlderThan string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or prune the study history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List articles read, newest first, with the last two weeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		var cells []string
		for _, d := range e.sess.Calendar(14) {
			mark := "·"
			if d.Studied {
				mark = "■"
			}
			cells = append(cells, fmt.Sprintf("%02d%s", d.Day, mark))
		}
		fmt.Println(joinWrap(cells, 7))
		fmt.Printf("Streak: %dd\n\n", e.sess.Streak())

		sessions := e.sess.RecentArticles(0)
		if len(sessions) == 0 {
			fmt.Println("Nothing read yet.")
			return nil
		}
		for _, s := range sessions {
			fmt.Printf("%s  %s\n", s.Date, s.Title)
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old study sessions",
	Long: `Delete study sessions older than the retention period.

Uses the retention value from config (default: 90d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		retention := e.cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := parseSince(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted := e.sess.PruneHistory(cmd.Context(), retention)
		if deleted == 0 {
			fmt.Println("Nothing to prune.")
		} else {
			fmt.Printf("Pruned %d session(s) older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		stats, err := e.store.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		fmt.Printf("Storage: %s (%s)\n", stats.Backend, stats.Location)
		fmt.Printf("Sessions: %d\n", stats.Sessions)
		fmt.Printf("Words: %d\n", stats.Words)
		fmt.Printf("Size: %s\n", formatBytes(stats.Bytes))
		fmt.Printf("Streak: %dd\n", e.sess.Streak())
		return nil
	},
}

func init() {
	historyPruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")

	historyCmd.AddCommand(historyListCmd, historyPruneCmd)
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		return fmt.Sprintf("%dd", days)
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// joinWrap joins cells with spaces, n per line.
func joinWrap(cells []string, n int) string {
	out := ""
	for i, c := range cells {
		switch {
		case i == 0:
		case i%n == 0:
			out += "\n"
		default:
			out += " "
		}
		out += c
	}
	return out
}
