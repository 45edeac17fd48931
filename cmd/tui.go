package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/matheuskafuri/lexis/internal/audio"
	"github.com/matheuskafuri/lexis/internal/tui"
	"github.com/spf13/cobra"
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, true)
	if err != nil {
		return err
	}
	defer e.Close()

	if n := e.sess.PruneHistory(ctx, e.cfg.RetentionDuration()); n > 0 {
		e.log.Info("pruned study history", "sessions", n)
	}

	clock := audio.NewSystemClock()
	out := audio.NewOtoOutput(clock, e.log)

	return tui.Run(tui.RunOpts{
		Session:    e.sess,
		Output:     out,
		Ended:      out.Ended(),
		Clock:      clock,
		SampleRate: e.cfg.SampleRate(),
		Logger:     e.log,
	})
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

// timeout derives a bounded context for one-shot commands.
func timeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, d)
}
