package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagHeadline    int
	flagTranslation bool
	flagAudioOut    string
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "List today's headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := timeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		printHeadlines(os.Stdout, headlineOrigin(e.cfg), e.sess.LoadHeadlines(ctx))
		return nil
	},
}

// headlineOrigin names where headlines come from: the enabled feeds, or the
// AI provider.
func headlineOrigin(cfg *config.Config) string {
	if cfg.HeadlineSource() == "feed" {
		names := cfg.FeedNames()
		if len(names) == 0 {
			return "feeds (none enabled)"
		}
		return "feeds: " + strings.Join(names, ", ")
	}
	if cfg.AI != nil && cfg.AI.Provider != "" {
		return "AI (" + cfg.AI.Provider + ")"
	}
	return "AI"
}

func printHeadlines(w io.Writer, origin string, hs []store.Headline) {
	fmt.Fprintf(w, "Headlines from %s\n\n", origin)
	if len(hs) == 0 {
		fmt.Fprintln(w, "No headlines available.")
		return
	}
	for i, h := range hs {
		fmt.Fprintf(w, "%2d. %s (%s)\n", i+1, h.Title, h.Source)
		if h.Summary != "" {
			fmt.Fprintf(w, "    %s\n", h.Summary)
		}
		if h.URL != "" {
			fmt.Fprintf(w, "    %s\n", h.URL)
		}
	}
}

var readCmd = &cobra.Command{
	Use:   "read [topic]",
	Short: "Generate an article and print it",
	Long: `Generate a study article for a topic, or from one of today's headlines with
--headline, and print it. The reading is recorded in the study history.

With --audio the narration is written as raw mono s16le PCM.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && flagHeadline == 0 {
			return fmt.Errorf("give a topic or --headline N")
		}

		ctx, cancel := timeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		var (
			article store.Article
			notice  string
		)
		if flagHeadline > 0 {
			hs := e.sess.LoadHeadlines(ctx)
			if flagHeadline > len(hs) {
				return fmt.Errorf("headline %d not found (%d available)", flagHeadline, len(hs))
			}
			article, notice, err = e.sess.SelectHeadline(ctx, hs[flagHeadline-1])
		} else {
			article, notice, err = e.sess.SelectTopic(ctx, args[0])
		}
		if err != nil {
			return fmt.Errorf("%s: %w", notice, err)
		}

		printArticle(os.Stdout, article, flagTranslation)

		if flagAudioOut != "" {
			if err := writeNarration(ctx, e, flagAudioOut); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	readCmd.Flags().IntVar(&flagHeadline, "headline", 0, "generate from the Nth headline instead of a topic")
	readCmd.Flags().BoolVar(&flagTranslation, "translation", false, "print the Chinese translation after the article")
	readCmd.Flags().StringVar(&flagAudioOut, "audio", "", "write narration to this file (raw s16le mono PCM)")
}

func printArticle(w io.Writer, a store.Article, translation bool) {
	fmt.Fprintf(w, "%s\n%s · %s · %d min read\n\n", a.Title, a.Topic, a.Date, a.ReadingTime())
	if a.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", a.Summary)
	}
	fmt.Fprintln(w, strings.Join(a.Paragraphs(), "\n\n"))
	if translation && a.Translation != "" {
		fmt.Fprintf(w, "\n---\n\n%s\n", strings.Join(a.TranslationParagraphs(), "\n\n"))
	}
}

func writeNarration(ctx context.Context, e *env, path string) error {
	data, err := e.sess.NarrateCurrent(ctx)
	if err != nil {
		return fmt.Errorf("narrating: %w", err)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("decoding narration: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing narration: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Narration written to %s (%d Hz mono s16le).\n", path, e.cfg.SampleRate())
	return nil
}
