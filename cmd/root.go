package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/matheuskafuri/lexis/internal/update"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagConfig       string
	flagEphemeral    bool
	flagCheckUpdates bool
)

var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Terminal English reader with AI articles, narration and a word bank",
	Long: `lexis generates study articles on a topic or from today's headlines, reads them
aloud, and keeps a personal vocabulary bank with translations and examples.

Run without a subcommand to open the reader.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}
		return nil
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&flagEphemeral, "ephemeral", false, "keep history and vocabulary in memory only")

	versionCmd.Flags().BoolVar(&flagCheckUpdates, "check", false, "check for a newer release")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(headlinesCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(vocabCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("lexis %s (commit: %s, built: %s)\n", version, commit, date)
		if !flagCheckUpdates {
			return nil
		}

		res, err := update.NewChecker().Check(cmd.Context(), version)
		if err != nil {
			return err
		}
		if res == nil {
			fmt.Println("You are on the latest release.")
			return nil
		}
		fmt.Printf("Update available: v%s %s\n", res.LatestVersion, res.URL)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
