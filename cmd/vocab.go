package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/matheuskafuri/lexis/internal/export"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagExportFormat string
	flagExportOut    string
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Manage the vocabulary bank",
}

var vocabListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved words",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		words := e.sess.Vocabulary()
		if len(words) == 0 {
			fmt.Println("Your word bank is empty.")
			return nil
		}
		printWords(os.Stdout, words)
		return nil
	},
}

var vocabAddCmd = &cobra.Command{
	Use:   "add <word>",
	Short: "Look up a word and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := timeout(cmd.Context(), time.Minute)
		defer cancel()

		e, err := openEnv(ctx, false)
		if err != nil {
			return err
		}
		defer e.Close()

		w, notice, err := e.sess.LookupAndAdd(ctx, args[0])
		if err != nil {
			return errors.New(notice)
		}
		fmt.Println(notice)
		printWord(os.Stdout, w)
		return nil
	},
}

var vocabRemoveCmd = &cobra.Command{
	Use:   "remove <word|id>",
	Short: "Remove a word from the bank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		w, ok := findWord(e.sess.Vocabulary(), args[0])
		if !ok {
			return fmt.Errorf("%q is not in your bank", args[0])
		}
		e.sess.RemoveWord(cmd.Context(), w.ID)
		fmt.Printf("Removed %q.\n", w.Word)
		return nil
	},
}

var vocabExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the bank as CSV or XLSX",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer e.Close()

		var w io.Writer = os.Stdout
		if flagExportOut != "" {
			f, err := os.Create(flagExportOut)
			if err != nil {
				return fmt.Errorf("creating %s: %w", flagExportOut, err)
			}
			defer f.Close()
			w = f
		}

		words := e.sess.Vocabulary()
		if err := export.Write(w, flagExportFormat, words); err != nil {
			return fmt.Errorf("exporting: %w", err)
		}
		if flagExportOut != "" {
			fmt.Printf("Exported %d word(s) to %s.\n", len(words), flagExportOut)
		}
		return nil
	},
}

func init() {
	vocabExportCmd.Flags().StringVar(&flagExportFormat, "format", "csv", "export format: csv or xlsx")
	vocabExportCmd.Flags().StringVarP(&flagExportOut, "out", "o", "", "output file (default stdout)")

	vocabCmd.AddCommand(vocabListCmd, vocabAddCmd, vocabRemoveCmd, vocabExportCmd)
}

// findWord matches an id exactly or a word case-insensitively.
func findWord(words []store.VocabularyWord, key string) (store.VocabularyWord, bool) {
	for _, w := range words {
		if w.ID == key || strings.EqualFold(w.Word, key) {
			return w, true
		}
	}
	return store.VocabularyWord{}, false
}

func printWords(out io.Writer, words []store.VocabularyWord) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tPOS\tCHINESE\tENGLISH\tADDED")
	for _, w := range words {
		added := ""
		if t := w.Added(); !t.IsZero() {
			added = t.Local().Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", w.Word, w.PartOfSpeech, w.Translation, w.Definition, added)
	}
	tw.Flush()
}

func printWord(out io.Writer, w store.VocabularyWord) {
	fmt.Fprintf(out, "%s (%s) %s\n", w.Word, w.PartOfSpeech, w.Translation)
	fmt.Fprintf(out, "  %s\n", w.Definition)
	if w.Example != "" {
		fmt.Fprintf(out, "  e.g. %s\n", w.Example)
	}
	if len(w.Phrases) > 0 {
		fmt.Fprintf(out, "  phrases: %s\n", strings.Join(w.Phrases, ", "))
	}
	if len(w.Forms) > 0 {
		fmt.Fprintf(out, "  forms: %s\n", strings.Join(w.Forms, ", "))
	}
}
