package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Vocabulary"

var header = []string{"Word", "Part of speech", "Chinese", "English", "Example", "Phrases", "Forms", "Added"}

// Formats lists the supported export formats.
var Formats = []string{"csv", "xlsx"}

// Write encodes words in the given format.
func Write(w io.Writer, format string, words []store.VocabularyWord) error {
	switch strings.ToLower(format) {
	case "csv":
		return CSV(w, words)
	case "xlsx":
		return XLSX(w, words)
	default:
		return fmt.Errorf("unknown export format %q (valid: %s)", format, strings.Join(Formats, ", "))
	}
}

func row(w store.VocabularyWord) []string {
	return []string{
		w.Word,
		w.PartOfSpeech,
		w.Translation,
		w.Definition,
		w.Example,
		strings.Join(w.Phrases, "; "),
		strings.Join(w.Forms, "; "),
		w.AddedAt,
	}
}

func CSV(w io.Writer, words []store.VocabularyWord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, word := range words {
		if err := cw.Write(row(word)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func XLSX(w io.Writer, words []store.VocabularyWord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}
	for i, word := range words {
		if err := setRow(f, i+2, row(word)); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "D", "E", 48); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, n int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("writing row %d: %w", n, err)
	}
	return nil
}
