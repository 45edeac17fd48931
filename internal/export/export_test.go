package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/xuri/excelize/v2"
)

var words = []store.VocabularyWord{
	{
		ID:           "1",
		Word:         "ephemeral",
		PartOfSpeech: "adj.",
		Translation:  "短暂的",
		Definition:   "lasting a short time",
		Example:      "Fame is ephemeral, \"they\" say.",
		Phrases:      []string{"ephemeral art", "ephemeral nature"},
		Forms:        []string{"ephemerally"},
		AddedAt:      "2026-10-19T10:00:00Z",
	},
	{ID: "2", Word: "tariff", PartOfSpeech: "n."},
}

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "csv", words); err != nil {
		t.Fatalf("Write: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(records))
	}
	if records[0][0] != "Word" {
		t.Errorf("unexpected header %v", records[0])
	}
	r := records[1]
	if r[0] != "ephemeral" || r[2] != "短暂的" || r[4] != words[0].Example {
		t.Errorf("unexpected row %v", r)
	}
	if r[5] != "ephemeral art; ephemeral nature" {
		t.Errorf("phrases should be joined, got %q", r[5])
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "XLSX", words); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[1][0] != "ephemeral" || rows[2][0] != "tariff" || rows[1][6] != "ephemerally" {
		t.Errorf("unexpected rows %v", rows)
	}
}

func TestUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "pdf", words); err == nil {
		t.Error("expected error for unknown format")
	}
}
