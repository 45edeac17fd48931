package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func testSQLite(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "lexis.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleWords() []VocabularyWord {
	return []VocabularyWord{
		{ID: "w1", Word: "resilient", PartOfSpeech: "adj.", Translation: "有弹性的", Definition: "able to recover quickly", Phrases: []string{"resilient economy"}, Forms: []string{"resilience"}, AddedAt: "2026-10-01T10:00:00Z"},
		{ID: "w2", Word: "tariff", PartOfSpeech: "n.", Translation: "关税", Definition: "a tax on imports", AddedAt: "2026-10-02T10:00:00Z"},
	}
}

func sampleSessions() []StudySession {
	return []StudySession{
		{Date: "2026-10-01", ArticleID: "1759312800000", Title: "Chips and Power"},
		{Date: "2026-10-02", ArticleID: "1759399200000", Title: "Trade Winds"},
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	history, err := s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory on empty store: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("expected empty history, got %d", len(history))
	}

	if err := s.SaveHistory(ctx, sampleSessions()); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	if err := s.SaveVocabulary(ctx, sampleWords()); err != nil {
		t.Fatalf("SaveVocabulary: %v", err)
	}

	history, err = s.LoadHistory(ctx)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(history) != 2 || history[1].Title != "Trade Winds" {
		t.Errorf("unexpected history: %+v", history)
	}

	words, err := s.LoadVocabulary(ctx)
	if err != nil {
		t.Fatalf("LoadVocabulary: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words, got %d", len(words))
	}
	if words[0].Translation != "有弹性的" || words[0].Forms[0] != "resilience" {
		t.Errorf("unexpected first word: %+v", words[0])
	}

	// Full rewrite replaces, never appends.
	if err := s.SaveVocabulary(ctx, sampleWords()[1:]); err != nil {
		t.Fatalf("SaveVocabulary rewrite: %v", err)
	}
	words, _ = s.LoadVocabulary(ctx)
	if len(words) != 1 || words[0].ID != "w2" {
		t.Errorf("expected only w2 after rewrite, got %+v", words)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Sessions != 2 || st.Words != 1 {
		t.Errorf("unexpected stats: %+v", st)
	}
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, testSQLite(t))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("LEXIS_TEST_REDIS_URL")
	if url == "" {
		t.Skip("LEXIS_TEST_REDIS_URL not set")
	}
	s, err := OpenRedis(context.Background(), url, "lexis-test-"+t.Name())
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("LEXIS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("LEXIS_TEST_POSTGRES_DSN not set")
	}
	s, err := OpenPostgres(context.Background(), dsn)
	if err != nil {
		t.Fatalf("OpenPostgres: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	s.SaveHistory(ctx, nil)
	s.SaveVocabulary(ctx, nil)
	exerciseStore(t, s)
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexis.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.SaveVocabulary(context.Background(), sampleWords()); err != nil {
		t.Fatalf("save: %v", err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	words, err := s.LoadVocabulary(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(words) != 2 {
		t.Errorf("expected 2 words after reopen, got %d", len(words))
	}
}

func TestOpenCreatesDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "sub", "deep", "lexis.db")
	s, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("opening db in nested dir: %v", err)
	}
	s.Close()
	if _, err := os.Stat(filepath.Dir(dbPath)); os.IsNotExist(err) {
		t.Error("expected directory to be created")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "mongo", ""); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestRebind(t *testing.T) {
	k := &sqlKV{dialect: "postgres"}
	got := k.rebind("INSERT INTO kv (key, value) VALUES (?, ?)")
	want := "INSERT INTO kv (key, value) VALUES ($1, $2)"
	if got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
	k.dialect = "sqlite"
	if got := k.rebind("SELECT ?"); got != "SELECT ?" {
		t.Errorf("sqlite rebind changed query: %q", got)
	}
}

func TestArticleHelpers(t *testing.T) {
	a := Article{Content: "First paragraph here.\n\n  \nSecond one.", Translation: "第一段\n\n第二段"}
	if got := len(a.Paragraphs()); got != 2 {
		t.Errorf("expected 2 paragraphs, got %d", got)
	}
	if got := len(a.TranslationParagraphs()); got != 2 {
		t.Errorf("expected 2 translation paragraphs, got %d", got)
	}
	if a.ReadingTime() != 1 {
		t.Errorf("expected minimum reading time of 1, got %d", a.ReadingTime())
	}
}
