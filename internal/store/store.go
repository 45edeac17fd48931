package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Storage keys. Each holds one whole JSON list.
const (
	HistoryKey    = "lexis_history"
	VocabularyKey = "lexis_vocab"
)

// Store persists the study history and the vocabulary bank. Lists are read
// once at startup and rewritten in full on every change.
type Store interface {
	LoadHistory(ctx context.Context) ([]StudySession, error)
	SaveHistory(ctx context.Context, sessions []StudySession) error
	LoadVocabulary(ctx context.Context) ([]VocabularyWord, error)
	SaveVocabulary(ctx context.Context, words []VocabularyWord) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarises what is stored.
type Stats struct {
	Backend  string
	Location string
	Sessions int
	Words    int
	Bytes    int64
}

var errNotFound = errors.New("key not found")

// kv is the minimal surface every backend provides.
type kv interface {
	get(ctx context.Context, key string) ([]byte, error)
	put(ctx context.Context, key string, value []byte) error
	size(ctx context.Context) (int64, error)
	close() error
}

type listStore struct {
	backend  string
	location string
	kv       kv
}

func newListStore(backend, location string, k kv) *listStore {
	return &listStore{backend: backend, location: location, kv: k}
}

func (s *listStore) LoadHistory(ctx context.Context) ([]StudySession, error) {
	var out []StudySession
	if err := s.load(ctx, HistoryKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *listStore) SaveHistory(ctx context.Context, sessions []StudySession) error {
	if sessions == nil {
		sessions = []StudySession{}
	}
	return s.save(ctx, HistoryKey, sessions)
}

func (s *listStore) LoadVocabulary(ctx context.Context) ([]VocabularyWord, error) {
	var out []VocabularyWord
	if err := s.load(ctx, VocabularyKey, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *listStore) SaveVocabulary(ctx context.Context, words []VocabularyWord) error {
	if words == nil {
		words = []VocabularyWord{}
	}
	return s.save(ctx, VocabularyKey, words)
}

func (s *listStore) Stats(ctx context.Context) (Stats, error) {
	history, err := s.LoadHistory(ctx)
	if err != nil {
		return Stats{}, err
	}
	words, err := s.LoadVocabulary(ctx)
	if err != nil {
		return Stats{}, err
	}
	n, err := s.kv.size(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("measuring %s store: %w", s.backend, err)
	}
	return Stats{
		Backend:  s.backend,
		Location: s.location,
		Sessions: len(history),
		Words:    len(words),
		Bytes:    n,
	}, nil
}

func (s *listStore) Close() error {
	return s.kv.close()
}

func (s *listStore) load(ctx context.Context, key string, v any) error {
	data, err := s.kv.get(ctx, key)
	if errors.Is(err, errNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", key, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *listStore) save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.put(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Open selects a backend by driver name. dsn is the sqlite file path, the
// postgres connection string or the redis URL.
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return OpenSQLite(dsn)
	case "postgres":
		return OpenPostgres(ctx, dsn)
	case "redis":
		return OpenRedis(ctx, dsn, "lexis")
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %q (valid: sqlite, postgres, redis, memory)", driver)
	}
}
