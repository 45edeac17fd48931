package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/matheuskafuri/lexis/internal/ai"
	"github.com/matheuskafuri/lexis/internal/config"
	"github.com/matheuskafuri/lexis/internal/extract"
	"github.com/matheuskafuri/lexis/internal/feed"
	"github.com/matheuskafuri/lexis/internal/session"
	"github.com/matheuskafuri/lexis/internal/store"
)

// env is everything a command needs: config, logger, storage and the
// session built on top of them.
type env struct {
	cfg   *config.Config
	log   *slog.Logger
	store store.Store
	sess  *session.Session

	logFile io.Closer
}

// openEnv loads config and opens storage. When logToFile is set the logger
// writes to the log file instead of stderr, leaving the terminal to the UI.
func openEnv(ctx context.Context, logToFile bool) (*env, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	e := &env{cfg: cfg}
	var w io.Writer = os.Stderr
	if logToFile {
		f, err := openLogFile(cfg.LogFile())
		if err != nil {
			return nil, err
		}
		w = f
		e.logFile = f
	}
	e.log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel()}))

	if flagEphemeral {
		e.store = store.NewMemory()
	} else {
		e.store, err = store.Open(ctx, cfg.StorageDriver(), cfg.StorageDSN())
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("opening storage: %w", err)
		}
	}

	opts := session.Options{Topics: cfg.Topics, Logger: e.log}
	if cfg.AIEnabled() {
		gen, err := ai.New(cfg.AI, cfg.AIKey(),
			ai.WithPageReader(extract.New()),
			ai.WithLogger(e.log),
			ai.WithHeadlineCount(cfg.HeadlineCount()),
		)
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("creating AI client: %w", err)
		}
		opts.Generator = gen
	}
	if cfg.HeadlineSource() == "feed" {
		opts.Headlines = feed.NewSource(cfg.EnabledFeeds(), cfg.HeadlineCount(), e.log)
	}
	if cfg.NarrationEnabled() {
		n, err := ai.NewNarrator(cfg.Narration, cfg.NarrationKey())
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("creating narrator: %w", err)
		}
		opts.Narrator = n
	}

	e.sess, err = session.Open(ctx, e.store, opts)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("opening session: %w", err)
	}
	return e, nil
}

func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.log.Warn("closing storage", "err", err)
		}
	}
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
