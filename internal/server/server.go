package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/matheuskafuri/lexis/internal/session"
	"github.com/matheuskafuri/lexis/internal/store"
)

const lookupTimeout = time.Minute

type Options struct {
	Store          store.Store
	AllowedOrigins []string
	SampleRate     int
	Logger         *slog.Logger
}

// Server exposes one session over HTTP. Every handler serialises on the
// session lock; provider calls run with the lock released.
type Server struct {
	mu   sync.Mutex
	sess *session.Session
	opts Options
	log  *slog.Logger

	lookups sync.WaitGroup
}

func New(sess *session.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 24000
	}
	return &Server{sess: sess, opts: opts, log: opts.Logger}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())

	if len(s.opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.opts.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type"},
		}))
	}

	r.GET("/health", s.GetHealth)
	r.GET("/topics", s.GetTopics)
	r.GET("/headlines", s.GetHeadlines)

	r.POST("/articles", s.CreateArticle)
	r.GET("/articles/current", s.GetCurrentArticle)
	r.DELETE("/articles/current", s.CloseArticle)
	r.POST("/articles/current/narration", s.NarrateArticle)

	r.GET("/vocabulary", s.GetVocabulary)
	r.POST("/vocabulary", s.AddWord)
	r.GET("/vocabulary/:id", s.GetWord)
	r.DELETE("/vocabulary/:id", s.RemoveWord)

	r.GET("/history", s.GetHistory)
	r.GET("/history/calendar", s.GetCalendar)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// background lookups.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Wait()
	return err
}

// Wait blocks until background lookups finish.
func (s *Server) Wait() { s.lookups.Wait() }

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
