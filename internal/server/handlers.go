package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matheuskafuri/lexis/internal/audio"
	"github.com/matheuskafuri/lexis/internal/session"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

type ArticleRequest struct {
	Topic    string          `json:"topic"`
	Headline *store.Headline `json:"headline"`
}

type WordRequest struct {
	Word string `json:"word"`
}

type WordResponse struct {
	Word   store.VocabularyWord `json:"word"`
	Notice string               `json:"notice"`
}

type NarrationResponse struct {
	Audio      string `json:"audio"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
}

type CalendarDay struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	Studied bool   `json:"studied"`
	Today   bool   `json:"today"`
}

type CalendarResponse struct {
	Days   []CalendarDay `json:"days"`
	Streak int           `json:"streak"`
}

func (s *Server) GetHealth(c *gin.Context) {
	s.mu.Lock()
	phase := s.sess.Phase()
	aiEnabled := s.sess.AIEnabled()
	s.mu.Unlock()

	res := gin.H{"status": "healthy", "phase": phase.String(), "ai": aiEnabled}
	if s.opts.Store != nil {
		stats, err := s.opts.Store.Stats(c.Request.Context())
		if err != nil {
			s.log.Error("error reading store stats", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "storage": "unavailable"})
			return
		}
		res["storage"] = stats.Backend
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) GetTopics(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.sess.Topics())
}

func (s *Server) GetHeadlines(c *gin.Context) {
	s.mu.Lock()
	cached := s.sess.Headlines()
	s.mu.Unlock()

	if len(cached) > 0 && c.Query("refresh") == "" {
		c.JSON(http.StatusOK, cached)
		return
	}

	hs, err := s.sess.FetchHeadlines(c.Request.Context())
	s.mu.Lock()
	s.sess.SetHeadlines(hs, err)
	out := s.sess.Headlines()
	s.mu.Unlock()

	if out == nil {
		out = []store.Headline{}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) CreateArticle(c *gin.Context) {
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.Topic == "" && req.Headline == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "topic or headline is required"})
		return
	}

	s.mu.Lock()
	err := s.sess.BeginArticle()
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		article store.Article
		kind    session.Kind
	)
	if req.Headline != nil {
		kind = session.HeadlineArticle
		article, err = s.sess.GenerateFromHeadline(ctx, *req.Headline)
	} else {
		kind = session.TopicArticle
		article, err = s.sess.GenerateForTopic(ctx, req.Topic)
	}

	s.mu.Lock()
	notice := s.sess.FinishArticle(context.WithoutCancel(ctx), kind, article, err)
	s.mu.Unlock()

	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": notice})
		return
	}
	c.JSON(http.StatusCreated, article)
}

func (s *Server) GetCurrentArticle(c *gin.Context) {
	s.mu.Lock()
	a, ok := s.sess.Article()
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No article is open"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) CloseArticle(c *gin.Context) {
	s.mu.Lock()
	s.sess.Back()
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (s *Server) NarrateArticle(c *gin.Context) {
	s.mu.Lock()
	a, ok := s.sess.Article()
	enabled := s.sess.NarrationEnabled()
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No article is open"})
		return
	}
	if !enabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": session.ErrNarrationDisabled.Error()})
		return
	}

	data, err := s.sess.Narrate(c.Request.Context(), a)
	if err != nil {
		s.log.Error("error generating narration", "error", err, "article_id", a.ID)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Narration failed"})
		return
	}
	c.JSON(http.StatusOK, NarrationResponse{
		Audio:      data,
		SampleRate: s.opts.SampleRate,
		Channels:   audio.DefaultChannels,
	})
}

func (s *Server) GetVocabulary(c *gin.Context) {
	s.mu.Lock()
	words := s.sess.Vocabulary()
	s.mu.Unlock()
	if words == nil {
		words = []store.VocabularyWord{}
	}
	c.JSON(http.StatusOK, words)
}

// AddWord stores a placeholder and answers at once; the lookup finishes in
// the background.
func (s *Server) AddWord(c *gin.Context) {
	var req WordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "word is required"})
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	s.mu.Lock()
	w, notice, err := s.sess.AddWord(ctx, req.Word)
	s.mu.Unlock()

	switch {
	case errors.Is(err, vocab.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": notice})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": notice})
		return
	}

	s.lookups.Add(1)
	go s.lookup(ctx, w)

	c.JSON(http.StatusAccepted, WordResponse{Word: w, Notice: notice})
}

func (s *Server) lookup(parent context.Context, w store.VocabularyWord) {
	defer s.lookups.Done()
	ctx, cancel := context.WithTimeout(parent, lookupTimeout)
	defer cancel()

	d, err := s.sess.Lookup(ctx, w.Word)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.sess.FailLookup(ctx, w.ID, err)
		return
	}
	s.sess.ApplyLookup(ctx, w.ID, d)
}

func (s *Server) GetWord(c *gin.Context) {
	s.mu.Lock()
	w, ok := s.sess.Word(c.Param("id"))
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Word not found"})
		return
	}
	c.JSON(http.StatusOK, w)
}

func (s *Server) RemoveWord(c *gin.Context) {
	s.mu.Lock()
	ok := s.sess.RemoveWord(c.Request.Context(), c.Param("id"))
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Word not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetHistory(c *gin.Context) {
	s.mu.Lock()
	sessions := s.sess.RecentArticles(0)
	s.mu.Unlock()
	c.JSON(http.StatusOK, sessions)
}

func (s *Server) GetCalendar(c *gin.Context) {
	days := 14
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 366"})
			return
		}
		days = n
	}

	s.mu.Lock()
	cal := s.sess.Calendar(days)
	streak := s.sess.Streak()
	s.mu.Unlock()

	res := CalendarResponse{Days: make([]CalendarDay, len(cal)), Streak: streak}
	for i, d := range cal {
		res.Days[i] = CalendarDay{Date: d.Date, Day: d.Day, Studied: d.Studied, Today: d.Today}
	}
	c.JSON(http.StatusOK, res)
}
