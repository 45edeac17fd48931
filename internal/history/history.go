package history

import (
	"time"

	"github.com/matheuskafuri/lexis/internal/store"
)

// Journal is the append-only study log.
type Journal struct {
	sessions []store.StudySession
}

// New wraps sessions loaded from storage.
func New(sessions []store.StudySession) *Journal {
	return &Journal{sessions: append([]store.StudySession(nil), sessions...)}
}

// Record appends a session for article on date unless one already exists
// for that (date, article id) pair. It reports whether anything was added.
func (j *Journal) Record(date string, article store.Article) bool {
	if j.Has(date, article.ID) {
		return false
	}
	j.sessions = append(j.sessions, store.StudySession{
		Date:      date,
		ArticleID: article.ID,
		Title:     article.Title,
	})
	return true
}

// Has reports whether a session exists for the pair.
func (j *Journal) Has(date, articleID string) bool {
	for _, s := range j.sessions {
		if s.Date == date && s.ArticleID == articleID {
			return true
		}
	}
	return false
}

// Sessions returns a copy in insertion order.
func (j *Journal) Sessions() []store.StudySession {
	return append([]store.StudySession(nil), j.sessions...)
}

// Recent returns up to n sessions, newest first. n <= 0 means all.
func (j *Journal) Recent(n int) []store.StudySession {
	out := make([]store.StudySession, 0, len(j.sessions))
	for i := len(j.sessions) - 1; i >= 0; i-- {
		out = append(out, j.sessions[i])
		if n > 0 && len(out) == n {
			break
		}
	}
	return out
}

// StudiedOn reports whether any session was recorded on date.
func (j *Journal) StudiedOn(date string) bool {
	for _, s := range j.sessions {
		if s.Date == date {
			return true
		}
	}
	return false
}

// Day is one cell of the activity calendar.
type Day struct {
	Date    string
	Day     int
	Studied bool
	Today   bool
}

// Calendar returns the last n days ending at today, oldest first.
func (j *Journal) Calendar(today time.Time, n int) []Day {
	today = today.UTC()
	todayStr := store.Day(today)
	days := make([]Day, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i)
		ds := store.Day(d)
		days = append(days, Day{
			Date:    ds,
			Day:     d.Day(),
			Studied: j.StudiedOn(ds),
			Today:   ds == todayStr,
		})
	}
	return days
}

// Streak counts consecutive studied days ending today. A streak that ended
// yesterday still counts until today is over.
func (j *Journal) Streak(today time.Time) int {
	d := today.UTC()
	if !j.StudiedOn(store.Day(d)) {
		d = d.AddDate(0, 0, -1)
	}
	streak := 0
	for j.StudiedOn(store.Day(d)) {
		streak++
		d = d.AddDate(0, 0, -1)
	}
	return streak
}

// Prune drops sessions dated before cutoff and returns how many were removed.
func (j *Journal) Prune(cutoff time.Time) int {
	limit := store.Day(cutoff)
	out := j.sessions[:0]
	removed := 0
	for _, s := range j.sessions {
		if s.Date < limit {
			removed++
			continue
		}
		out = append(out, s)
	}
	j.sessions = out
	return removed
}

func (j *Journal) Len() int { return len(j.sessions) }
