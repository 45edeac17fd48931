package tui

import (
	"github.com/matheuskafuri/lexis/internal/audio"
	"github.com/matheuskafuri/lexis/internal/session"
	"github.com/matheuskafuri/lexis/internal/store"
	"github.com/matheuskafuri/lexis/internal/vocab"
)

type articleMsg struct {
	kind    session.Kind
	article store.Article
	err     error
}

type headlinesMsg struct {
	headlines []store.Headline
	err       error
}

type lookupMsg struct {
	id      string
	details vocab.Details
	err     error
}

type narrationMsg struct {
	articleID string
	data      string
	err       error
}

type endedMsg audio.Ended

type playbackTickMsg struct{}

type toastExpiredMsg struct {
	seq int
}

type errMsg struct {
	err error
}
