package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/matheuskafuri/lexis/internal/audio"
	"github.com/matheuskafuri/lexis/internal/browser"
	"github.com/matheuskafuri/lexis/internal/session"
	"github.com/matheuskafuri/lexis/internal/store"
)

type focusPane int

const (
	focusMain focusPane = iota
	focusVocab
)

type mode int

const (
	modeNormal mode = iota
	modeCapture
	modeHelp
)

const (
	toastDuration    = 3 * time.Second
	playbackInterval = 250 * time.Millisecond
	generateTimeout  = 2 * time.Minute
	lookupTimeout    = time.Minute
	narrationTimeout = 2 * time.Minute

	calendarDays = 14
	recentCount  = 6
)

type App struct {
	sess       *session.Session
	player     *audio.Controller
	ended      <-chan audio.Ended
	sampleRate int
	log        *slog.Logger
	openURL    func(string) error

	mode   mode
	focus  focusPane
	width  int
	height int

	// Sub-components
	captureInput textinput.Model
	spinner      spinner.Model

	// State
	pickerCursor     int
	vocabCursor      int
	scroll           int
	showTranslation  bool
	loadingHeadlines bool
	narrating        bool
	ticking          bool
	toast            string
	toastSeq         int
	currentDate      string
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Session *session.Session
	// Output plays narration; nil disables playback.
	Output audio.Output
	// Ended delivers segment completions from Output.
	Ended      <-chan audio.Ended
	Clock      audio.Clock
	SampleRate int
	Logger     *slog.Logger
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Look up a word..."
	ti.Prompt = capturePromptStyle.Render("+ ")
	ti.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultSampleRate
	}

	a := &App{
		sess:         opts.Session,
		ended:        opts.Ended,
		sampleRate:   opts.SampleRate,
		log:          opts.Logger,
		openURL:      browser.Open,
		captureInput: ti,
		spinner:      sp,
		currentDate:  time.Now().Format("Mon, Jan 2"),
	}
	if opts.Output != nil {
		clock := opts.Clock
		if clock == nil {
			clock = audio.NewSystemClock()
		}
		a.player = audio.NewController(opts.Output, clock)
	}
	return a
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEnded(a.ended)}
	if a.sess.AIEnabled() {
		cmds = append(cmds, a.fetchHeadlines())
	}
	return tea.Batch(cmds...)
}

func (a *App) fetchHeadlines() tea.Cmd {
	a.loadingHeadlines = true
	sess := a.sess
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()
		hs, err := sess.FetchHeadlines(ctx)
		return headlinesMsg{headlines: hs, err: err}
	})
}

func (a *App) selectTopic(topic string) tea.Cmd {
	if !a.sess.AIEnabled() {
		return a.showToast(session.ErrNoGenerator.Error())
	}
	if err := a.sess.BeginArticle(); err != nil {
		return a.showToast(err.Error())
	}
	sess := a.sess
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()
		art, err := sess.GenerateForTopic(ctx, topic)
		return articleMsg{kind: session.TopicArticle, article: art, err: err}
	})
}

func (a *App) selectHeadline(h store.Headline) tea.Cmd {
	if !a.sess.AIEnabled() {
		return a.showToast(session.ErrNoGenerator.Error())
	}
	if err := a.sess.BeginArticle(); err != nil {
		return a.showToast(err.Error())
	}
	sess := a.sess
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
		defer cancel()
		art, err := sess.GenerateFromHeadline(ctx, h)
		return articleMsg{kind: session.HeadlineArticle, article: art, err: err}
	})
}

func (a *App) lookupCmd(w store.VocabularyWord) tea.Cmd {
	sess := a.sess
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
		defer cancel()
		d, err := sess.Lookup(ctx, w.Word)
		return lookupMsg{id: w.ID, details: d, err: err}
	}
}

func (a *App) narrateCmd(art store.Article) tea.Cmd {
	a.narrating = true
	sess := a.sess
	return tea.Batch(a.spinner.Tick, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), narrationTimeout)
		defer cancel()
		data, err := sess.Narrate(ctx, art)
		return narrationMsg{articleID: art.ID, data: data, err: err}
	})
}

// waitForEnded blocks on the output's completion channel and turns the next
// signal into a message.
func waitForEnded(ch <-chan audio.Ended) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return endedMsg(e)
	}
}

func (a *App) openBrowserCmd(url string) tea.Cmd {
	open := a.openURL
	return func() tea.Msg {
		if err := open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) showToast(text string) tea.Cmd {
	a.toast = text
	a.toastSeq++
	seq := a.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (a *App) playbackTick() tea.Cmd {
	if a.ticking || a.player == nil || a.player.State() != audio.Playing {
		return nil
	}
	a.ticking = true
	return tea.Tick(playbackInterval, func(time.Time) tea.Msg {
		return playbackTickMsg{}
	})
}

func (a *App) busy() bool {
	return a.loadingHeadlines || a.narrating || a.sess.Phase() == session.LoadingArticle
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case articleMsg:
		notice := a.sess.FinishArticle(context.Background(), msg.kind, msg.article, msg.err)
		a.scroll = 0
		a.showTranslation = false
		a.focus = focusMain
		if notice != "" {
			return a, a.showToast(notice)
		}
		return a, nil

	case headlinesMsg:
		a.loadingHeadlines = false
		a.sess.SetHeadlines(msg.headlines, msg.err)
		a.clampPicker()
		return a, nil

	case lookupMsg:
		if msg.err != nil {
			a.sess.FailLookup(context.Background(), msg.id, msg.err)
		} else {
			a.sess.ApplyLookup(context.Background(), msg.id, msg.details)
		}
		return a, nil

	case narrationMsg:
		a.narrating = false
		return a, a.loadNarration(msg)

	case endedMsg:
		if a.player != nil && a.player.HandleEnded(audio.Ended(msg)) {
			a.log.Debug("narration finished")
		}
		return a, waitForEnded(a.ended)

	case playbackTickMsg:
		a.ticking = false
		return a, a.playbackTick()

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil

	case errMsg:
		a.log.Warn("command failed", "err", msg.err)
		return a, a.showToast(msg.err.Error())

	case spinner.TickMsg:
		if a.busy() {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) loadNarration(msg narrationMsg) tea.Cmd {
	art, ok := a.sess.Article()
	if !ok || art.ID != msg.articleID || a.player == nil {
		return nil
	}
	if msg.err != nil {
		a.log.Error("narration failed", "article_id", msg.articleID, "err", msg.err)
		return nil
	}
	buf, err := audio.DecodeBase64PCM(msg.data, a.sampleRate, audio.DefaultChannels)
	if err != nil {
		a.log.Error("decoding narration", "err", err)
		return nil
	}
	if err := a.player.Load(buf); err != nil {
		a.log.Error("starting narration", "err", err)
		return nil
	}
	return a.playbackTick()
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, a.quit()
	}

	switch a.mode {
	case modeHelp:
		switch msg.String() {
		case "?", "esc", "q":
			a.mode = modeNormal
		}
		return a, nil
	case modeCapture:
		return a.handleCaptureKey(msg)
	}

	switch msg.String() {
	case "?":
		a.mode = modeHelp
		return a, nil
	case "a":
		a.mode = modeCapture
		a.captureInput.Focus()
		return a, textinput.Blink
	case "v", "tab":
		if a.focus == focusVocab {
			a.focus = focusMain
		} else {
			a.focus = focusVocab
			a.clampVocab()
		}
		return a, nil
	}

	if a.focus == focusVocab {
		return a.handleVocabKey(msg)
	}

	switch a.sess.Phase() {
	case session.PickingTopic:
		return a.handlePickerKey(msg)
	case session.Reading:
		return a.handleReaderKey(msg)
	}
	if msg.String() == "q" {
		return a, a.quit()
	}
	return a, nil
}

// pickerLen counts topics followed by headlines.
func (a *App) pickerLen() int {
	return len(a.sess.Topics()) + len(a.sess.Headlines())
}

func (a *App) clampPicker() {
	if n := a.pickerLen(); a.pickerCursor >= n {
		a.pickerCursor = max(0, n-1)
	}
}

// selectedHeadline returns the headline under the cursor, if any.
func (a *App) selectedHeadline() (store.Headline, bool) {
	i := a.pickerCursor - len(a.sess.Topics())
	hs := a.sess.Headlines()
	if i < 0 || i >= len(hs) {
		return store.Headline{}, false
	}
	return hs[i], true
}

func (a *App) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "j", "down":
		if a.pickerCursor < a.pickerLen()-1 {
			a.pickerCursor++
		}
		return a, nil
	case "k", "up":
		if a.pickerCursor > 0 {
			a.pickerCursor--
		}
		return a, nil
	case "enter":
		topics := a.sess.Topics()
		if a.pickerCursor < len(topics) {
			return a, a.selectTopic(topics[a.pickerCursor])
		}
		if h, ok := a.selectedHeadline(); ok {
			return a, a.selectHeadline(h)
		}
		return a, nil
	case "o":
		if h, ok := a.selectedHeadline(); ok && h.URL != "" {
			return a, a.openBrowserCmd(h.URL)
		}
		return a, nil
	case "r":
		if !a.sess.AIEnabled() {
			return a, a.showToast(session.ErrNoGenerator.Error())
		}
		if !a.loadingHeadlines {
			return a, a.fetchHeadlines()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) handleReaderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "esc", "b":
		a.stopPlayback()
		a.sess.Back()
		a.scroll = 0
		a.clampPicker()
		return a, nil
	case "j", "down":
		a.scroll++
		return a, nil
	case "k", "up":
		if a.scroll > 0 {
			a.scroll--
		}
		return a, nil
	case "g":
		a.scroll = 0
		return a, nil
	case "t":
		a.showTranslation = !a.showTranslation
		return a, nil
	case " ":
		return a, a.playOrNarrate()
	case "[":
		return a, a.transport(func(c *audio.Controller) error { return c.Skip(-audio.SkipStep) })
	case "]":
		return a, a.transport(func(c *audio.Controller) error { return c.Skip(audio.SkipStep) })
	case "1", "2", "3":
		return a, a.setSpeed(audio.Speeds[int(msg.String()[0]-'1')])
	case "s":
		return a, a.transport((*audio.Controller).CycleSpeed)
	case "0":
		return a, a.transport((*audio.Controller).Restart)
	}
	return a, nil
}

func (a *App) playOrNarrate() tea.Cmd {
	switch {
	case a.player == nil:
		return a.showToast("Audio output is unavailable.")
	case a.player.Loaded():
		return a.transport((*audio.Controller).Toggle)
	case a.narrating:
		return nil
	case !a.sess.NarrationEnabled():
		return a.showToast(session.ErrNarrationDisabled.Error())
	}
	art, ok := a.sess.Article()
	if !ok {
		return nil
	}
	return a.narrateCmd(art)
}

// transport applies a playback control. Failures are logged; the controls
// simply stay where they are.
func (a *App) transport(fn func(*audio.Controller) error) tea.Cmd {
	if a.player == nil || !a.player.Loaded() {
		return nil
	}
	if err := fn(a.player); err != nil {
		a.log.Warn("playback control failed", "err", err)
	}
	return a.playbackTick()
}

// setSpeed applies a speed even before narration is loaded; the controller
// keeps it for the next buffer.
func (a *App) setSpeed(speed float64) tea.Cmd {
	if a.player == nil {
		return nil
	}
	if err := a.player.SetSpeed(speed); err != nil {
		a.log.Warn("setting playback speed", "err", err)
	}
	return a.playbackTick()
}

func (a *App) stopPlayback() {
	a.narrating = false
	if a.player == nil {
		return
	}
	if err := a.player.Close(); err != nil {
		a.log.Warn("closing audio output", "err", err)
	}
}

func (a *App) quit() tea.Cmd {
	a.stopPlayback()
	return tea.Quit
}

func (a *App) handleCaptureKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.endCapture()
		return a, nil
	case "enter":
		raw := a.captureInput.Value()
		a.endCapture()
		return a, a.addWord(raw)
	}

	var cmd tea.Cmd
	a.captureInput, cmd = a.captureInput.Update(msg)
	return a, cmd
}

func (a *App) endCapture() {
	a.mode = modeNormal
	a.captureInput.SetValue("")
	a.captureInput.Blur()
}

func (a *App) addWord(raw string) tea.Cmd {
	w, notice, err := a.sess.AddWord(context.Background(), raw)
	toast := a.showToast(notice)
	if err != nil {
		return toast
	}
	a.vocabCursor = 0
	if !a.sess.AIEnabled() {
		a.sess.FailLookup(context.Background(), w.ID, session.ErrNoGenerator)
		return toast
	}
	return tea.Batch(toast, a.lookupCmd(w))
}

// vocabView lists the bank newest first.
func (a *App) vocabView() []store.VocabularyWord {
	words := a.sess.Vocabulary()
	out := make([]store.VocabularyWord, len(words))
	for i, w := range words {
		out[len(words)-1-i] = w
	}
	return out
}

func (a *App) clampVocab() {
	if n := len(a.sess.Vocabulary()); a.vocabCursor >= n {
		a.vocabCursor = max(0, n-1)
	}
}

func (a *App) handleVocabKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	words := a.vocabView()
	switch msg.String() {
	case "q":
		return a, a.quit()
	case "esc":
		a.focus = focusMain
		return a, nil
	case "j", "down":
		if a.vocabCursor < len(words)-1 {
			a.vocabCursor++
		}
		return a, nil
	case "k", "up":
		if a.vocabCursor > 0 {
			a.vocabCursor--
		}
		return a, nil
	case "d", "x":
		if a.vocabCursor < len(words) {
			a.sess.RemoveWord(context.Background(), words[a.vocabCursor].ID)
			a.clampVocab()
		}
		return a, nil
	}
	return a, nil
}

func (a *App) withBottomBar(content string, bar string) string {
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  lexis")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), a.renderBottomBar("? close  q quit"))
	}

	headerLeft := headerStyle.Render("lexis")
	headerRight := headerDateStyle.Render(a.currentDate + " ")
	headerGap := max(0, a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight))
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	// header + bottom bar + panel borders
	innerHeight := max(3, a.height-4)

	leftW, rightW := 28, 34
	if a.width < 110 {
		leftW = 0
	}
	if a.width < 72 {
		rightW = 0
	}
	centerW := a.width - leftW - rightW

	var panes []string
	if leftW > 0 {
		left := renderHistoryPanel(a.sess.Calendar(calendarDays), a.sess.Streak(), a.sess.RecentArticles(recentCount), leftW-4, innerHeight)
		panes = append(panes, panelStyle.Padding(0, 1).Width(leftW-2).Height(innerHeight).Render(left))
	}

	centerStyle := panelActiveStyle
	if a.focus != focusMain {
		centerStyle = panelStyle
	}
	center := a.renderMain(centerW-4, innerHeight)
	panes = append(panes, centerStyle.Padding(0, 1).Width(centerW-2).Height(innerHeight).Render(center))

	if rightW > 0 {
		rightStyle := panelStyle
		if a.focus == focusVocab {
			rightStyle = panelActiveStyle
		}
		right := renderVocabPanel(a.vocabView(), a.vocabCursor, a.focus == focusVocab, rightW-4, innerHeight)
		panes = append(panes, rightStyle.Padding(0, 1).Width(rightW-2).Height(innerHeight).Render(right))
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, panes...)
	return lipgloss.JoinVertical(lipgloss.Left, header, content, a.statusLine())
}

func (a *App) renderMain(width, height int) string {
	switch a.sess.Phase() {
	case session.LoadingArticle:
		return renderLoading(a.spinner.View(), width, height)
	case session.Reading:
		art, _ := a.sess.Article()
		view := renderReader(art, a.sess.KnownTerms(), a.showTranslation, width)
		var clamped string
		clamped, a.scroll = scrollLines(view, a.scroll, height)
		return clamped
	default:
		return renderPicker(pickerState{
			topics:    a.sess.Topics(),
			headlines: a.sess.Headlines(),
			cursor:    a.pickerCursor,
			loading:   a.loadingHeadlines,
			aiEnabled: a.sess.AIEnabled(),
			spinner:   a.spinner.View(),
		}, width, height)
	}
}

func (a *App) statusLine() string {
	switch {
	case a.mode == modeCapture:
		return statusBarStyle.Width(a.width).Render(a.captureInput.View())
	case a.toast != "":
		return statusBarStyle.Width(a.width).Render(toastStyle.Render(a.toast))
	}

	var hints string
	switch {
	case a.focus == focusVocab:
		hints = "j/k move  d remove  a add  esc back  ? help"
	case a.sess.Phase() == session.Reading:
		hints = "space play  [/] seek  1-3 speed  t translate  a add  esc back  ? help"
	case a.sess.Phase() == session.LoadingArticle:
		hints = "ctrl+c quit"
	default:
		hints = "enter read  o open  r refresh  a add  v vocab  ? help  q quit"
	}
	return a.renderBottomBar(hints)
}

func (a *App) renderBottomBar(hints string) string {
	var transport string
	if a.sess.Phase() == session.Reading {
		transport = renderTransport(a.player, a.narrating, a.spinner.View())
	}
	return renderStatusBar(a.sess.Streak(), transport, hints, a.width)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("lexis")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Picker") + "\n" +
		"  j/k, ↑/↓     Move between topics and headlines\n" +
		"  enter         Generate an article\n" +
		"  o             Open headline in browser\n" +
		"  r             Refresh headlines\n\n" +
		dim.Render("Reader") + "\n" +
		"  j/k, ↑/↓     Scroll\n" +
		"  t             Toggle translation\n" +
		"  space         Narrate, play or pause\n" +
		"  [ / ]         Seek 10 seconds\n" +
		"  1 2 3         Speed 0.8x 1.0x 1.2x\n" +
		"  s             Cycle speed\n" +
		"  0             Restart narration\n" +
		"  esc           Back to topics\n\n" +
		dim.Render("Vocabulary") + "\n" +
		"  a             Add a word\n" +
		"  v, tab        Focus the word bank\n" +
		"  d             Remove the selected word\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height-1, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
