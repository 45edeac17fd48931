package audio

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const pollInterval = 20 * time.Millisecond

// OtoOutput plays buffers on the system audio device. The device context is
// created on first playback and suspended on Close; oto allows only one
// context per process, so it is resumed rather than recreated.
type OtoOutput struct {
	clock Clock
	log   *slog.Logger
	ended chan Ended

	mu         sync.Mutex
	ctx        *oto.Context
	sampleRate int
	suspended  bool
}

func NewOtoOutput(clock Clock, log *slog.Logger) *OtoOutput {
	if log == nil {
		log = slog.Default()
	}
	return &OtoOutput{clock: clock, log: log, ended: make(chan Ended, 16)}
}

// Ended delivers a signal for every segment that stops.
func (o *OtoOutput) Ended() <-chan Ended { return o.ended }

func (o *OtoOutput) Play(buf *Buffer, offset, speed float64, id uint64) (Segment, error) {
	ctx, err := o.context(buf.SampleRate)
	if err != nil {
		return nil, err
	}
	p := ctx.NewPlayer(bytes.NewReader(buf.Render(offset, speed)))
	p.Play()

	seg := &otoSegment{player: p, stop: make(chan struct{})}
	go o.watch(seg, id)
	return seg, nil
}

func (o *OtoOutput) context(sampleRate int) (*oto.Context, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.ctx != nil {
		if sampleRate != o.sampleRate {
			return nil, fmt.Errorf("audio device opened at %d Hz, buffer is %d Hz", o.sampleRate, sampleRate)
		}
		if o.suspended {
			if err := o.ctx.Resume(); err != nil {
				return nil, fmt.Errorf("resuming audio device: %w", err)
			}
			o.suspended = false
		}
		return o.ctx, nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready
	o.ctx = ctx
	o.sampleRate = sampleRate
	return ctx, nil
}

func (o *OtoOutput) watch(seg *otoSegment, id uint64) {
	t := time.NewTicker(pollInterval)
	defer t.Stop()

loop:
	for {
		select {
		case <-seg.stop:
			break loop
		case <-t.C:
			if !seg.player.IsPlaying() {
				break loop
			}
		}
	}
	if err := seg.player.Err(); err != nil {
		o.log.Warn("playback error", "segment", id, "err", err)
	}
	if err := seg.player.Close(); err != nil {
		o.log.Debug("closing player", "segment", id, "err", err)
	}

	select {
	case o.ended <- Ended{Segment: id, At: o.clock.Now()}:
	default:
		o.log.Debug("dropping end signal", "segment", id)
	}
}

// Close suspends the device. Active segments must be stopped first.
func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ctx == nil || o.suspended {
		return nil
	}
	o.suspended = true
	return o.ctx.Suspend()
}

type otoSegment struct {
	player *oto.Player
	stop   chan struct{}
	once   sync.Once
}

func (s *otoSegment) Stop() {
	s.once.Do(func() {
		s.player.Pause()
		close(s.stop)
	})
}
