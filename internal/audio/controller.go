package audio

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// State is the playback state of a Controller.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	case Finished:
		return "Finished"
	default:
		return "Ready"
	}
}

// Speeds are the supported playback multipliers.
var Speeds = []float64{0.8, 1.0, 1.2}

// SkipStep is the seek distance for the transport controls.
const SkipStep = 10.0

// endTolerance bounds the difference between the observed and the expected
// segment runtime for an end signal to count as natural completion.
const endTolerance = 0.5

var ErrUnsupportedSpeed = errors.New("unsupported playback speed")

// Clock reports monotonic time in seconds.
type Clock interface {
	Now() float64
}

// SystemClock is a Clock backed by the process monotonic clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() float64 {
	return time.Since(c.start).Seconds()
}

// Segment is one continuous run of playback.
type Segment interface {
	Stop()
}

// Output plays segments. id tags the Ended signal the output reports when
// the segment stops, whether it ran out or was stopped.
type Output interface {
	Play(buf *Buffer, offset, speed float64, id uint64) (Segment, error)
	Close() error
}

// Ended is reported by an Output when a segment stops.
type Ended struct {
	Segment uint64
	At      float64
}

// Controller tracks the playback offset of a single buffer across pauses,
// seeks and speed changes. It is not safe for concurrent use; drive it from
// one event loop.
type Controller struct {
	out   Output
	clock Clock

	buf       *Buffer
	seg       Segment
	segID     uint64
	startedAt float64
	offset    float64
	speed     float64
	state     State
}

func NewController(out Output, clock Clock) *Controller {
	return &Controller{out: out, clock: clock, speed: 1.0}
}

// Load installs buf and starts playing it from the beginning.
func (c *Controller) Load(buf *Buffer) error {
	c.stopSegment()
	c.buf = buf
	c.offset = 0
	c.state = Paused
	return c.Start(0, c.speed)
}

// Loaded reports whether a buffer is installed.
func (c *Controller) Loaded() bool { return c.buf != nil }

// Start begins a new segment at offset (clamped to the buffer) and speed,
// stopping any active segment first.
func (c *Controller) Start(offset, speed float64) error {
	if c.buf == nil {
		return nil
	}
	offset = c.clamp(offset)
	c.stopSegment()

	c.segID++
	seg, err := c.out.Play(c.buf, offset, speed, c.segID)
	if err != nil {
		c.offset = offset
		c.state = Paused
		return fmt.Errorf("starting playback: %w", err)
	}
	c.seg = seg
	c.startedAt = c.clock.Now()
	c.offset = offset
	c.speed = speed
	c.state = Playing
	return nil
}

// Toggle pauses a playing buffer or resumes a paused one.
func (c *Controller) Toggle() error {
	if c.buf == nil {
		return nil
	}
	if c.state == Playing {
		c.offset = c.Position()
		c.stopSegment()
		c.state = Paused
		return nil
	}
	return c.Start(c.offset, c.speed)
}

// Skip moves the effective position by delta seconds. Playback resumes from
// the new position whether or not it was playing.
func (c *Controller) Skip(delta float64) error {
	if c.buf == nil {
		return nil
	}
	return c.Start(c.Position()+delta, c.speed)
}

// SetSpeed switches the multiplier while keeping the current position.
func (c *Controller) SetSpeed(speed float64) error {
	if !supportedSpeed(speed) {
		return fmt.Errorf("%w: %.1fx", ErrUnsupportedSpeed, speed)
	}
	if c.buf == nil {
		c.speed = speed
		return nil
	}
	wasPlaying := c.state == Playing
	pos := c.Position()
	c.stopSegment()
	c.speed = speed
	if wasPlaying {
		return c.Start(pos, speed)
	}
	c.offset = pos
	return nil
}

// CycleSpeed advances to the next supported speed.
func (c *Controller) CycleSpeed() error {
	for i, s := range Speeds {
		if s == c.speed {
			return c.SetSpeed(Speeds[(i+1)%len(Speeds)])
		}
	}
	return c.SetSpeed(1.0)
}

// Restart plays from the beginning.
func (c *Controller) Restart() error {
	return c.Start(0, c.speed)
}

// HandleEnded processes an end signal from the output. Only the active
// segment ending on schedule finishes playback; signals from stopped or
// superseded segments are ignored. It reports whether playback finished.
func (c *Controller) HandleEnded(e Ended) bool {
	if c.buf == nil || c.state != Playing || e.Segment != c.segID {
		return false
	}
	expected := (c.buf.Duration() - c.offset) / c.speed
	elapsed := e.At - c.startedAt
	if math.Abs(elapsed-expected) >= endTolerance {
		return false
	}
	c.seg = nil
	c.offset = 0
	c.state = Finished
	return true
}

// Position is the effective offset in seconds, including time elapsed in
// the active segment.
func (c *Controller) Position() float64 {
	if c.state != Playing {
		return c.offset
	}
	elapsed := (c.clock.Now() - c.startedAt) * c.speed
	return c.clamp(c.offset + elapsed)
}

// Progress is Position as a fraction of the buffer duration.
func (c *Controller) Progress() float64 {
	d := c.Duration()
	if d == 0 {
		return 0
	}
	return c.Position() / d
}

func (c *Controller) Duration() float64 { return c.buf.Duration() }
func (c *Controller) Speed() float64    { return c.speed }
func (c *Controller) State() State      { return c.state }

// Close stops playback, drops the buffer and releases the output.
func (c *Controller) Close() error {
	c.stopSegment()
	c.buf = nil
	c.offset = 0
	c.state = Idle
	return c.out.Close()
}

func (c *Controller) stopSegment() {
	if c.seg != nil {
		c.seg.Stop()
		c.seg = nil
	}
}

func (c *Controller) clamp(offset float64) float64 {
	return math.Max(0, math.Min(offset, c.buf.Duration()))
}

func supportedSpeed(s float64) bool {
	for _, v := range Speeds {
		if v == s {
			return true
		}
	}
	return false
}
