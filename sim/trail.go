package sim

import (
	"fmt"
	"math"

	filter "github.com/tracksim/go-kalman"
)

const (
	// MinLifetime is the shortest accepted mark fade-out time in seconds
	MinLifetime = 0.1
	// MaxLifetime is the longest accepted mark fade-out time in seconds
	MaxLifetime = 8.0
)

// Lifetime is the fade-out time of trail marks.
type Lifetime struct {
	secs float64
}

// NewLifetime returns Lifetime of secs seconds.
// It returns *filter.ConfigError if secs is outside [MinLifetime, MaxLifetime].
func NewLifetime(secs float64) (Lifetime, error) {
	l := Lifetime{secs: DefaultLifetime}
	if err := l.Set(secs); err != nil {
		return Lifetime{}, err
	}

	return l, nil
}

// Set sets the lifetime to secs seconds.
// It returns *filter.ConfigError and keeps the previous value if secs is outside [MinLifetime, MaxLifetime].
func (l *Lifetime) Set(secs float64) error {
	if math.IsNaN(secs) || secs < MinLifetime || secs > MaxLifetime {
		return filter.NewConfigError("set lifetime", "lifetime %v outside [%v, %v]", secs, MinLifetime, MaxLifetime)
	}
	l.secs = secs

	return nil
}

// Seconds returns the lifetime in seconds.
func (l Lifetime) Seconds() float64 {
	return l.secs
}

// Frames returns the number of frames a mark stays alive at frameRate.
func (l Lifetime) Frames(frameRate float64) int {
	return int(l.secs * frameRate)
}

// MarkKind is the kind of trail mark.
type MarkKind int

const (
	// Point is a single point
	Point MarkKind = iota
	// Segment is a line between the previous and the current point
	Segment
)

// String implements the Stringer interface.
func (k MarkKind) String() string {
	switch k {
	case Point:
		return "point"
	case Segment:
		return "segment"
	}

	return fmt.Sprintf("MarkKind(%d)", int(k))
}

// Mark is a trail mark which fades out over its lifetime.
type Mark struct {
	// Kind is the mark kind
	Kind MarkKind
	// X and Y are mark coordinates
	X, Y float64
	// FromX and FromY are the segment start coordinates
	FromX, FromY float64
	// frames is the number of frames left
	frames int
	// total is the number of frames the mark was created with
	total int
}

// NewPoint returns Point mark at x, y alive for frames frames.
func NewPoint(x, y float64, frames int) *Mark {
	return &Mark{
		Kind:   Point,
		X:      x,
		Y:      y,
		FromX:  x,
		FromY:  y,
		frames: frames,
		total:  frames,
	}
}

// NewSegment returns Segment mark from fromX, fromY to x, y alive for frames frames.
func NewSegment(fromX, fromY, x, y float64, frames int) *Mark {
	return &Mark{
		Kind:   Segment,
		X:      x,
		Y:      y,
		FromX:  fromX,
		FromY:  fromY,
		frames: frames,
		total:  frames,
	}
}

// Tick ages the mark by one frame.
func (m *Mark) Tick() {
	if m.frames > 0 {
		m.frames--
	}
}

// Alive returns true if the mark has frames left.
func (m *Mark) Alive() bool {
	return m.frames > 0
}

// Fade returns the fraction of the mark lifetime left.
// It is 1 for a fresh mark and 0 for a dead one.
func (m *Mark) Fade() float64 {
	if m.total <= 0 {
		return 0
	}

	return float64(m.frames) / float64(m.total)
}

// Trail is an ordered sequence of fading marks, oldest first.
type Trail struct {
	marks []*Mark
}

// Add appends mark m to the trail.
func (t *Trail) Add(m *Mark) {
	t.marks = append(t.marks, m)
}

// Age ages every mark in the trail by one frame and drops the marks which died.
// It returns the number of dropped marks.
func (t *Trail) Age() int {
	alive := t.marks[:0]
	for _, m := range t.marks {
		m.Tick()
		if m.Alive() {
			alive = append(alive, m)
		}
	}

	dropped := len(t.marks) - len(alive)
	for i := len(alive); i < len(t.marks); i++ {
		t.marks[i] = nil
	}
	t.marks = alive

	return dropped
}

// Marks returns a copy of the marks in the trail.
func (t *Trail) Marks() []Mark {
	marks := make([]Mark, len(t.marks))
	for i, m := range t.marks {
		marks[i] = *m
	}

	return marks
}

// Len returns the number of marks in the trail.
func (t *Trail) Len() int {
	return len(t.marks)
}

// Clear drops all marks.
func (t *Trail) Clear() {
	t.marks = nil
}
