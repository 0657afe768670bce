package sim

import "math"

// Path is a scripted pointer trajectory.
type Path interface {
	// Position returns pointer position at time t given in seconds
	Position(t float64) (x, y float64)
}

// PathFunc is an adapter which allows the use of ordinary functions as Path.
type PathFunc func(t float64) (x, y float64)

// Position calls f(t).
func (f PathFunc) Position(t float64) (x, y float64) {
	return f(t)
}

// Lissajous is a Lissajous curve:
//
//	x(t) = CenterX + AmpX*sin(2*pi*FreqX*t + Phase)
//	y(t) = CenterY + AmpY*sin(2*pi*FreqY*t)
type Lissajous struct {
	CenterX float64
	CenterY float64
	AmpX    float64
	AmpY    float64
	// FreqX and FreqY are given in Hz
	FreqX float64
	FreqY float64
	Phase float64
}

// DefaultLissajous returns a 3:2 Lissajous curve sweeping a 640x480 canvas
// roughly once every ten seconds.
func DefaultLissajous() Lissajous {
	return Lissajous{
		CenterX: 320,
		CenterY: 240,
		AmpX:    250,
		AmpY:    180,
		FreqX:   0.3,
		FreqY:   0.2,
		Phase:   math.Pi / 2,
	}
}

// Position returns Lissajous curve point at time t.
func (l Lissajous) Position(t float64) (x, y float64) {
	x = l.CenterX + l.AmpX*math.Sin(2*math.Pi*l.FreqX*t+l.Phase)
	y = l.CenterY + l.AmpY*math.Sin(2*math.Pi*l.FreqY*t)

	return x, y
}
