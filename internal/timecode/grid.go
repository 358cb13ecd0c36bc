package timecode

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// FrameRate is a rational number of frames per second.
type FrameRate struct {
	Num int64
	Den int64
}

var (
	// PAL is 25 frames per second.
	PAL = FrameRate{Num: 25, Den: 1}

	// NTSC is 30000/1001 frames per second.
	NTSC = FrameRate{Num: 30000, Den: 1001}
)

// Valid reports whether both terms are positive.
func (r FrameRate) Valid() bool {
	return r.Num > 0 && r.Den > 0
}

// FrameDuration returns the nominal duration of one frame, truncated to
// whole nanoseconds.
func (r FrameRate) FrameDuration() time.Duration {
	if !r.Valid() {
		return 0
	}
	return time.Duration(int64(time.Second) * r.Den / r.Num)
}

func (r FrameRate) String() string {
	if r.Den == 1 {
		return fmt.Sprintf("%dfps", r.Num)
	}
	return fmt.Sprintf("%d/%dfps", r.Num, r.Den)
}

// ParseFrameRate reads "25", "25fps" or "30000/1001".
func ParseFrameRate(s string) (FrameRate, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "fps")
	num, den, hasDen := strings.Cut(s, "/")
	r := FrameRate{Den: 1}
	var err error
	if r.Num, err = strconv.ParseInt(num, 10, 64); err != nil {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
	}
	if hasDen {
		if r.Den, err = strconv.ParseInt(den, 10, 64); err != nil {
			return FrameRate{}, fmt.Errorf("invalid frame rate %q: %w", s, err)
		}
	}
	if !r.Valid() {
		return FrameRate{}, fmt.Errorf("invalid frame rate %q: terms must be positive", s)
	}
	return r, nil
}

// ErrInvalidFrameRate is returned by NewGrid for a non-positive rate.
var ErrInvalidFrameRate = errors.New("frame rate must be positive")

// Grid maps frame numbers to timeline positions and back. Frame n starts at
// the first nanosecond at or after origin + n/rate seconds and extends up to
// the start of frame n+1.
//
// All conversions use exact rational arithmetic, so the mapping is pure and
// deterministic for any rate.
type Grid struct {
	origin Time
	rate   FrameRate
}

// NewGrid creates a frame grid anchored at origin.
func NewGrid(rate FrameRate, origin Time) (*Grid, error) {
	if !rate.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrameRate, rate)
	}
	if origin.IsInfinite() {
		return nil, fmt.Errorf("grid origin must be finite, got %s", origin)
	}
	return &Grid{origin: origin, rate: rate}, nil
}

// Rate returns the frame rate of the grid.
func (g *Grid) Rate() FrameRate { return g.rate }

// Origin returns the start time of frame 0.
func (g *Grid) Origin() Time { return g.origin }

// TimeOf returns the nominal start time of frame n.
func (g *Grid) TimeOf(n int64) Time {
	// ceil(n·den·1e9 / num) = −floor(−n·den·1e9 / num)
	x := new(big.Int).Mul(big.NewInt(n), big.NewInt(g.rate.Den))
	x.Mul(x, big.NewInt(int64(time.Second)))
	x.Neg(x)
	x.Div(x, big.NewInt(g.rate.Num))
	x.Neg(x)
	x.Add(x, big.NewInt(int64(g.origin)))
	return saturate(x)
}

// FrameAt returns the number of the frame containing t.
func (g *Grid) FrameAt(t Time) int64 {
	switch t {
	case Min:
		return math.MinInt64
	case Max:
		return math.MaxInt64
	}
	num, den := g.offsetRatio(t)
	return clampInt64(num.Div(num, den))
}

// BreakPointAfter returns the first frame starting at or after t.
func (g *Grid) BreakPointAfter(t Time) int64 {
	switch t {
	case Min:
		return math.MinInt64
	case Max:
		return math.MaxInt64
	}
	// smallest n with TimeOf(n) >= t, i.e. floor((t−1)/X) + 1
	num, den := g.offsetRatio(t - 1)
	num.Div(num, den)
	return clampInt64(num.Add(num, big.NewInt(1)))
}

// offsetRatio expresses (t − origin) in frames as the fraction num/den.
// big.Int.Div rounds towards −∞ for a positive divisor.
func (g *Grid) offsetRatio(t Time) (*big.Int, *big.Int) {
	num := new(big.Int).Sub(big.NewInt(int64(t)), big.NewInt(int64(g.origin)))
	num.Mul(num, big.NewInt(g.rate.Num))
	den := new(big.Int).Mul(big.NewInt(g.rate.Den), big.NewInt(int64(time.Second)))
	return num, den
}

func saturate(x *big.Int) Time {
	if !x.IsInt64() {
		if x.Sign() < 0 {
			return Min
		}
		return Max
	}
	return Time(x.Int64())
}

func clampInt64(x *big.Int) int64 {
	if !x.IsInt64() {
		if x.Sign() < 0 {
			return math.MinInt64
		}
		return math.MaxInt64
	}
	return x.Int64()
}
