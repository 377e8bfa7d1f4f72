package strategy

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingInput     = errors.New("missing input")
	ErrDegenerateGrid   = errors.New("degenerate grid")
)

// GridShape selects how grid lines are spaced.
type GridShape int

const (
	Arithmetic GridShape = iota // constant price delta
	Geometric                   // constant multiplicative ratio
)

func (s GridShape) String() string {
	switch s {
	case Geometric:
		return "geometric"
	default:
		return "arithmetic"
	}
}

// ParseGridShape maps a config string onto a GridShape.
func ParseGridShape(v string) (GridShape, error) {
	switch v {
	case "", "arithmetic":
		return Arithmetic, nil
	case "geometric":
		return Geometric, nil
	}
	return Arithmetic, fmt.Errorf("%w: unknown grid shape %q", ErrInvalidParameter, v)
}

// PositionDirection selects which side the grid trades.
type PositionDirection int

const (
	Long PositionDirection = iota
	Short
	Neutral
)

func (d PositionDirection) String() string {
	switch d {
	case Short:
		return "short"
	case Neutral:
		return "neutral"
	default:
		return "long"
	}
}

// ParsePositionDirection maps a config string onto a PositionDirection.
func ParsePositionDirection(v string) (PositionDirection, error) {
	switch v {
	case "", "long":
		return Long, nil
	case "short":
		return Short, nil
	case "neutral":
		return Neutral, nil
	}
	return Long, fmt.Errorf("%w: unknown position direction %q", ErrInvalidParameter, v)
}

// Parameters describes one grid strategy to project. Optional fields are
// pointers; nil means "not supplied".
type Parameters struct {
	Symbol              string
	Principal           float64
	LowerBound          float64
	UpperBound          float64
	GridCount           int
	Leverage            float64
	FeeRatePercent      float64
	DurationDays        int
	VolatilityPerMinute *float64
	Shape               GridShape
	Direction           PositionDirection
	EntryPrice          *float64
	ExitPrice           *float64
}

// geometric ratios this close to 1 cannot produce a usable grid
const ratioEpsilon = 1e-9

// validate checks every constraint before any computation happens.
func (p Parameters) validate() error {
	if p.Principal <= 0 {
		return fmt.Errorf("%w: principal must be > 0, got %v", ErrInvalidParameter, p.Principal)
	}
	if p.GridCount < 1 {
		return fmt.Errorf("%w: gridCount must be >= 1, got %d", ErrInvalidParameter, p.GridCount)
	}
	if p.Leverage < 1 {
		return fmt.Errorf("%w: leverage must be greater than or equal to 1, got %v", ErrInvalidParameter, p.Leverage)
	}
	if p.FeeRatePercent < 0 {
		return fmt.Errorf("%w: feeRatePercent must be >= 0, got %v", ErrInvalidParameter, p.FeeRatePercent)
	}
	if p.DurationDays <= 0 {
		return fmt.Errorf("%w: durationDays must be > 0, got %d", ErrInvalidParameter, p.DurationDays)
	}
	if p.UpperBound <= p.LowerBound {
		return fmt.Errorf("%w: Upper bound must be greater than lower bound (%v <= %v)",
			ErrInvalidParameter, p.UpperBound, p.LowerBound)
	}
	if p.VolatilityPerMinute != nil && *p.VolatilityPerMinute < 0 {
		return fmt.Errorf("%w: volatilityPerMinute must be >= 0, got %v", ErrInvalidParameter, *p.VolatilityPerMinute)
	}
	if p.EntryPrice != nil && *p.EntryPrice <= 0 {
		return fmt.Errorf("%w: entryPrice must be > 0, got %v", ErrInvalidParameter, *p.EntryPrice)
	}
	if p.ExitPrice != nil && *p.ExitPrice <= 0 {
		return fmt.Errorf("%w: exitPrice must be > 0, got %v", ErrInvalidParameter, *p.ExitPrice)
	}
	if p.Shape == Geometric {
		if p.LowerBound <= 0 {
			return fmt.Errorf("%w: geometric grid requires lowerBound > 0, got %v", ErrInvalidParameter, p.LowerBound)
		}
		ratio := p.gridRatio()
		if ratio-1 <= ratioEpsilon && 1-ratio <= ratioEpsilon {
			return fmt.Errorf("%w: ratio too close to 1 (%v)", ErrDegenerateGrid, ratio)
		}
	}
	return nil
}

// gridRatio is the per-grid multiplicative ratio for the geometric shape.
// Only meaningful when LowerBound > 0.
func (p Parameters) gridRatio() float64 {
	return math.Pow(p.UpperBound/p.LowerBound, 1/float64(p.GridCount))
}
