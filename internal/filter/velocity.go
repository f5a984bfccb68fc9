package filter

import (
	"fmt"
	"math"
)

// Velocity is a stateless speed-range predicate. A BSM with speed outside
// [MinMPS, MaxMPS] fails Accept and yields a SPEED verdict upstream.
type Velocity struct {
	MinMPS float64
	MaxMPS float64
}

// NewVelocity validates and returns a Velocity filter. min must be <= max,
// and both must be finite.
func NewVelocity(min, max float64) (Velocity, error) {
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return Velocity{}, fmt.Errorf("filter: velocity bounds must be finite, got [%f, %f]", min, max)
	}
	if min > max {
		return Velocity{}, fmt.Errorf("filter: velocity min %f exceeds max %f", min, max)
	}
	return Velocity{MinMPS: min, MaxMPS: max}, nil
}

// Accept reports whether v is within [MinMPS, MaxMPS], inclusive.
func (f Velocity) Accept(v float64) bool {
	return v >= f.MinMPS && v <= f.MaxMPS
}
