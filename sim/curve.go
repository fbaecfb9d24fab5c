package sim

import (
	"fmt"
	"sort"
)

// MaxCurveKeys is the key capacity of a Curve.
const MaxCurveKeys = 8

// CurveKey is one control point of a Curve.
type CurveKey struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
}

// Curve is a fixed-capacity piecewise-linear curve. The zero Curve evaluates to 1
// everywhere. It holds no slices so it can live inside arena records.
type Curve struct {
	Keys  [MaxCurveKeys]CurveKey
	Count int
}

// NewCurve builds a curve from keys in any order.
func NewCurve(keys ...CurveKey) (Curve, error) {
	var c Curve
	if len(keys) > MaxCurveKeys {
		return c, fmt.Errorf("curve has %d keys, maximum is %d", len(keys), MaxCurveKeys)
	}
	for _, k := range keys {
		if !isFinite(k.Time) || !isFinite(k.Value) {
			return c, fmt.Errorf("curve key (%v, %v) is not finite", k.Time, k.Value)
		}
	}
	c.Count = copy(c.Keys[:], keys)
	sort.SliceStable(c.Keys[:c.Count], func(i, j int) bool {
		return c.Keys[i].Time < c.Keys[j].Time
	})
	return c, nil
}

// Evaluate returns the curve value at t, clamping outside the key range.
func (c Curve) Evaluate(t float64) float64 {
	if c.Count == 0 {
		return 1
	}
	keys := c.Keys[:c.Count]
	if t <= keys[0].Time {
		return keys[0].Value
	}
	last := keys[len(keys)-1]
	if t >= last.Time {
		return last.Value
	}
	for i := 1; i < len(keys); i++ {
		a, b := keys[i-1], keys[i]
		if t > b.Time {
			continue
		}
		span := b.Time - a.Time
		if span <= 0 {
			return b.Value
		}
		return a.Value + (b.Value-a.Value)*(t-a.Time)/span
	}
	return last.Value
}
