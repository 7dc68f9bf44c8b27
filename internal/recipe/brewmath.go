package recipe

import (
	"fmt"
	"math"
)

// BrewMath links coffee dose, brew ratio and total water.
//
// Editing grams or ratio recomputes water = round(grams * ratio). Editing
// water is an override and leaves grams and ratio alone: when stages are
// composed bottom-up, water is the source of truth.
type BrewMath struct {
	grams int
	ratio float64
	water int
}

// NewBrewMath returns math for grams at ratio, with water derived.
func NewBrewMath(grams int, ratio float64) BrewMath {
	m := BrewMath{grams: grams, ratio: ratio}
	m.recompute()
	return m
}

// BrewMathOf restores stored values without recomputing anything.
func BrewMathOf(grams int, ratio float64, water int) BrewMath {
	return BrewMath{grams: grams, ratio: ratio, water: water}
}

// Grams returns the coffee dose in grams.
func (m BrewMath) Grams() int { return m.grams }

// Ratio returns the water-to-coffee ratio (1:N).
func (m BrewMath) Ratio() float64 { return m.ratio }

// Water returns the total water in ml.
func (m BrewMath) Water() int { return m.water }

// SetGrams changes the dose and recomputes water.
func (m *BrewMath) SetGrams(grams int) {
	m.grams = grams
	m.recompute()
}

// SetRatio changes the ratio and recomputes water.
func (m *BrewMath) SetRatio(ratio float64) {
	m.ratio = ratio
	m.recompute()
}

// SetWater overrides the water total. Grams and ratio are unchanged.
func (m *BrewMath) SetWater(water int) {
	m.water = water
}

// DerivedWater is what water would be if recomputed from grams and ratio.
func (m BrewMath) DerivedWater() int {
	return WaterFor(m.grams, m.ratio)
}

// Overridden reports whether water differs from the derived value.
func (m BrewMath) Overridden() bool {
	return m.water != m.DerivedWater()
}

// RatioLabel formats the ratio with one decimal, e.g. "1:15.0".
func (m BrewMath) RatioLabel() string {
	return FormatRatio(m.ratio)
}

func (m *BrewMath) recompute() {
	m.water = WaterFor(m.grams, m.ratio)
}

// WaterFor returns round(grams * ratio), rounding half away from zero.
func WaterFor(grams int, ratio float64) int {
	return int(math.Round(float64(grams) * ratio))
}

// FormatRatio renders a ratio as 1:N with one decimal.
func FormatRatio(ratio float64) string {
	return fmt.Sprintf("1:%.1f", ratio)
}
