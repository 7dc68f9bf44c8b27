package recipe

import "testing"

func TestBrewMathEditPolicy(t *testing.T) {
	m := NewBrewMath(18, 16)
	if m.Water() != 288 {
		t.Fatalf("expected 288, got %d", m.Water())
	}

	m.SetGrams(20)
	m.SetRatio(15.0)
	if m.Water() != 300 {
		t.Fatalf("expected water 300 after grams=20 ratio=15, got %d", m.Water())
	}

	m.SetWater(310)
	if m.Grams() != 20 || m.Ratio() != 15.0 {
		t.Fatalf("water override changed grams/ratio: %d, %.1f", m.Grams(), m.Ratio())
	}
	if m.Water() != 310 {
		t.Fatalf("expected 310, got %d", m.Water())
	}
	if !m.Overridden() {
		t.Fatal("expected overridden water")
	}

	// A later grams edit takes water back to the derived value.
	m.SetGrams(21)
	if m.Water() != 315 {
		t.Fatalf("expected 315, got %d", m.Water())
	}
}

func TestWaterForRounding(t *testing.T) {
	tests := []struct {
		grams int
		ratio float64
		want  int
	}{
		{20, 15.0, 300},
		{15, 16.5, 248}, // 247.5 rounds away from zero
		{17, 15.5, 264}, // 263.5
		{18, 16.7, 301}, // 300.6
		{22, 15.2, 334}, // 334.4
		{0, 16, 0},
	}
	for _, tt := range tests {
		if got := WaterFor(tt.grams, tt.ratio); got != tt.want {
			t.Fatalf("WaterFor(%d, %.1f) = %d, want %d", tt.grams, tt.ratio, got, tt.want)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	if got := FormatRatio(15); got != "1:15.0" {
		t.Fatalf("got %q", got)
	}
	if got := NewBrewMath(18, 16.66).RatioLabel(); got != "1:16.7" {
		t.Fatalf("got %q", got)
	}
}
