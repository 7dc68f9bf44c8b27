package recipe

import (
	"errors"
	"testing"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// v60 builds the 288 ml composition used across these tests.
func v60() *Composition {
	c := NewComposition(nil)
	c.Append(domain.StageFast, 60, 10)
	c.Append(domain.StageWait, 0, 45)
	c.Append(domain.StageSlow, 140, 30)
	c.Append(domain.StageSlow, 88, 30)
	return c
}

func assertContiguous(t *testing.T, c *Composition) {
	t.Helper()
	for i, s := range c.Stages() {
		if s.OrderIndex != i {
			t.Fatalf("stage %d has OrderIndex %d", i, s.OrderIndex)
		}
	}
}

func TestAppendAssignsOrderIndex(t *testing.T) {
	c := NewComposition(nil)
	for i := 0; i < 3; i++ {
		s := c.Append(domain.StageSlow, 50, 20)
		if s.OrderIndex != i {
			t.Fatalf("expected OrderIndex %d, got %d", i, s.OrderIndex)
		}
		if s.ID == "" {
			t.Fatal("stage ID is empty")
		}
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 stages, got %d", c.Len())
	}
}

func TestNewCompositionSortsAndReindexes(t *testing.T) {
	c := NewComposition([]domain.Stage{
		{ID: "c", OrderIndex: 7, WaterAmount: 3},
		{ID: "a", OrderIndex: 2, WaterAmount: 1},
		{ID: "b", OrderIndex: 5, WaterAmount: 2},
	})
	stages := c.Stages()
	want := []string{"a", "b", "c"}
	for i, id := range want {
		if stages[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, stages[i].ID)
		}
	}
	assertContiguous(t, c)
}

func TestReorder(t *testing.T) {
	c := v60()
	stages := c.Stages()

	ids := []string{stages[3].ID, stages[0].ID, stages[2].ID, stages[1].ID}
	if err := c.Reorder(ids); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	got := c.Stages()
	for i, id := range ids {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
	assertContiguous(t, c)

	if c.TotalWater() != 288 {
		t.Fatalf("reorder changed total water: %d", c.TotalWater())
	}
}

func TestReorderRejectsNonPermutation(t *testing.T) {
	tests := []struct {
		name string
		ids  func(s []domain.Stage) []string
	}{
		{"too few", func(s []domain.Stage) []string { return []string{s[0].ID, s[1].ID} }},
		{"duplicate", func(s []domain.Stage) []string { return []string{s[0].ID, s[0].ID, s[1].ID, s[2].ID} }},
		{"unknown", func(s []domain.Stage) []string { return []string{s[0].ID, s[1].ID, s[2].ID, "nope"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := v60()
			before := c.Stages()

			err := c.Reorder(tt.ids(before))
			if !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("expected ErrInvalidOrder, got %v", err)
			}

			after := c.Stages()
			for i := range before {
				if before[i] != after[i] {
					t.Fatalf("stage %d changed after failed reorder", i)
				}
			}
		})
	}
}

func TestMove(t *testing.T) {
	c := v60()
	first := c.Stages()[0].ID

	if err := c.Move(0, 3); err != nil {
		t.Fatalf("move: %v", err)
	}
	if c.Stages()[3].ID != first {
		t.Fatal("expected first stage to move to the end")
	}
	assertContiguous(t, c)

	if err := c.Move(0, 9); !errors.Is(err, ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for out of range, got %v", err)
	}
}

func TestRemoveReindexes(t *testing.T) {
	c := v60()
	wait := c.Stages()[1].ID

	if !c.Remove(wait) {
		t.Fatal("expected remove to find the stage")
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 stages, got %d", c.Len())
	}
	assertContiguous(t, c)

	if c.Remove(wait) {
		t.Fatal("expected second remove to report not found")
	}
}

func TestCumulativeWater(t *testing.T) {
	c := v60()

	tests := []struct {
		index int
		want  int
	}{
		{-1, 0},
		{0, 60},
		{1, 60},
		{2, 200},
		{3, 288},
		{10, 288},
	}
	for _, tt := range tests {
		if got := c.CumulativeWaterThrough(tt.index); got != tt.want {
			t.Fatalf("CumulativeWaterThrough(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestBalance(t *testing.T) {
	c := v60()
	if !c.IsBalanced(288) {
		t.Fatal("expected 288 ml stages to balance 288 target")
	}

	last := c.Stages()[3]
	c.Update(last.ID, last.Type, last.WaterAmount+1, last.Seconds)
	if c.IsBalanced(288) {
		t.Fatal("expected +1 ml to unbalance")
	}

	b := c.Balance(288)
	if b.State != OverPour || b.Delta != 1 {
		t.Fatalf("expected over-pour by 1, got %s by %d", b.State, b.Delta)
	}

	b = c.Balance(300)
	if b.State != UnderPour || b.Delta != -11 {
		t.Fatalf("expected under-pour by 11, got %s by %d", b.State, b.Delta)
	}
}

func TestEmptyComposition(t *testing.T) {
	c := NewComposition(nil)
	if c.TotalWater() != 0 || c.TotalSeconds() != 0 {
		t.Fatal("expected zero totals for empty composition")
	}
	if !c.IsBalanced(0) {
		t.Fatal("empty composition balances a zero target")
	}
}

func TestTotalSeconds(t *testing.T) {
	if got := v60().TotalSeconds(); got != 115 {
		t.Fatalf("expected 115 seconds, got %d", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := v60()
	clone := c.Clone()
	clone.Remove(clone.Stages()[0].ID)
	if c.Len() != 4 {
		t.Fatal("clone mutation leaked into original")
	}
}
