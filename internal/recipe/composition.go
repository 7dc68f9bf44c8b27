// Package recipe implements recipe editing: the ordered stage composition,
// brew math, form snapshots with save-time validation, and the built-in
// recipe seed.
package recipe

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// ErrInvalidOrder is returned when a reorder request is not a permutation
// of the current stages.
var ErrInvalidOrder = errors.New("stage order is not a permutation of the current stages")

// Composition is the ordered stage list of a recipe. Queries never fail;
// balance is validated once, at save time.
//
// A Composition is not safe for concurrent mutation; one editor owns it.
type Composition struct {
	stages []domain.Stage
}

// NewComposition builds a composition from stored stages. Stages are
// sorted by their OrderIndex and reindexed contiguously from 0.
func NewComposition(stages []domain.Stage) *Composition {
	c := &Composition{stages: append([]domain.Stage(nil), stages...)}
	sort.SliceStable(c.stages, func(i, j int) bool {
		return c.stages[i].OrderIndex < c.stages[j].OrderIndex
	})
	c.reindex()
	return c
}

// Stages returns a copy of the stages in order.
func (c *Composition) Stages() []domain.Stage {
	return append([]domain.Stage(nil), c.stages...)
}

// Len returns the number of stages.
func (c *Composition) Len() int { return len(c.stages) }

// Clone returns an independent copy.
func (c *Composition) Clone() *Composition {
	return &Composition{stages: c.Stages()}
}

// Append adds a stage at the end. Its OrderIndex is the current count.
func (c *Composition) Append(typ domain.StageType, waterAmount, seconds int) domain.Stage {
	s := domain.Stage{
		ID:          domain.NewID(),
		Type:        typ,
		OrderIndex:  len(c.stages),
		Seconds:     seconds,
		WaterAmount: waterAmount,
	}
	c.stages = append(c.stages, s)
	return s
}

// Update edits a stage in place. Returns false if the id is unknown.
func (c *Composition) Update(id string, typ domain.StageType, waterAmount, seconds int) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.stages[i].Type = typ
	c.stages[i].WaterAmount = waterAmount
	c.stages[i].Seconds = seconds
	return true
}

// Reorder rearranges the stages to follow ids, which must name every
// current stage exactly once. On error nothing changes.
func (c *Composition) Reorder(ids []string) error {
	if len(ids) != len(c.stages) {
		return fmt.Errorf("%w: got %d ids for %d stages", ErrInvalidOrder, len(ids), len(c.stages))
	}

	byID := make(map[string]domain.Stage, len(c.stages))
	for _, s := range c.stages {
		byID[s.ID] = s
	}

	next := make([]domain.Stage, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: unknown stage %q", ErrInvalidOrder, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate stage %q", ErrInvalidOrder, id)
		}
		seen[id] = true
		next = append(next, s)
	}

	c.stages = next
	c.reindex()
	return nil
}

// Move relocates the stage at index from to index to, shifting the rest.
func (c *Composition) Move(from, to int) error {
	n := len(c.stages)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d out of range [0,%d)", ErrInvalidOrder, from, to, n)
	}
	ids := make([]string, 0, n)
	for _, s := range c.stages {
		ids = append(ids, s.ID)
	}
	moved := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]string{moved}, ids[to:]...)...)
	return c.Reorder(ids)
}

// Remove deletes a stage and reindexes the rest. Returns false if the id
// is unknown.
func (c *Composition) Remove(id string) bool {
	i := c.indexOf(id)
	if i < 0 {
		return false
	}
	c.stages = append(c.stages[:i], c.stages[i+1:]...)
	c.reindex()
	return true
}

// CumulativeWaterThrough returns the water poured by the end of stage
// index, inclusive. Negative indexes yield 0; indexes past the end yield
// the total.
func (c *Composition) CumulativeWaterThrough(index int) int {
	total := 0
	for i := 0; i <= index && i < len(c.stages); i++ {
		total += c.stages[i].WaterAmount
	}
	return total
}

// TotalWater is the sum of every stage's water.
func (c *Composition) TotalWater() int {
	return c.CumulativeWaterThrough(len(c.stages) - 1)
}

// TotalSeconds is the planned brew time.
func (c *Composition) TotalSeconds() int {
	total := 0
	for _, s := range c.stages {
		total += s.Seconds
	}
	return total
}

// Balance compares the stage water total against target.
func (c *Composition) Balance(target int) Balance {
	return NewBalance(c.TotalWater(), target)
}

// IsBalanced reports whether the stage water equals target exactly.
func (c *Composition) IsBalanced(target int) bool {
	return c.TotalWater() == target
}

func (c *Composition) indexOf(id string) int {
	for i, s := range c.stages {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (c *Composition) reindex() {
	for i := range c.stages {
		c.stages[i].OrderIndex = i
	}
}

// BalanceState says which way the stage total misses the target.
type BalanceState int

const (
	Balanced BalanceState = iota
	UnderPour
	OverPour
)

// String returns a human-readable balance state.
func (s BalanceState) String() string {
	switch s {
	case Balanced:
		return "balanced"
	case UnderPour:
		return "under-pour"
	case OverPour:
		return "over-pour"
	default:
		return "unknown"
	}
}

// Balance is the water balance of a composition against its target.
type Balance struct {
	Total  int
	Target int
	Delta  int // Total - Target
	State  BalanceState
}

// NewBalance classifies total against target. Equality is exact.
func NewBalance(total, target int) Balance {
	b := Balance{Total: total, Target: target, Delta: total - target}
	switch {
	case b.Delta > 0:
		b.State = OverPour
	case b.Delta < 0:
		b.State = UnderPour
	default:
		b.State = Balanced
	}
	return b
}

// OK reports whether the balance is exact.
func (b Balance) OK() bool { return b.State == Balanced }

// Message describes the balance for the editor.
func (b Balance) Message() string {
	switch b.State {
	case OverPour:
		return fmt.Sprintf("stages pour %d ml, %d ml over the %d ml target", b.Total, b.Delta, b.Target)
	case UnderPour:
		return fmt.Sprintf("stages pour %d ml, %d ml short of the %d ml target", b.Total, -b.Delta, b.Target)
	default:
		return fmt.Sprintf("stages pour exactly %d ml", b.Total)
	}
}
