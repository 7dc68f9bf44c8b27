package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottobrew/internal/logger"
)

func TestPublishInOrder(t *testing.T) {
	bus := NewBus(logger.New(logger.LevelOff, nil))
	ch, cancel := bus.Subscribe(8)
	defer cancel()

	bus.Publish(RecipeSaved, "r1")
	bus.Publish(BrewLogged, "b1")
	bus.Publish(RecipeDeleted, "r1")

	var got []Type
	for i := 0; i < 3; i++ {
		ev := <-ch
		got = append(got, ev.Type)
		assert.Equal(t, uint64(i+1), ev.Seq)
	}
	assert.Equal(t, []Type{RecipeSaved, BrewLogged, RecipeDeleted}, got)
}

func TestPublishNeverBlocks(t *testing.T) {
	bus := NewBus(logger.New(logger.LevelOff, nil))
	ch, cancel := bus.Subscribe(1)
	defer cancel()

	bus.Publish(ChartSaved, "c1")
	bus.Publish(ChartSaved, "c2") // dropped

	ev := <-ch
	assert.Equal(t, "c1", ev.EntityID)
	select {
	case ev := <-ch:
		t.Fatalf("expected no second event, got %+v", ev)
	default:
	}
}

func TestCancelClosesChannel(t *testing.T) {
	bus := NewBus(logger.New(logger.LevelOff, nil))
	ch, cancel := bus.Subscribe(4)
	cancel()
	cancel()

	_, ok := <-ch
	require.False(t, ok, "channel should be closed")

	// Publishing after cancel must not panic on the closed channel.
	bus.Publish(RoasterSaved, "x")
}

func TestFanOut(t *testing.T) {
	bus := NewBus(logger.New(logger.LevelOff, nil))
	a, cancelA := bus.Subscribe(2)
	defer cancelA()
	b, cancelB := bus.Subscribe(2)
	defer cancelB()

	bus.Publish(GrinderSaved, "g1")
	assert.Equal(t, "g1", (<-a).EntityID)
	assert.Equal(t, "g1", (<-b).EntityID)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "brew.logged", BrewLogged.String())
	assert.Equal(t, "unknown", Type(99).String())
}
