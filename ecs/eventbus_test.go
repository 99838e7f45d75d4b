package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/weft/ecs"
)

type enemyDied struct {
	EntityId ecs.EntityId
	Score    int
}

type levelUp struct {
	NewLevel int
}

func TestEventBusDispatch(t *testing.T) {
	bus := ecs.NewEventBus()

	var deaths []enemyDied
	var levels []levelUp
	ecs.Subscribe(bus, func(ev enemyDied) { deaths = append(deaths, ev) })
	ecs.Subscribe(bus, func(ev levelUp) { levels = append(levels, ev) })

	ecs.Publish(bus, enemyDied{EntityId: 42, Score: 10})
	ecs.Publish(bus, levelUp{NewLevel: 2})
	ecs.Publish(bus, enemyDied{EntityId: 43, Score: 5})

	// Nothing dispatches until the drain
	assert.Empty(t, deaths)
	assert.Equal(t, 3, bus.Pending())

	n := bus.Drain()
	assert.Equal(t, 3, n)
	assert.Zero(t, bus.Pending())

	assert.Equal(t, []enemyDied{{42, 10}, {43, 5}}, deaths)
	assert.Equal(t, []levelUp{{2}}, levels)
}

func TestEventBusHandlerOrder(t *testing.T) {
	bus := ecs.NewEventBus()

	var order []string
	ecs.Subscribe(bus, func(levelUp) { order = append(order, "first") })
	ecs.Subscribe(bus, func(levelUp) { order = append(order, "second") })

	ecs.Publish(bus, levelUp{NewLevel: 1})
	bus.Drain()

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestEventBusHandlerPanicIsContained(t *testing.T) {
	bus := ecs.NewEventBus()

	var handled int
	ecs.Subscribe(bus, func(levelUp) { panic("handler bug") })
	ecs.Subscribe(bus, func(levelUp) { handled++ })

	ecs.Publish(bus, levelUp{NewLevel: 3})

	assert.NotPanics(t, func() { bus.Drain() })
	assert.Equal(t, 1, handled)
	assert.Equal(t, int64(1), bus.HandlerPanics())
}

func TestEventBusPublishDuringDrainDefers(t *testing.T) {
	bus := ecs.NewEventBus()

	var seen []int
	ecs.Subscribe(bus, func(ev levelUp) {
		seen = append(seen, ev.NewLevel)
		if ev.NewLevel == 1 {
			ecs.Publish(bus, levelUp{NewLevel: 2})
		}
	})

	ecs.Publish(bus, levelUp{NewLevel: 1})

	assert.Equal(t, 1, bus.Drain())
	assert.Equal(t, []int{1}, seen)
	assert.Equal(t, 1, bus.Pending())

	assert.Equal(t, 1, bus.Drain())
	assert.Equal(t, []int{1, 2}, seen)
}

func TestEventBusUnsubscribedTypeIsDropped(t *testing.T) {
	bus := ecs.NewEventBus()

	ecs.Publish(bus, enemyDied{EntityId: 1})
	assert.Equal(t, 1, bus.Drain())
}

func TestEventBusClear(t *testing.T) {
	bus := ecs.NewEventBus()

	var handled int
	ecs.Subscribe(bus, func(levelUp) { handled++ })

	ecs.Publish(bus, levelUp{NewLevel: 1})
	bus.Clear()

	assert.Zero(t, bus.Pending())
	assert.Zero(t, bus.Drain())
	assert.Zero(t, handled)
}
