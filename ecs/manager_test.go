package ecs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/weft/ecs"
)

func TestCreateEntityUniqueIds(t *testing.T) {
	em := ecs.NewEntityManager()

	seen := map[ecs.EntityId]bool{}
	for i := 0; i < 100; i++ {
		entity := em.CreateEntity()
		assert.True(t, entity.Active())
		assert.False(t, seen[entity.Id()])
		seen[entity.Id()] = true
	}
	assert.Equal(t, 100, em.EntityCount())
}

func TestGetEntityResolvesLiveIds(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()

	assert.Same(t, entity, em.GetEntity(entity.Id()))
	assert.Nil(t, em.GetEntity(ecs.NewEntityId(99, 99)))
}

func TestDestroyEntity(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()
	require.NoError(t, em.AddComponent(entity, &Position{X: 1}))

	em.DestroyEntity(entity)

	assert.True(t, entity.Destroyed())
	assert.Nil(t, em.GetEntity(entity.Id()))
	assert.False(t, em.HasComponent(entity, positionType))
	assert.Zero(t, em.EntityCount())
	assert.True(t, em.Registry().ValidateRegistry())
}

func TestDestroyEntityIsIdempotent(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()

	// Multiple systems may race to clean up the same entity within one
	// tick; repeated destroys are a no-op.
	em.DestroyEntity(entity)
	em.DestroyEntity(entity)
	em.DestroyEntity(nil)

	other := ecs.NewEntityManager().CreateEntity()
	em.DestroyEntity(other)

	assert.Zero(t, em.EntityCount())
}

func TestStaleIdFailsGenerationCheck(t *testing.T) {
	em := ecs.NewEntityManager()
	first := em.CreateEntity()
	staleId := first.Id()

	em.DestroyEntity(first)
	second := em.CreateEntity()

	// The slot is recycled with a bumped generation
	assert.Equal(t, staleId.Index(), second.Id().Index())
	assert.NotEqual(t, staleId.Generation(), second.Id().Generation())

	assert.Nil(t, em.GetEntity(staleId))
	assert.Same(t, second, em.GetEntity(second.Id()))
}

func TestAddComponentUnknownEntity(t *testing.T) {
	em := ecs.NewEntityManager()

	foreign := ecs.NewEntityManager().CreateEntity()
	err := em.AddComponent(foreign, &Position{})
	assert.ErrorIs(t, err, ecs.ErrEntityNotFound)

	destroyed := em.CreateEntity()
	em.DestroyEntity(destroyed)
	err = em.AddComponent(destroyed, &Position{})
	assert.ErrorIs(t, err, ecs.ErrEntityNotFound)

	// A known but deactivated entity is the registry's concern, reported
	// as a distinct error kind.
	inactive := em.CreateEntity()
	inactive.Deactivate()
	err = em.AddComponent(inactive, &Position{})
	assert.ErrorIs(t, err, ecs.ErrInactiveEntity)
}

func TestActiveEntityFiltering(t *testing.T) {
	em := ecs.NewEntityManager()
	e1 := em.CreateEntity()
	e2 := em.CreateEntity()
	e3 := em.CreateEntity()

	e2.Deactivate()

	all := em.AllEntities()
	active := em.ActiveEntities()

	assert.Len(t, all, 3)
	assert.Len(t, active, 2)
	assert.Equal(t, 2, em.ActiveEntityCount())
	assert.Contains(t, active, e1)
	assert.NotContains(t, active, e2)
	assert.Contains(t, active, e3)
}

func TestManagerQueryScenario(t *testing.T) {
	em := ecs.NewEntityManager()
	e1 := em.CreateEntity()
	e2 := em.CreateEntity()
	e3 := em.CreateEntity()

	require.NoError(t, em.AddComponent(e1, &Position{}))
	require.NoError(t, em.AddComponent(e2, &Position{}))

	withPosition := em.EntitiesWith(positionType)
	assert.ElementsMatch(t, withPosition, []*ecs.Entity{e1, e2})
	assert.NotContains(t, withPosition, e3)

	require.NoError(t, em.AddComponent(e1, &Velocity{}))

	both := em.EntitiesWithAll(positionType, velocityType)
	assert.Equal(t, []*ecs.Entity{e1}, both)
}

func TestEntitiesWithAllEmptyMatchesActive(t *testing.T) {
	em := ecs.NewEntityManager()
	e1 := em.CreateEntity()
	e2 := em.CreateEntity()
	e2.Deactivate()

	matched := em.EntitiesWithAll()
	assert.Equal(t, []*ecs.Entity{e1}, matched)
}

func TestRemoveComponentThroughManager(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()
	pos := &Position{X: 4}
	require.NoError(t, em.AddComponent(entity, pos))

	assert.Same(t, pos, em.GetComponent(entity, positionType))
	assert.Same(t, pos, em.RemoveComponent(entity, positionType))
	assert.Nil(t, em.GetComponent(entity, positionType))
	assert.Nil(t, em.RemoveComponent(entity, positionType))
}

func TestClearAll(t *testing.T) {
	em := ecs.NewEntityManager()
	for i := 0; i < 10; i++ {
		entity := em.CreateEntity()
		require.NoError(t, em.AddComponent(entity, &Position{}))
	}

	em.ClearAll()

	assert.Zero(t, em.EntityCount())
	assert.Empty(t, em.EntitiesWith(positionType))
	assert.Zero(t, em.Registry().Len())
	assert.True(t, em.Registry().ValidateRegistry())

	// The world is usable again after a reset
	entity := em.CreateEntity()
	assert.NoError(t, em.AddComponent(entity, &Position{}))
}

func TestGetComponentAs(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()
	require.NoError(t, em.AddComponent(entity, &Health{Current: 30, Max: 50}))

	health, ok := ecs.GetComponentAs[*Health](em, entity)
	require.True(t, ok)
	assert.Equal(t, 30, health.Current)

	_, ok = ecs.GetComponentAs[*Velocity](em, entity)
	assert.False(t, ok)
}
