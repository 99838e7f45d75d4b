package ecs_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plus3/weft/ecs"
)

// Test EntityId encoding/decoding
func TestEntityIdEncoding(t *testing.T) {
	generation := uint32(12345)
	index := uint32(67890)

	id := ecs.NewEntityId(generation, index)

	assert.Equal(t, generation, id.Generation())
	assert.Equal(t, index, id.Index())
}

func TestEntityIdEdgeCases(t *testing.T) {
	tests := []struct {
		generation uint32
		index      uint32
	}{
		{0, 0},
		{0xFFFFFFFF, 0xFFFFFFFF},
		{1, 0},
		{0, 1},
		{0x12345678, 0x9ABCDEF0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("generation=%d,index=%d", tt.generation, tt.index), func(t *testing.T) {
			id := ecs.NewEntityId(tt.generation, tt.index)
			assert.Equal(t, tt.generation, id.Generation())
			assert.Equal(t, tt.index, id.Index())
		})
	}
}

func TestEntityActivation(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()

	assert.True(t, entity.Active())
	assert.False(t, entity.Destroyed())

	entity.Deactivate()
	assert.False(t, entity.Active())
	assert.False(t, entity.Destroyed())

	entity.Activate()
	assert.True(t, entity.Active())
}

func TestEntityDestroyIsTerminal(t *testing.T) {
	em := ecs.NewEntityManager()
	entity := em.CreateEntity()

	entity.Destroy()
	assert.False(t, entity.Active())
	assert.True(t, entity.Destroyed())

	// Destroyed entities cannot be reactivated
	entity.Activate()
	assert.False(t, entity.Active())
}

func TestEntityEqualityById(t *testing.T) {
	em := ecs.NewEntityManager()
	a := em.CreateEntity()
	b := em.CreateEntity()

	assert.True(t, a.Equals(a))
	assert.False(t, a.Equals(b))
	assert.False(t, a.Equals(nil))
	assert.NotEqual(t, a.Id(), b.Id())

	// Equality tracks id only, not activity state
	a.Deactivate()
	assert.True(t, a.Equals(a))
}
