package ecs

import "fmt"

// EntityId encodes both the slot generation (upper 32 bits) and the arena index (lower 32 bits)
type EntityId uint64

// NewEntityId creates an EntityId from a generation counter and arena index
func NewEntityId(generation uint32, index uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the generation counter from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the arena index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

// Entity is an identity token for a simulated object. It carries no data
// beyond its id and activity state; component data lives in the
// ComponentRegistry.
//
// Entities are only constructed by an EntityManager, which is the lifecycle
// authority for the active flag. A stale EntityId (one whose slot was
// recycled) fails the manager's generation check.
type Entity struct {
	id        EntityId
	active    bool
	destroyed bool
}

func newEntity(id EntityId) *Entity {
	return &Entity{id: id, active: true}
}

// Id returns the entity's unique identifier.
func (e *Entity) Id() EntityId {
	return e.id
}

// Active reports whether the entity participates in system processing.
func (e *Entity) Active() bool {
	return e.active
}

// Destroyed reports whether the entity has been terminally deactivated.
func (e *Entity) Destroyed() bool {
	return e.destroyed
}

// Activate makes the entity visible to systems again. Destroyed entities
// cannot be reactivated.
func (e *Entity) Activate() {
	if e.destroyed {
		return
	}
	e.active = true
}

// Deactivate hides the entity from system processing without destroying its
// identity. Component data stays attached.
func (e *Entity) Deactivate() {
	e.active = false
}

// Destroy terminally deactivates the entity. Component removal and slot
// recycling is handled by the EntityManager.
func (e *Entity) Destroy() {
	e.active = false
	e.destroyed = true
}

// Equals compares entities by id only.
func (e *Entity) Equals(other *Entity) bool {
	return other != nil && e.id == other.id
}

func (e *Entity) String() string {
	status := "active"
	if e.destroyed {
		status = "destroyed"
	} else if !e.active {
		status = "inactive"
	}
	return fmt.Sprintf("Entity(%d:%d)[%s]", e.id.Generation(), e.id.Index(), status)
}
