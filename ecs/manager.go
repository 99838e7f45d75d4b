package ecs

import (
	"fmt"
	"reflect"
)

type entitySlot struct {
	entity     *Entity
	generation uint32
}

// EntityManager owns the entity lifecycle and fronts the ComponentRegistry
// for systems. Entities live in a dense slot arena; destroyed slots are
// recycled through a free list with a bumped generation counter, so a stale
// EntityId fails the liveness check in O(1) without any weak-reference
// bookkeeping.
//
// Not safe for concurrent use; see ComponentRegistry.
type EntityManager struct {
	slots    []entitySlot
	free     []uint32
	registry *ComponentRegistry
}

// NewEntityManager creates an empty manager with its own registry.
func NewEntityManager() *EntityManager {
	return &EntityManager{
		registry: NewComponentRegistry(),
	}
}

// Registry exposes the underlying component registry, mainly for consistency
// validation in tests and debug tooling.
func (m *EntityManager) Registry() *ComponentRegistry {
	return m.registry
}

// CreateEntity creates a new active entity with a process-unique id. Always
// succeeds.
func (m *EntityManager) CreateEntity() *Entity {
	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		m.slots = append(m.slots, entitySlot{generation: 1})
		index = uint32(len(m.slots) - 1)
	}

	slot := &m.slots[index]
	entity := newEntity(NewEntityId(slot.generation, index))
	slot.entity = entity
	return entity
}

// DestroyEntity removes all of the entity's components, terminally
// deactivates it, and recycles its slot. Idempotent: destroying a nil,
// unknown, or already-destroyed entity is a no-op, since multiple systems may
// race to clean up the same entity within one tick.
func (m *EntityManager) DestroyEntity(entity *Entity) {
	if entity == nil {
		return
	}
	index := entity.id.Index()
	if int(index) >= len(m.slots) {
		return
	}
	slot := &m.slots[index]
	if slot.entity == nil || slot.generation != entity.id.Generation() {
		return
	}

	m.registry.RemoveEntityComponents(entity)
	entity.Destroy()

	slot.entity = nil
	slot.generation++ // invalidates any cached copy of the id
	m.free = append(m.free, index)
}

// GetEntity resolves an id to its live entity, or nil if the id is unknown or
// stale.
func (m *EntityManager) GetEntity(id EntityId) *Entity {
	index := id.Index()
	if int(index) >= len(m.slots) {
		return nil
	}
	slot := &m.slots[index]
	if slot.entity == nil || slot.generation != id.Generation() {
		return nil
	}
	return slot.entity
}

// AllEntities returns every live entity, including deactivated ones.
func (m *EntityManager) AllEntities() []*Entity {
	entities := make([]*Entity, 0, len(m.slots)-len(m.free))
	for i := range m.slots {
		if m.slots[i].entity != nil {
			entities = append(entities, m.slots[i].entity)
		}
	}
	return entities
}

// ActiveEntities returns every entity whose active flag is set.
func (m *EntityManager) ActiveEntities() []*Entity {
	entities := make([]*Entity, 0, len(m.slots)-len(m.free))
	for i := range m.slots {
		if e := m.slots[i].entity; e != nil && e.Active() {
			entities = append(entities, e)
		}
	}
	return entities
}

// EntityCount returns the number of live entities.
func (m *EntityManager) EntityCount() int {
	return len(m.slots) - len(m.free)
}

// ActiveEntityCount returns the number of active entities.
func (m *EntityManager) ActiveEntityCount() int {
	return len(m.ActiveEntities())
}

// AddComponent attaches a component through the registry. Fails with
// ErrEntityNotFound when the entity is unknown to this manager, before the
// registry applies its own inactive/duplicate/validation checks.
func (m *EntityManager) AddComponent(entity *Entity, component Component) error {
	if entity == nil || m.GetEntity(entity.id) != entity {
		return fmt.Errorf("add component: entity %v: %w", entity, ErrEntityNotFound)
	}
	return m.registry.AddComponent(entity, component)
}

// RemoveComponent detaches and returns the component of the given type, or
// nil if absent. Idempotent.
func (m *EntityManager) RemoveComponent(entity *Entity, t reflect.Type) Component {
	return m.registry.RemoveComponent(entity, t)
}

// GetComponent returns the entity's component of the given type, or nil.
func (m *EntityManager) GetComponent(entity *Entity, t reflect.Type) Component {
	return m.registry.GetComponent(entity, t)
}

// HasComponent reports whether the entity owns a component of the given type.
func (m *EntityManager) HasComponent(entity *Entity, t reflect.Type) bool {
	return m.registry.HasComponent(entity, t)
}

// ComponentsFor returns all components attached to the entity, keyed by type.
func (m *EntityManager) ComponentsFor(entity *Entity) map[reflect.Type]Component {
	return m.registry.ComponentsFor(entity)
}

// EntitiesWith returns the active entities owning a component of the given
// type, materialized for system consumption. Active-filtering happens in the
// registry; this layer only collects.
func (m *EntityManager) EntitiesWith(t reflect.Type) []*Entity {
	var entities []*Entity
	for entity := range m.registry.EntitiesWith(t) {
		entities = append(entities, entity)
	}
	return entities
}

// EntitiesWithAll returns the active entities owning every one of the given
// component types (set-intersection semantics). An empty type list matches
// all active entities.
func (m *EntityManager) EntitiesWithAll(types ...reflect.Type) []*Entity {
	if len(types) == 0 {
		return m.ActiveEntities()
	}
	var entities []*Entity
	for entity := range m.registry.EntitiesWithAll(types...) {
		entities = append(entities, entity)
	}
	return entities
}

// ClearAll destroys every entity: a full-world reset.
func (m *EntityManager) ClearAll() {
	for i := range m.slots {
		if e := m.slots[i].entity; e != nil {
			m.DestroyEntity(e)
		}
	}
}

func (m *EntityManager) String() string {
	return fmt.Sprintf("EntityManager(entities=%d, active=%d)",
		m.EntityCount(), m.ActiveEntityCount())
}

// GetComponentAs is a typed convenience accessor over EntityManager.
// Returns the zero value and false when the component is absent.
func GetComponentAs[T Component](m *EntityManager, entity *Entity) (T, bool) {
	component := m.GetComponent(entity, ComponentTypeOf[T]())
	if component == nil {
		var zero T
		return zero, false
	}
	typed, ok := component.(T)
	return typed, ok
}
