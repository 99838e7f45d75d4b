package ecs

import (
	"fmt"
	"iter"
	"reflect"

	"github.com/kamstrup/intmap"
)

// ComponentRegistry is the sole owner of component instances. It maps
// (component type, entity id) to a component and keeps a reverse index of the
// component types attached to each entity. The two indices are kept mutually
// consistent; ValidateRegistry cross-checks them off the hot path.
//
// An entity owns at most one component per concrete type.
//
// The registry is not safe for concurrent use. All access happens on the
// single thread the orchestrator ticks on.
type ComponentRegistry struct {
	// component type -> entity id -> component instance
	components map[reflect.Type]*intmap.Map[EntityId, Component]
	// entity id -> set of attached component types
	entityTypes map[EntityId]map[reflect.Type]struct{}
	// roster of entities that have ever had a component attached, used for
	// active-filtered queries
	entities map[EntityId]*Entity
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		components:  make(map[reflect.Type]*intmap.Map[EntityId, Component]),
		entityTypes: make(map[EntityId]map[reflect.Type]struct{}),
		entities:    make(map[EntityId]*Entity),
	}
}

// AddComponent attaches a component to an entity.
//
// Fails with ErrInactiveEntity if the entity is not active, with
// ErrDuplicateComponent if the entity already owns a component of the same
// concrete type, and with ErrValidationFailed if the component rejects its
// own data. On failure nothing is stored and any existing component is left
// unchanged.
func (r *ComponentRegistry) AddComponent(entity *Entity, component Component) error {
	if entity == nil {
		return fmt.Errorf("add component: %w", ErrEntityNotFound)
	}
	if !entity.Active() {
		return fmt.Errorf("add component to %v: %w", entity, ErrInactiveEntity)
	}

	t := componentType(component)
	if _, dup := r.entityTypes[entity.id][t]; dup {
		return fmt.Errorf("add %s to %v: %w", t, entity, ErrDuplicateComponent)
	}
	if !component.Validate() {
		return fmt.Errorf("add %s to %v: %w", t, entity, ErrValidationFailed)
	}

	inner := r.components[t]
	if inner == nil {
		inner = intmap.New[EntityId, Component](64)
		r.components[t] = inner
	}
	inner.Put(entity.id, component)

	typeSet := r.entityTypes[entity.id]
	if typeSet == nil {
		typeSet = make(map[reflect.Type]struct{})
		r.entityTypes[entity.id] = typeSet
	}
	typeSet[t] = struct{}{}
	r.entities[entity.id] = entity
	return nil
}

// RemoveComponent detaches and returns the component of the given type.
// Idempotent: removing an absent component returns nil, not an error.
func (r *ComponentRegistry) RemoveComponent(entity *Entity, t reflect.Type) Component {
	if entity == nil {
		return nil
	}
	inner := r.components[t]
	if inner == nil {
		return nil
	}
	component, ok := inner.Get(entity.id)
	if !ok {
		return nil
	}

	inner.Del(entity.id)
	if inner.Len() == 0 {
		delete(r.components, t)
	}
	r.dropTypeIndex(entity.id, t)
	return component
}

func (r *ComponentRegistry) dropTypeIndex(id EntityId, t reflect.Type) {
	typeSet := r.entityTypes[id]
	if typeSet == nil {
		return
	}
	delete(typeSet, t)
	if len(typeSet) == 0 {
		delete(r.entityTypes, id)
		delete(r.entities, id)
	}
}

// GetComponent returns the component of the given type, or nil if absent.
func (r *ComponentRegistry) GetComponent(entity *Entity, t reflect.Type) Component {
	if entity == nil {
		return nil
	}
	inner := r.components[t]
	if inner == nil {
		return nil
	}
	component, _ := inner.Get(entity.id)
	return component
}

// HasComponent reports whether the entity owns a component of the given type.
func (r *ComponentRegistry) HasComponent(entity *Entity, t reflect.Type) bool {
	if entity == nil {
		return false
	}
	_, ok := r.entityTypes[entity.id][t]
	return ok
}

// ComponentsFor returns all components attached to an entity, keyed by type.
func (r *ComponentRegistry) ComponentsFor(entity *Entity) map[reflect.Type]Component {
	result := make(map[reflect.Type]Component)
	if entity == nil {
		return result
	}
	for t := range r.entityTypes[entity.id] {
		if inner := r.components[t]; inner != nil {
			if component, ok := inner.Get(entity.id); ok {
				result[t] = component
			}
		}
	}
	return result
}

// EntitiesWith returns a lazy sequence of (entity, component) pairs for every
// active entity owning a component of the given type. Inactive entities are
// excluded even when their storage entries still exist; the registry does not
// eagerly purge entries for deactivated entities.
func (r *ComponentRegistry) EntitiesWith(t reflect.Type) iter.Seq2[*Entity, Component] {
	return func(yield func(*Entity, Component) bool) {
		inner := r.components[t]
		if inner == nil {
			return
		}
		for id, entity := range r.entities {
			if !entity.Active() {
				continue
			}
			component, ok := inner.Get(id)
			if !ok {
				continue
			}
			if !yield(entity, component) {
				return
			}
		}
	}
}

// EntitiesWithAll returns a lazy sequence over active entities owning every
// one of the given component types, with components in argument order.
// An empty type list yields nothing; match-all semantics belong to the
// System layer.
func (r *ComponentRegistry) EntitiesWithAll(types ...reflect.Type) iter.Seq2[*Entity, []Component] {
	return func(yield func(*Entity, []Component) bool) {
		if len(types) == 0 {
			return
		}
		for id, entity := range r.entities {
			if !entity.Active() {
				continue
			}
			typeSet := r.entityTypes[id]
			matched := true
			for _, t := range types {
				if _, ok := typeSet[t]; !ok {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}

			components := make([]Component, len(types))
			for i, t := range types {
				components[i], _ = r.components[t].Get(id)
			}
			if !yield(entity, components) {
				return
			}
		}
	}
}

// RemoveEntityComponents bulk-removes every component attached to the entity
// and returns them keyed by type. Used by EntityManager.DestroyEntity.
func (r *ComponentRegistry) RemoveEntityComponents(entity *Entity) map[reflect.Type]Component {
	removed := make(map[reflect.Type]Component)
	if entity == nil {
		return removed
	}

	types := make([]reflect.Type, 0, len(r.entityTypes[entity.id]))
	for t := range r.entityTypes[entity.id] {
		types = append(types, t)
	}
	for _, t := range types {
		if component := r.RemoveComponent(entity, t); component != nil {
			removed[t] = component
		}
	}
	return removed
}

// ComponentCount returns the number of stored components of the given type.
func (r *ComponentRegistry) ComponentCount(t reflect.Type) int {
	inner := r.components[t]
	if inner == nil {
		return 0
	}
	return inner.Len()
}

// EntityComponentCount returns the number of components attached to an entity.
func (r *ComponentRegistry) EntityComponentCount(entity *Entity) int {
	if entity == nil {
		return 0
	}
	return len(r.entityTypes[entity.id])
}

// ComponentTypes returns every component type currently stored.
func (r *ComponentRegistry) ComponentTypes() []reflect.Type {
	types := make([]reflect.Type, 0, len(r.components))
	for t := range r.components {
		types = append(types, t)
	}
	return types
}

// Contains reports whether the registry tracks the entity.
func (r *ComponentRegistry) Contains(entity *Entity) bool {
	if entity == nil {
		return false
	}
	_, ok := r.entities[entity.id]
	return ok
}

// Len returns the total number of component instances stored.
func (r *ComponentRegistry) Len() int {
	total := 0
	for _, typeSet := range r.entityTypes {
		total += len(typeSet)
	}
	return total
}

// Clear drops all components, indices, and roster entries.
func (r *ComponentRegistry) Clear() {
	r.components = make(map[reflect.Type]*intmap.Map[EntityId, Component])
	r.entityTypes = make(map[EntityId]map[reflect.Type]struct{})
	r.entities = make(map[EntityId]*Entity)
}

// ValidateRegistry cross-checks the forward and reverse indices. Debug and
// test use only; not called on the hot path.
func (r *ComponentRegistry) ValidateRegistry() bool {
	// Every type in an entity's type-set must have a stored component.
	perType := make(map[reflect.Type]int)
	for id, typeSet := range r.entityTypes {
		if len(typeSet) == 0 {
			return false
		}
		if _, ok := r.entities[id]; !ok {
			return false
		}
		for t := range typeSet {
			inner := r.components[t]
			if inner == nil {
				return false
			}
			if _, ok := inner.Get(id); !ok {
				return false
			}
			perType[t]++
		}
	}

	// Every stored component must be reflected in a type-set. Membership was
	// verified above, so matching per-type counts close the loop.
	if len(perType) != len(r.components) {
		return false
	}
	for t, inner := range r.components {
		if inner.Len() == 0 {
			return false
		}
		if perType[t] != inner.Len() {
			return false
		}
	}

	// Roster entries must correspond to entities with at least one component.
	if len(r.entities) != len(r.entityTypes) {
		return false
	}
	return true
}

func (r *ComponentRegistry) String() string {
	return fmt.Sprintf("ComponentRegistry(components=%d, types=%d, entities=%d)",
		r.Len(), len(r.components), len(r.entities))
}
