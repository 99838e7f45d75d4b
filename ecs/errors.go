package ecs

import "errors"

// Structural errors indicate caller-side mistakes at the mutating call site.
// They are returned synchronously and never swallowed. Match with errors.Is;
// call sites wrap them with entity/type context.
var (
	// ErrDuplicateComponent is returned when an entity already owns a
	// component of the same concrete type.
	ErrDuplicateComponent = errors.New("duplicate component type")

	// ErrInactiveEntity is returned when attaching a component to an
	// inactive entity.
	ErrInactiveEntity = errors.New("entity is inactive")

	// ErrEntityNotFound is returned when an entity id is unknown to the
	// EntityManager (distinct from the registry's inactive check).
	ErrEntityNotFound = errors.New("entity not found")

	// ErrValidationFailed is returned when Component.Validate rejects the
	// component at registration time.
	ErrValidationFailed = errors.New("component validation failed")

	// ErrDuplicateSystem is returned when registering a system under a name
	// that is already taken.
	ErrDuplicateSystem = errors.New("system name already registered")

	// ErrUnknownSystem is returned by operations that require every named
	// system to be registered, such as group creation.
	ErrUnknownSystem = errors.New("unknown system")
)
