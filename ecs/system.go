package ecs

import "reflect"

// System is the per-tick behavior contract. Implementations declare the
// component types they operate on and mutate component data in place during
// Update.
//
// Lifecycle: Initialize is called exactly once when the system is registered
// with an Orchestrator; Cleanup exactly once when it is unregistered. Between
// those the system can be enabled and disabled freely. There is no path back
// to the uninitialized state.
//
// Update errors (and panics) are isolated per tick by the orchestrator and
// never halt the frame. An Initialize error aborts registration entirely.
type System interface {
	// Initialize prepares the system's resources. Called once on
	// registration; an error rolls the registration back.
	Initialize() error

	// Cleanup releases the system's resources. Called once on
	// unregistration, best-effort.
	Cleanup()

	// Update runs one tick of behavior. deltaTime is a non-negative
	// duration in seconds.
	Update(em *EntityManager, deltaTime float64) error

	// Priority orders execution: lower values run first.
	Priority() int
	SetPriority(priority int)

	// Enabled systems run each tick; disabled systems keep their
	// registration but are skipped.
	Enabled() bool
	Enable()
	Disable()

	// Initialized reports whether Initialize has run.
	Initialized() bool

	// RequiredComponents declares the component types this system needs.
	// An empty list matches all active entities.
	RequiredComponents() []reflect.Type
}

// BaseSystem carries the common System state. Embed it and implement Update;
// override Initialize/Cleanup/RequiredComponents as needed, calling through
// to the embedded versions where the defaults apply.
type BaseSystem struct {
	priority    int
	enabled     bool
	initialized bool
	required    []reflect.Type
}

// NewBaseSystem creates system state with the given priority and required
// component types. Systems start enabled.
func NewBaseSystem(priority int, required ...reflect.Type) BaseSystem {
	return BaseSystem{
		priority: priority,
		enabled:  true,
		required: required,
	}
}

func (s *BaseSystem) Initialize() error {
	s.initialized = true
	return nil
}

func (s *BaseSystem) Cleanup() {}

func (s *BaseSystem) Priority() int {
	return s.priority
}

func (s *BaseSystem) SetPriority(priority int) {
	s.priority = priority
}

func (s *BaseSystem) Enabled() bool {
	return s.enabled
}

func (s *BaseSystem) Enable() {
	s.enabled = true
}

func (s *BaseSystem) Disable() {
	s.enabled = false
}

func (s *BaseSystem) Initialized() bool {
	return s.initialized
}

func (s *BaseSystem) RequiredComponents() []reflect.Type {
	return s.required
}

// FilterEntities returns the entities a system should process this tick: all
// active entities when the system declares no required components, otherwise
// the active entities owning every required type.
func FilterEntities(s System, em *EntityManager) []*Entity {
	required := s.RequiredComponents()
	if len(required) == 0 {
		return em.ActiveEntities()
	}
	return em.EntitiesWithAll(required...)
}
