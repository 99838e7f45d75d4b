package ecs

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"
)

// SystemStats provides execution statistics for a single registered system.
// Stats persist across enable/disable and reset only when the system is
// unregistered or ResetExecutionStats is called.
type SystemStats struct {
	TotalTime  time.Duration
	CallCount  int64
	AvgTime    time.Duration
	MaxTime    time.Duration
	ErrorCount int64
	LastError  string
}

type registration struct {
	name   string
	system System
	// monotonic counter assigned at registration, the stable-sort
	// tie-break for equal priorities
	order uint64
}

// Orchestrator owns registered systems and drives their per-tick execution in
// priority order with per-system failure isolation.
//
// Execution order is deterministic: systems run sorted by (priority
// ascending, registration order ascending) via a stable sort, never by map
// iteration order. The sorted list is rebuilt lazily when registration or
// priorities change.
//
// A failing Update (returned error or panic) is recorded in the system's
// stats and logged when a logger is attached; it never halts the tick or
// blocks later systems. The sole exception is Initialize at registration
// time, which is transactional: on failure the registration is rolled back
// and the error returned to the composer.
type Orchestrator struct {
	systems    map[string]*registration
	names      []string // registration order
	priorities map[int][]string
	sorted     []*registration
	dirty      bool
	nextOrder  uint64
	stats      map[string]*SystemStats
	groups     map[string]map[string]struct{}
	logger     *log.Logger
	bus        *EventBus
}

// NewOrchestrator creates an orchestrator with no systems registered.
func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		systems:    make(map[string]*registration),
		priorities: make(map[int][]string),
		stats:      make(map[string]*SystemStats),
		groups:     make(map[string]map[string]struct{}),
	}
}

// SetLogger attaches a logger for recording isolated system failures. Without
// one, failures are still counted in the stats but not logged.
func (o *Orchestrator) SetLogger(logger *log.Logger) {
	o.logger = logger
}

// AttachEventBus wires an event bus that UpdateSystems drains at the start of
// every tick, before the first system runs.
func (o *Orchestrator) AttachEventBus(bus *EventBus) {
	o.bus = bus
}

// RegisterSystem registers a system under a unique name and initializes it.
// Fails with ErrDuplicateSystem if the name is taken. If Initialize returns
// an error or panics, the registration is rolled back entirely and the error
// returned: the system is never left half-registered.
func (o *Orchestrator) RegisterSystem(name string, system System) error {
	if _, exists := o.systems[name]; exists {
		return fmt.Errorf("register %q: %w", name, ErrDuplicateSystem)
	}

	reg := &registration{name: name, system: system, order: o.nextOrder}
	o.nextOrder++

	o.systems[name] = reg
	o.names = append(o.names, name)
	priority := system.Priority()
	o.priorities[priority] = append(o.priorities[priority], name)

	if err := initializeSystem(system); err != nil {
		o.removeIndices(name, priority)
		return fmt.Errorf("initialize %q: %w", name, err)
	}

	o.stats[name] = &SystemStats{}
	o.invalidateSort()
	return nil
}

// UnregisterSystem removes a system and calls its Cleanup. A Cleanup panic is
// swallowed so one failing teardown cannot block others. Unknown names return
// nil, not an error.
func (o *Orchestrator) UnregisterSystem(name string) System {
	reg, exists := o.systems[name]
	if !exists {
		return nil
	}

	o.removeIndices(name, reg.system.Priority())
	delete(o.stats, name)
	for _, members := range o.groups {
		delete(members, name)
	}

	cleanupSystem(reg.system)
	o.invalidateSort()
	return reg.system
}

func (o *Orchestrator) removeIndices(name string, priority int) {
	delete(o.systems, name)
	for i, n := range o.names {
		if n == name {
			o.names = append(o.names[:i], o.names[i+1:]...)
			break
		}
	}
	o.removePriorityEntry(name, priority)
}

func (o *Orchestrator) removePriorityEntry(name string, priority int) {
	bucket := o.priorities[priority]
	for i, n := range bucket {
		if n == name {
			o.priorities[priority] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(o.priorities[priority]) == 0 {
		delete(o.priorities, priority)
	}
}

func (o *Orchestrator) invalidateSort() {
	o.sorted = nil
	o.dirty = true
}

func (o *Orchestrator) sortSystems() {
	sorted := make([]*registration, 0, len(o.names))
	for _, name := range o.names {
		sorted = append(sorted, o.systems[name])
	}
	// names is already in registration order, so a stable sort on priority
	// alone preserves the registration-order tie-break
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].system.Priority() < sorted[j].system.Priority()
	})
	o.sorted = sorted
	o.dirty = false
}

// UpdateSystems runs one tick: drains the attached event bus, then executes
// every enabled system in sorted order. Each system's Update is isolated; an
// error or panic is recorded and the tick continues with the next system.
// deltaTime is the elapsed simulation time in seconds.
func (o *Orchestrator) UpdateSystems(em *EntityManager, deltaTime float64) {
	if o.bus != nil {
		o.bus.Drain()
	}
	if o.dirty || o.sorted == nil {
		o.sortSystems()
	}

	for _, reg := range o.sorted {
		if !reg.system.Enabled() {
			continue
		}

		start := time.Now()
		err := runSystem(reg.system, em, deltaTime)
		elapsed := time.Since(start)

		stats := o.stats[reg.name]
		stats.TotalTime += elapsed
		stats.CallCount++
		stats.AvgTime = stats.TotalTime / time.Duration(stats.CallCount)
		if elapsed > stats.MaxTime {
			stats.MaxTime = elapsed
		}
		if err != nil {
			stats.ErrorCount++
			stats.LastError = err.Error()
			if o.logger != nil {
				o.logger.Printf("system %q failed: %v", reg.name, err)
			}
		}
	}
}

// Run drives UpdateSystems at the given interval until the context is
// cancelled, computing deltaTime from wall-clock elapsed time.
func (o *Orchestrator) Run(ctx context.Context, em *EntityManager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			o.UpdateSystems(em, dt)
		}
	}
}

// GetSystem returns the registered system, or nil for an unknown name.
func (o *Orchestrator) GetSystem(name string) System {
	if reg, exists := o.systems[name]; exists {
		return reg.system
	}
	return nil
}

// HasSystem reports whether a system is registered under the name.
func (o *Orchestrator) HasSystem(name string) bool {
	_, exists := o.systems[name]
	return exists
}

// SetSystemPriority changes a system's priority and re-buckets it. Returns
// false for an unknown name.
func (o *Orchestrator) SetSystemPriority(name string, priority int) bool {
	reg, exists := o.systems[name]
	if !exists {
		return false
	}
	o.removePriorityEntry(name, reg.system.Priority())
	reg.system.SetPriority(priority)
	o.priorities[priority] = append(o.priorities[priority], name)
	o.invalidateSort()
	return true
}

// EnableSystem enables a system without affecting its registration. Returns
// false for an unknown name.
func (o *Orchestrator) EnableSystem(name string) bool {
	reg, exists := o.systems[name]
	if !exists {
		return false
	}
	reg.system.Enable()
	return true
}

// DisableSystem disables a system without affecting its registration. Its
// stats are retained. Returns false for an unknown name.
func (o *Orchestrator) DisableSystem(name string) bool {
	reg, exists := o.systems[name]
	if !exists {
		return false
	}
	reg.system.Disable()
	return true
}

// CreateSystemGroup creates a named group for batch enable/disable. Atomic:
// if any listed name is unregistered the group is not created and
// ErrUnknownSystem is returned.
func (o *Orchestrator) CreateSystemGroup(group string, names ...string) error {
	for _, name := range names {
		if _, exists := o.systems[name]; !exists {
			return fmt.Errorf("group %q: system %q: %w", group, name, ErrUnknownSystem)
		}
	}
	members := make(map[string]struct{}, len(names))
	for _, name := range names {
		members[name] = struct{}{}
	}
	o.groups[group] = members
	return nil
}

// EnableSystemGroup enables every system in the group. Returns false for an
// unknown group.
func (o *Orchestrator) EnableSystemGroup(group string) bool {
	members, exists := o.groups[group]
	if !exists {
		return false
	}
	for name := range members {
		o.EnableSystem(name)
	}
	return true
}

// DisableSystemGroup disables every system in the group. Returns false for an
// unknown group.
func (o *Orchestrator) DisableSystemGroup(group string) bool {
	members, exists := o.groups[group]
	if !exists {
		return false
	}
	for name := range members {
		o.DisableSystem(name)
	}
	return true
}

// SystemNames returns all registered names in registration order.
func (o *Orchestrator) SystemNames() []string {
	names := make([]string, len(o.names))
	copy(names, o.names)
	return names
}

// EnabledSystemNames returns the names of enabled systems in registration
// order.
func (o *Orchestrator) EnabledSystemNames() []string {
	var names []string
	for _, name := range o.names {
		if o.systems[name].system.Enabled() {
			names = append(names, name)
		}
	}
	return names
}

// ExecutionStats returns a copy of the per-system execution statistics.
func (o *Orchestrator) ExecutionStats() map[string]SystemStats {
	stats := make(map[string]SystemStats, len(o.stats))
	for name, s := range o.stats {
		stats[name] = *s
	}
	return stats
}

// ResetExecutionStats zeroes the statistics of every registered system.
func (o *Orchestrator) ResetExecutionStats() {
	for name := range o.stats {
		o.stats[name] = &SystemStats{}
	}
}

// ClearAllSystems unregisters and cleans up every system.
func (o *Orchestrator) ClearAllSystems() {
	names := o.SystemNames()
	for _, name := range names {
		o.UnregisterSystem(name)
	}
	o.groups = make(map[string]map[string]struct{})
}

// Len returns the number of registered systems.
func (o *Orchestrator) Len() int {
	return len(o.systems)
}

func (o *Orchestrator) String() string {
	return fmt.Sprintf("Orchestrator(%d/%d enabled systems)",
		len(o.EnabledSystemNames()), len(o.systems))
}

// runSystem invokes Update with panic containment, converting a panic into a
// recorded-but-non-fatal error.
func runSystem(s System, em *EntityManager, deltaTime float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Update(em, deltaTime)
}

func initializeSystem(s System) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Initialize()
}

// cleanupSystem swallows Cleanup panics; teardown is best-effort.
func cleanupSystem(s System) {
	defer func() {
		_ = recover()
	}()
	s.Cleanup()
}
