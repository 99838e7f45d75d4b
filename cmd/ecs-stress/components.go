package main

import (
	"math/rand"

	"github.com/plus3/weft/ecs"
)

// Synthetic component payloads for the stress run.

type Position struct {
	X, Y float64
}

func (p *Position) Validate() bool { return true }

type Velocity struct {
	DX, DY float64
}

func (v *Velocity) Validate() bool { return true }

type Health struct {
	Current, Max int
}

func (h *Health) Validate() bool { return h.Max > 0 && h.Current <= h.Max }

type Lifetime struct {
	Remaining float64
}

func (l *Lifetime) Validate() bool { return l.Remaining >= 0 }

var (
	positionType = ecs.ComponentTypeOf[Position]()
	velocityType = ecs.ComponentTypeOf[Velocity]()
	healthType   = ecs.ComponentTypeOf[Health]()
	lifetimeType = ecs.ComponentTypeOf[Lifetime]()
)

// spawnRandomEntity creates an entity with a Position plus a random subset of
// the remaining component kinds.
func spawnRandomEntity(em *ecs.EntityManager, rng *rand.Rand) error {
	entity := em.CreateEntity()
	if err := em.AddComponent(entity, &Position{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}); err != nil {
		return err
	}
	if rng.Intn(2) == 0 {
		if err := em.AddComponent(entity, &Velocity{DX: rng.Float64()*10 - 5, DY: rng.Float64()*10 - 5}); err != nil {
			return err
		}
	}
	if rng.Intn(2) == 0 {
		if err := em.AddComponent(entity, &Health{Current: 100, Max: 100}); err != nil {
			return err
		}
	}
	if rng.Intn(4) == 0 {
		if err := em.AddComponent(entity, &Lifetime{Remaining: rng.Float64() * 30}); err != nil {
			return err
		}
	}
	return nil
}

// MovementSystem integrates positions from velocities.
type MovementSystem struct {
	ecs.BaseSystem
}

func NewMovementSystem() *MovementSystem {
	return &MovementSystem{
		BaseSystem: ecs.NewBaseSystem(10, positionType, velocityType),
	}
}

func (s *MovementSystem) Update(em *ecs.EntityManager, dt float64) error {
	for _, entity := range ecs.FilterEntities(s, em) {
		pos, _ := ecs.GetComponentAs[*Position](em, entity)
		vel, _ := ecs.GetComponentAs[*Velocity](em, entity)
		pos.X += vel.DX * dt
		pos.Y += vel.DY * dt
	}
	return nil
}

// DecaySystem drains health over time and deactivates dead entities.
type DecaySystem struct {
	ecs.BaseSystem
	rng *rand.Rand
}

func NewDecaySystem(rng *rand.Rand) *DecaySystem {
	return &DecaySystem{
		BaseSystem: ecs.NewBaseSystem(20, healthType),
		rng:        rng,
	}
}

func (s *DecaySystem) Update(em *ecs.EntityManager, dt float64) error {
	for _, entity := range ecs.FilterEntities(s, em) {
		health, _ := ecs.GetComponentAs[*Health](em, entity)
		if s.rng.Intn(100) == 0 {
			health.Current--
		}
		if health.Current <= 0 {
			entity.Deactivate()
		}
	}
	return nil
}

// LifetimeSystem destroys entities whose lifetime has run out, exercising
// destroy-during-tick and slot recycling.
type LifetimeSystem struct {
	ecs.BaseSystem
}

func NewLifetimeSystem() *LifetimeSystem {
	return &LifetimeSystem{
		BaseSystem: ecs.NewBaseSystem(30, lifetimeType),
	}
}

func (s *LifetimeSystem) Update(em *ecs.EntityManager, dt float64) error {
	for _, entity := range ecs.FilterEntities(s, em) {
		life, _ := ecs.GetComponentAs[*Lifetime](em, entity)
		life.Remaining -= dt
		if life.Remaining <= 0 {
			em.DestroyEntity(entity)
		}
	}
	return nil
}

// ChurnSystem spawns replacement entities to keep the population stable.
type ChurnSystem struct {
	ecs.BaseSystem
	rng    *rand.Rand
	target int
}

func NewChurnSystem(rng *rand.Rand, target int) *ChurnSystem {
	return &ChurnSystem{
		BaseSystem: ecs.NewBaseSystem(40),
		rng:        rng,
		target:     target,
	}
}

func (s *ChurnSystem) Update(em *ecs.EntityManager, dt float64) error {
	for em.ActiveEntityCount() < s.target {
		if err := spawnRandomEntity(em, s.rng); err != nil {
			return err
		}
	}
	return nil
}
