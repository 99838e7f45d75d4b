package ecs_test

import "github.com/plus3/weft/ecs"

// Common test component types

type Position struct {
	X, Y float64
}

func (p *Position) Validate() bool { return true }

type Velocity struct {
	DX, DY float64
}

func (v *Velocity) Validate() bool { return true }

type Health struct {
	Current int
	Max     int
}

func (h *Health) Validate() bool {
	return h.Max > 0 && h.Current >= 0 && h.Current <= h.Max
}

type Name struct {
	Value string
}

func (n *Name) Validate() bool { return n.Value != "" }

// Inventory carries a mutable slice to exercise shallow-copy aliasing.
type Inventory struct {
	Items []string
}

func (i *Inventory) Validate() bool { return true }

var (
	positionType  = ecs.ComponentTypeOf[Position]()
	velocityType  = ecs.ComponentTypeOf[Velocity]()
	healthType    = ecs.ComponentTypeOf[Health]()
	nameType      = ecs.ComponentTypeOf[Name]()
	inventoryType = ecs.ComponentTypeOf[Inventory]()
)
