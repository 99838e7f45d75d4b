package ecs

import (
	"fmt"
	"reflect"
)

// Component is the data-record contract. Components hold state for one facet
// of an entity and no behavior; behavior belongs in systems.
//
// Validate is checked when the component is attached to an entity; returning
// false rejects the add without side effects.
//
// Copy, Serialize, and Deserialize have reflection-based defaults (see
// CopyComponent, SerializeComponent, DeserializeComponent). A component type
// can override them by implementing the Copier, Serializer, or Deserializer
// interfaces.
type Component interface {
	Validate() bool
}

// Copier overrides the default shallow-copy behavior.
type Copier interface {
	Copy() Component
}

// Serializer overrides the default field-map serialization.
type Serializer interface {
	Serialize() map[string]any
}

// Deserializer overrides the default field-map population.
type Deserializer interface {
	Deserialize(data map[string]any) error
}

// componentType returns the concrete struct type of a component, dereferencing
// a pointer component.
func componentType(c Component) reflect.Type {
	t := reflect.TypeOf(c)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// ComponentTypeOf returns the registry key type for component type T.
func ComponentTypeOf[T any]() reflect.Type {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// CopyComponent returns a shallow copy of the component. Nested mutable
// structures (slices, maps, pointers) are aliased, not deep-copied. Pointer
// components copy the pointed-to struct; value components are already copies.
func CopyComponent(c Component) Component {
	if cp, ok := c.(Copier); ok {
		return cp.Copy()
	}

	v := reflect.ValueOf(c)
	if v.Kind() != reflect.Ptr {
		return c
	}

	out := reflect.New(v.Elem().Type())
	out.Elem().Set(v.Elem())
	return out.Interface().(Component)
}

// SerializeComponent returns a field-name to value mapping of the component's
// exported fields. Round-tripping through DeserializeComponent reproduces
// equal field values.
func SerializeComponent(c Component) map[string]any {
	if s, ok := c.(Serializer); ok {
		return s.Serialize()
	}

	v := reflect.ValueOf(c)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	data := make(map[string]any, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		data[field.Name] = v.Field(i).Interface()
	}
	return data
}

// DeserializeComponent creates a component of type T from a field map. T must
// be a pointer-to-struct component type. Unknown field names are an error.
func DeserializeComponent[T Component](data map[string]any) (T, error) {
	var zero T

	t := reflect.TypeFor[T]()
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return zero, fmt.Errorf("deserialize: %s is not a pointer-to-struct component", t)
	}

	ptr := reflect.New(t.Elem())
	comp := ptr.Interface().(T)

	if d, ok := any(comp).(Deserializer); ok {
		if err := d.Deserialize(data); err != nil {
			return zero, err
		}
		return comp, nil
	}

	if err := populateFields(ptr.Elem(), data); err != nil {
		return zero, err
	}
	return comp, nil
}

func populateFields(v reflect.Value, data map[string]any) error {
	for name, value := range data {
		field := v.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			return fmt.Errorf("deserialize %s: no such field %q", v.Type(), name)
		}
		if value == nil {
			field.Set(reflect.Zero(field.Type()))
			continue
		}

		rv := reflect.ValueOf(value)
		switch {
		case rv.Type().AssignableTo(field.Type()):
			field.Set(rv)
		case rv.Type().ConvertibleTo(field.Type()):
			field.Set(rv.Convert(field.Type()))
		default:
			return fmt.Errorf("deserialize %s: field %q cannot hold %T", v.Type(), name, value)
		}
	}
	return nil
}

// ComponentCodec revives serialized components by type name, so externally
// stored component data can be deserialized without compile-time type
// knowledge. Each ECS instance can carry its own codec.
type ComponentCodec struct {
	types map[string]reflect.Type
}

// NewComponentCodec creates an empty codec.
func NewComponentCodec() *ComponentCodec {
	return &ComponentCodec{
		types: make(map[string]reflect.Type),
	}
}

// RegisterComponent registers component type T with the codec under its
// package-qualified type name. T must be a struct type whose pointer
// implements Component.
func RegisterComponent[T any](c *ComponentCodec) {
	t := reflect.TypeFor[T]()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		panic("component type " + t.String() + " is not a struct")
	}
	if _, ok := reflect.New(t).Interface().(Component); !ok {
		panic("*" + t.String() + " does not implement Component")
	}
	c.types[t.String()] = t
}

// Deserialize creates a component of the named registered type from a field
// map.
func (c *ComponentCodec) Deserialize(name string, data map[string]any) (Component, error) {
	t, ok := c.types[name]
	if !ok {
		return nil, fmt.Errorf("codec: component type %q not registered", name)
	}

	ptr := reflect.New(t)
	comp := ptr.Interface().(Component)

	if d, ok := comp.(Deserializer); ok {
		if err := d.Deserialize(data); err != nil {
			return nil, err
		}
		return comp, nil
	}

	if err := populateFields(ptr.Elem(), data); err != nil {
		return nil, err
	}
	return comp, nil
}

// Registered reports whether the named type is known to the codec.
func (c *ComponentCodec) Registered(name string) bool {
	_, ok := c.types[name]
	return ok
}

// ComponentName returns the codec key for a component instance.
func ComponentName(c Component) string {
	return componentType(c).String()
}
