package configurable

import (
	"fmt"
	"sort"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Deps are the collaborators a device class needs to build units.
type Deps struct {
	Ports  hardware.PortFinder
	Bus    automation.EventBus
	Logger automation.Logger
}

// Factory produces a descriptor bound to deps.
type Factory func(deps Deps) Descriptor

// Catalog is the set of device classes available to a host process.
// It is immutable after construction.
type Catalog struct {
	classes map[string]Descriptor
	schemas map[string]*jsonschema.Schema
	order   []string
}

// NewCatalog calls each factory with deps and indexes the result by class.
//
// Each class's payload schema is compiled up front. Returns
// ErrDuplicateClass when two factories produce the same class and
// ErrInvalidDescriptor when a descriptor declares unusable fields.
func NewCatalog(deps Deps, factories ...Factory) (*Catalog, error) {
	c := &Catalog{
		classes: make(map[string]Descriptor, len(factories)),
		schemas: make(map[string]*jsonschema.Schema, len(factories)),
	}
	for _, factory := range factories {
		d := factory(deps)
		if err := checkDescriptor(d); err != nil {
			return nil, err
		}
		if _, dup := c.classes[d.Class()]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateClass, d.Class())
		}
		schema, err := compileSchema(d)
		if err != nil {
			return nil, err
		}
		c.classes[d.Class()] = d
		c.schemas[d.Class()] = schema
		c.order = append(c.order, d.Class())
	}
	sort.Strings(c.order)
	return c, nil
}

// Get returns the descriptor for class, or ErrUnknownClass.
func (c *Catalog) Get(class string) (Descriptor, error) {
	d, ok := c.classes[class]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}
	return d, nil
}

// List returns all descriptors sorted by class name.
func (c *Catalog) List() []Descriptor {
	out := make([]Descriptor, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.classes[name])
	}
	return out
}

// Categories returns the distinct parent categories sorted by name.
func (c *Catalog) Categories() []Category {
	seen := make(map[string]bool)
	var out []Category
	for _, d := range c.List() {
		p := d.Metadata().Parent
		if p.Name == "" || seen[p.Name] {
			continue
		}
		seen[p.Name] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
