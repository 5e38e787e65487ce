package automation

import (
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

// State is a named point in a device's behaviour space.
type State struct {
	// Name is the unique key within a catalog (e.g. "on").
	Name string `json:"name"`

	// Label is the display label.
	Label resource.Key `json:"label"`

	// ReadOnly states are observed only and cannot be commanded.
	ReadOnly bool `json:"read_only"`

	// Action is the UI action label. Empty for read-only states.
	Action resource.Key `json:"action,omitempty"`

	// IsSignaled is the level driven onto the port when this state is
	// commanded. Meaningless for read-only states.
	IsSignaled bool `json:"is_signaled"`
}

// BuildReadOnlyState returns an observed-only state.
func BuildReadOnlyState(name string, label resource.Key) State {
	return State{Name: name, Label: label, ReadOnly: true}
}

// BuildControlState returns a commandable state that drives isSignaled onto the port.
func BuildControlState(name string, label, action resource.Key, isSignaled bool) State {
	return State{Name: name, Label: label, Action: action, IsSignaled: isSignaled}
}

// Controllable reports whether the state accepts direct commands.
func (s State) Controllable() bool { return !s.ReadOnly }

// Catalog is an immutable, ordered set of states for a device class.
type Catalog struct {
	states []State
	index  map[string]int
}

type catalogOptions struct {
	sharedSignals bool
}

// CatalogOption configures NewCatalog.
type CatalogOption func(*catalogOptions)

// WithSharedSignals allows several controllable states to drive the same
// level, for devices that accept more than one gesture for one outcome.
func WithSharedSignals() CatalogOption {
	return func(o *catalogOptions) { o.sharedSignals = true }
}

// NewCatalog builds a catalog from states in declaration order.
//
// Returns:
//   - ErrEmptyCatalog if states is empty
//   - ErrInvalidState if a state has no name
//   - ErrDuplicateState if two states share a name
//   - ErrDuplicateSignal if two controllable states drive the same level
//     and WithSharedSignals was not given
func NewCatalog(states []State, opts ...CatalogOption) (*Catalog, error) {
	var o catalogOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(states) == 0 {
		return nil, ErrEmptyCatalog
	}

	c := &Catalog{
		states: make([]State, len(states)),
		index:  make(map[string]int, len(states)),
	}
	signals := make(map[bool]string, 2)

	for i, s := range states {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: state %d has no name", ErrInvalidState, i)
		}
		if _, dup := c.index[s.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateState, s.Name)
		}
		if s.Controllable() && !o.sharedSignals {
			if other, dup := signals[s.IsSignaled]; dup {
				return nil, fmt.Errorf("%w: %q and %q both drive %t", ErrDuplicateSignal, other, s.Name, s.IsSignaled)
			}
			signals[s.IsSignaled] = s.Name
		}
		c.states[i] = s
		c.index[s.Name] = i
	}
	return c, nil
}

// Len returns the number of states.
func (c *Catalog) Len() int { return len(c.states) }

// States returns a copy of the states in declaration order.
func (c *Catalog) States() []State {
	out := make([]State, len(c.states))
	copy(out, c.states)
	return out
}

// Names returns state names in declaration order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.states))
	for i, s := range c.states {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the state named name.
func (c *Catalog) Lookup(name string) (State, bool) {
	i, ok := c.index[name]
	if !ok {
		return State{}, false
	}
	return c.states[i], true
}

// Initial returns the state a new unit starts in: the first read-only state,
// or the first state when every state is controllable.
func (c *Catalog) Initial() State {
	for _, s := range c.states {
		if s.ReadOnly {
			return s
		}
	}
	return c.states[0]
}

// ForSignal returns the first controllable state that drives level.
func (c *Catalog) ForSignal(level bool) (State, bool) {
	for _, s := range c.states {
		if s.Controllable() && s.IsSignaled == level {
			return s, true
		}
	}
	return State{}, false
}

// Equal reports whether two catalogs hold the same states in the same order.
func (c *Catalog) Equal(other *Catalog) bool {
	if c == nil || other == nil {
		return c == other
	}
	if len(c.states) != len(other.states) {
		return false
	}
	for i := range c.states {
		if c.states[i] != other.states[i] {
			return false
		}
	}
	return true
}
