package automation

import (
	"errors"
	"testing"

	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

func onOffStates() []State {
	return []State{
		BuildReadOnlyState("init", resource.StateUnknown),
		BuildControlState("on", resource.StateOn, resource.ActionOn, true),
		BuildControlState("off", resource.StateOff, resource.ActionOff, false),
	}
}

func TestBuildStates(t *testing.T) {
	ro := BuildReadOnlyState("init", resource.StateUnknown)
	if !ro.ReadOnly || ro.Controllable() || ro.Action != "" {
		t.Errorf("BuildReadOnlyState() = %+v", ro)
	}

	on := BuildControlState("on", resource.StateOn, resource.ActionOn, true)
	if on.ReadOnly || !on.Controllable() || !on.IsSignaled || on.Action != resource.ActionOn {
		t.Errorf("BuildControlState() = %+v", on)
	}
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(onOffStates())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	names := c.Names()
	if names[0] != "init" || names[1] != "on" || names[2] != "off" {
		t.Errorf("Names() = %v, want declaration order", names)
	}
	if got := c.Initial(); got.Name != "init" {
		t.Errorf("Initial() = %q, want init", got.Name)
	}
	if s, ok := c.ForSignal(false); !ok || s.Name != "off" {
		t.Errorf("ForSignal(false) = %q, %v", s.Name, ok)
	}
	if _, ok := c.Lookup("dim"); ok {
		t.Error("Lookup(dim) found a state")
	}
}

func TestNewCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		states  []State
		opts    []CatalogOption
		wantErr error
	}{
		{name: "empty", states: nil, wantErr: ErrEmptyCatalog},
		{
			name:    "unnamed state",
			states:  []State{BuildReadOnlyState("", resource.StateUnknown)},
			wantErr: ErrInvalidState,
		},
		{
			name: "duplicate name",
			states: []State{
				BuildControlState("on", resource.StateOn, resource.ActionOn, true),
				BuildReadOnlyState("on", resource.StateUnknown),
			},
			wantErr: ErrDuplicateState,
		},
		{
			name: "duplicate signal",
			states: []State{
				BuildControlState("on", resource.StateOn, resource.ActionOn, true),
				BuildControlState("boost", resource.StateOn, resource.ActionOn, true),
			},
			wantErr: ErrDuplicateSignal,
		},
		{
			name: "shared signal allowed",
			states: []State{
				BuildControlState("on", resource.StateOn, resource.ActionOn, true),
				BuildControlState("boost", resource.StateOn, resource.ActionOn, true),
			},
			opts: []CatalogOption{WithSharedSignals()},
		},
		{
			name: "read-only states never clash on signal",
			states: []State{
				BuildReadOnlyState("init", resource.StateUnknown),
				BuildReadOnlyState("fault", resource.StateUnknown),
				BuildControlState("off", resource.StateOff, resource.ActionOff, false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog(tt.states, tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("NewCatalog() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewCatalog() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCatalog_StatesIsACopy(t *testing.T) {
	c, _ := NewCatalog(onOffStates())
	states := c.States()
	states[1].IsSignaled = false
	states[1].Name = "mutated"

	if s, ok := c.Lookup("on"); !ok || !s.IsSignaled {
		t.Error("mutating States() result changed the catalog")
	}
}

func TestCatalog_InitialWithoutReadOnly(t *testing.T) {
	c, _ := NewCatalog([]State{
		BuildControlState("off", resource.StateOff, resource.ActionOff, false),
		BuildControlState("on", resource.StateOn, resource.ActionOn, true),
	})
	if got := c.Initial(); got.Name != "off" {
		t.Errorf("Initial() = %q, want first state", got.Name)
	}
}

func TestCatalog_Equal(t *testing.T) {
	a, _ := NewCatalog(onOffStates())
	b, _ := NewCatalog(onOffStates())
	if !a.Equal(b) {
		t.Error("catalogs built from the same states are not Equal")
	}
	c, _ := NewCatalog(onOffStates()[1:])
	if a.Equal(c) {
		t.Error("catalogs of different length reported Equal")
	}
	var nilCatalog *Catalog
	if a.Equal(nilCatalog) {
		t.Error("catalog Equal(nil) = true")
	}
}
