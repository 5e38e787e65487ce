package onoff

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
)

type captureBus struct {
	mu     sync.Mutex
	events []automation.Event
}

func (b *captureBus) Publish(_ context.Context, ev automation.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func testPool(t *testing.T) *hardware.Pool {
	t.Helper()
	pool := hardware.NewPool()
	for _, p := range []hardware.Port{
		hardware.NewMemoryPort("relay-1"),
		hardware.NewMemoryPort("relay-3"),
		hardware.NewMemoryPort("input-1", hardware.CapDigitalInput),
	} {
		if err := pool.Register(p); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}
	return pool
}

func instance(fields configurable.Fields) *configurable.Instance {
	return &configurable.Instance{ID: "inst-1", Class: Class, Fields: fields}
}

func TestBuildAutomationUnit_PorchLight(t *testing.T) {
	bus := &captureBus{}
	c := New(testPool(t), bus)

	unit, err := c.BuildAutomationUnit(instance(configurable.Fields{"name": "Porch Light", "portId": "relay-3"}))
	if err != nil {
		t.Fatalf("BuildAutomationUnit() error = %v", err)
	}
	if unit.PortID() != "relay-3" {
		t.Errorf("PortID() = %q, want relay-3", unit.PortID())
	}
	if unit.AutomationOnly() {
		t.Error("AutomationOnly() = true, want default false")
	}
	if unit.Name() != "Porch Light" || unit.ID() != "inst-1" || unit.Class() != Class {
		t.Errorf("unit = %+v", unit.Status())
	}
	if unit.State().Name != StateInit {
		t.Errorf("State() = %q, want init", unit.State().Name)
	}

	// The unit is wired to the bus it was built with.
	if err := unit.ChangeState(context.Background(), StateOn, automation.SourceManual); err != nil {
		t.Fatalf("ChangeState() error = %v", err)
	}
	if len(bus.events) != 1 || bus.events[0].InstanceID != "inst-1" {
		t.Errorf("bus events = %+v", bus.events)
	}
}

func TestBuildAutomationUnit_Failures(t *testing.T) {
	tests := []struct {
		name      string
		fields    configurable.Fields
		wantErr   error
		wantField string
	}{
		{
			name:      "empty port",
			fields:    configurable.Fields{"name": "Porch Light", "portId": ""},
			wantErr:   configurable.ErrValidation,
			wantField: FieldPort,
		},
		{
			name:      "missing port",
			fields:    configurable.Fields{"name": "Porch Light"},
			wantErr:   configurable.ErrValidation,
			wantField: FieldPort,
		},
		{
			name:    "port not in pool",
			fields:  configurable.Fields{"name": "Pump", "portId": "relay-9", "automationOnly": "true"},
			wantErr: hardware.ErrPortNotFound,
		},
		{
			name:    "input-only port",
			fields:  configurable.Fields{"name": "Pump", "portId": "input-1"},
			wantErr: hardware.ErrPortCapabilityMismatch,
		},
		{
			name:    "name omitted",
			fields:  configurable.Fields{"portId": "relay-1"},
			wantErr: configurable.ErrMissingField,
		},
		{
			name:    "name blank",
			fields:  configurable.Fields{"name": "  ", "portId": "relay-1"},
			wantErr: configurable.ErrMissingField,
		},
		{
			name:      "malformed automationOnly",
			fields:    configurable.Fields{"name": "Pump", "portId": "relay-1", "automationOnly": "sometimes"},
			wantErr:   configurable.ErrValidation,
			wantField: FieldAutomationOnly,
		},
		{
			// Port validation comes before the name check.
			name:      "everything missing",
			fields:    configurable.Fields{},
			wantErr:   configurable.ErrValidation,
			wantField: FieldPort,
		},
	}

	c := New(testPool(t), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit, err := c.BuildAutomationUnit(instance(tt.fields))
			if unit != nil {
				t.Error("BuildAutomationUnit() returned a unit alongside an error")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("BuildAutomationUnit() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantField != "" {
				var verr *configurable.ValidationError
				if !errors.As(err, &verr) || verr.Field != tt.wantField {
					t.Errorf("ValidationError field = %v, want %q", err, tt.wantField)
				}
			}
		})
	}
}

func TestBuildAutomationUnit_PortNotFoundCarriesID(t *testing.T) {
	c := New(testPool(t), nil)
	_, err := c.BuildAutomationUnit(instance(configurable.Fields{"name": "Pump", "portId": "relay-9"}))

	var notFound *hardware.PortNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T, want *hardware.PortNotFoundError", err)
	}
	if notFound.PortID != "relay-9" || notFound.Capability != hardware.CapRelayOutput {
		t.Errorf("PortNotFoundError = %+v", notFound)
	}
}

func TestBuildAutomationUnit_AutomationOnly(t *testing.T) {
	c := New(testPool(t), nil)
	unit, err := c.BuildAutomationUnit(instance(configurable.Fields{
		"name": "Pump", "portId": "relay-1", "automationOnly": "TRUE",
	}))
	if err != nil {
		t.Fatalf("BuildAutomationUnit() error = %v", err)
	}
	if !unit.AutomationOnly() {
		t.Error("AutomationOnly() = false, want true")
	}
	if err := unit.ChangeState(context.Background(), StateOn, automation.SourceManual); !errors.Is(err, automation.ErrAutomationOnly) {
		t.Errorf("manual ChangeState() error = %v, want ErrAutomationOnly", err)
	}
}

func TestBuildAutomationUnit_NilInstanceAndPorts(t *testing.T) {
	if _, err := New(testPool(t), nil).BuildAutomationUnit(nil); err == nil {
		t.Error("BuildAutomationUnit(nil) error = nil")
	}

	c := New(nil, nil)
	_, err := c.BuildAutomationUnit(instance(configurable.Fields{"name": "x", "portId": "relay-1"}))
	if !errors.Is(err, hardware.ErrPortNotFound) {
		t.Errorf("BuildAutomationUnit() without ports error = %v, want ErrPortNotFound", err)
	}
}

func TestBuildAutomationUnit_SharedPort(t *testing.T) {
	c := New(testPool(t), nil)
	a, errA := c.BuildAutomationUnit(&configurable.Instance{ID: "a", Fields: configurable.Fields{"name": "A", "portId": "relay-1"}})
	b, errB := c.BuildAutomationUnit(&configurable.Instance{ID: "b", Fields: configurable.Fields{"name": "B", "portId": "relay-1"}})
	if errA != nil || errB != nil {
		t.Fatalf("BuildAutomationUnit() errors = %v, %v", errA, errB)
	}
	if a.PortID() != b.PortID() {
		t.Error("instances configured against one port resolved differently")
	}
}

func TestBuildAutomationUnit_Concurrent(t *testing.T) {
	c := New(testPool(t), nil)
	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.BuildAutomationUnit(instance(configurable.Fields{"name": "Porch Light", "portId": "relay-3"}))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("concurrent build error = %v", err)
		}
	}
}
