package automation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-onoff/internal/hardware"
	"github.com/nerrad567/gray-logic-onoff/internal/infrastructure/mqtt"
)

type recordingBus struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (b *recordingBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return b.err
}

func (b *recordingBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

func newTestUnit(t *testing.T, automationOnly bool) (*Unit, *hardware.MemoryPort, *recordingBus) {
	t.Helper()
	catalog, err := NewCatalog(onOffStates())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	port := hardware.NewMemoryPort("relay-3")
	bus := &recordingBus{}
	u, err := NewUnit(bus, Identity{ID: "inst-1", Class: "onoff"}, "Porch Light", catalog, port, automationOnly)
	if err != nil {
		t.Fatalf("NewUnit() error = %v", err)
	}
	return u, port, bus
}

func TestNewUnit(t *testing.T) {
	u, _, _ := newTestUnit(t, false)

	st := u.Status()
	if st.State != "init" || !st.ReadOnly {
		t.Errorf("initial state = %q (read-only %v), want init", st.State, st.ReadOnly)
	}
	if st.PortID != "relay-3" || st.Name != "Porch Light" || st.Class != "onoff" || st.AutomationOnly {
		t.Errorf("Status() = %+v", st)
	}
}

func TestNewUnit_Invalid(t *testing.T) {
	catalog, _ := NewCatalog(onOffStates())
	port := hardware.NewMemoryPort("relay-1")

	tests := []struct {
		name    string
		id      Identity
		catalog *Catalog
		port    hardware.OutputPort
	}{
		{name: "no id", id: Identity{}, catalog: catalog, port: port},
		{name: "no catalog", id: Identity{ID: "x"}, port: port},
		{name: "no port", id: Identity{ID: "x"}, catalog: catalog},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := NewUnit(nil, tt.id, "n", tt.catalog, tt.port, false)
			if !errors.Is(err, ErrInvalidUnit) {
				t.Errorf("NewUnit() error = %v, want ErrInvalidUnit", err)
			}
			if u != nil {
				t.Error("NewUnit() returned a unit alongside an error")
			}
		})
	}
}

func TestUnit_ChangeState(t *testing.T) {
	ctx := context.Background()
	u, port, bus := newTestUnit(t, false)

	if err := u.ChangeState(ctx, "on", SourceManual); err != nil {
		t.Fatalf("ChangeState(on) error = %v", err)
	}
	if level, _ := port.Read(ctx); !level {
		t.Error("port level = false after on")
	}
	if u.State().Name != "on" {
		t.Errorf("State() = %q, want on", u.State().Name)
	}
	if bus.count() != 1 {
		t.Fatalf("published %d events, want 1", bus.count())
	}
	ev := bus.events[0]
	if ev.Previous != "init" || ev.State != "on" || !ev.Signal || ev.Source != SourceManual || ev.InstanceID != "inst-1" {
		t.Errorf("event = %+v", ev)
	}

	if err := u.ChangeState(ctx, "off", SourceAutomation); err != nil {
		t.Fatalf("ChangeState(off) error = %v", err)
	}
	if level, _ := port.Read(ctx); level {
		t.Error("port level = true after off")
	}

	// Re-commanding the current state re-asserts the level silently.
	port.SetLevel(true)
	if err := u.ChangeState(ctx, "off", SourceAutomation); err != nil {
		t.Fatalf("ChangeState(off) again error = %v", err)
	}
	if level, _ := port.Read(ctx); level {
		t.Error("re-command did not re-assert the level")
	}
	if bus.count() != 2 {
		t.Errorf("published %d events, want 2", bus.count())
	}
}

func TestUnit_ChangeState_Rejections(t *testing.T) {
	tests := []struct {
		name           string
		automationOnly bool
		state          string
		source         Source
		wantErr        error
	}{
		{name: "unknown state", state: "dim", source: SourceManual, wantErr: ErrUnknownState},
		{name: "read-only state", state: "init", source: SourceAutomation, wantErr: ErrReadOnlyState},
		{name: "manual on automation-only", automationOnly: true, state: "on", source: SourceManual, wantErr: ErrAutomationOnly},
		{name: "automation on automation-only", automationOnly: true, state: "on", source: SourceAutomation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, port, bus := newTestUnit(t, tt.automationOnly)
			err := u.ChangeState(context.Background(), tt.state, tt.source)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("ChangeState() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ChangeState() error = %v, want %v", err, tt.wantErr)
			}
			if level, _ := port.Read(context.Background()); level {
				t.Error("rejected command drove the port")
			}
			if bus.count() != 0 {
				t.Error("rejected command published an event")
			}
		})
	}
}

func TestUnit_ChangeState_PortFailure(t *testing.T) {
	u, port, bus := newTestUnit(t, false)
	boom := errors.New("bridge offline")
	port.FailWrites(boom)

	err := u.ChangeState(context.Background(), "on", SourceManual)
	if !errors.Is(err, ErrPortWrite) || !errors.Is(err, boom) {
		t.Fatalf("ChangeState() error = %v, want ErrPortWrite wrapping driver error", err)
	}
	if u.State().Name != "init" {
		t.Errorf("State() = %q after failed write, want init", u.State().Name)
	}
	if bus.count() != 0 {
		t.Error("failed write published an event")
	}
}

func TestUnit_BusFailureIsNotReturned(t *testing.T) {
	u, _, bus := newTestUnit(t, false)
	bus.err = errors.New("subscriber down")

	if err := u.ChangeState(context.Background(), "on", SourceManual); err != nil {
		t.Fatalf("ChangeState() error = %v, want nil despite bus failure", err)
	}
	if u.State().Name != "on" {
		t.Errorf("State() = %q, want on", u.State().Name)
	}
}

func TestUnit_Reconcile(t *testing.T) {
	ctx := context.Background()
	u, port, bus := newTestUnit(t, false)

	// Initial unknown state adopts the observed level.
	changed, err := u.Reconcile(ctx)
	if err != nil || !changed {
		t.Fatalf("Reconcile() = %v, %v; want true, nil", changed, err)
	}
	if u.State().Name != "off" {
		t.Errorf("State() = %q, want off", u.State().Name)
	}

	changed, _ = u.Reconcile(ctx)
	if changed {
		t.Error("Reconcile() changed state when level matched")
	}

	port.SetLevel(true)
	changed, _ = u.Reconcile(ctx)
	if !changed || u.State().Name != "on" {
		t.Errorf("Reconcile() after external change: changed=%v state=%q", changed, u.State().Name)
	}
	if last := bus.events[len(bus.events)-1]; last.Source != SourceHardware {
		t.Errorf("reconcile event source = %q, want hardware", last.Source)
	}
}

type idleMQTT struct{}

func (idleMQTT) Publish(string, []byte, byte, bool) error          { return nil }
func (idleMQTT) Subscribe(string, byte, mqtt.MessageHandler) error { return nil }
func (idleMQTT) Unsubscribe(string) error                          { return nil }

func TestUnit_ReconcileWithoutReading(t *testing.T) {
	ctx := context.Background()
	catalog, err := NewCatalog(onOffStates())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	port, err := hardware.NewMQTTPort("relay-3", "knx", "1/0/3", idleMQTT{})
	if err != nil {
		t.Fatalf("NewMQTTPort() error = %v", err)
	}
	if err := port.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	bus := &recordingBus{}
	u, err := NewUnit(bus, Identity{ID: "inst-1", Class: "onoff"}, "Porch Light", catalog, port, false)
	if err != nil {
		t.Fatalf("NewUnit() error = %v", err)
	}

	changed, err := u.Reconcile(ctx)
	if err != nil || changed {
		t.Fatalf("Reconcile() = %v, %v; want false, nil", changed, err)
	}
	if u.State().Name != "init" || !u.Status().ReadOnly {
		t.Errorf("State() = %q, want init until the bridge reports", u.State().Name)
	}
	if bus.count() != 0 {
		t.Errorf("published %d events without a reading", bus.count())
	}

	if err := u.ChangeState(ctx, "on", SourceManual); err != nil {
		t.Fatalf("ChangeState() error = %v", err)
	}
	changed, err = u.Reconcile(ctx)
	if err != nil || changed {
		t.Errorf("Reconcile() after command = %v, %v; want false, nil", changed, err)
	}
}

func TestUnit_ReconcileReadFailure(t *testing.T) {
	u, _, _ := newTestUnit(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := u.Reconcile(ctx); !errors.Is(err, ErrPortRead) {
		t.Errorf("Reconcile() error = %v, want ErrPortRead", err)
	}
}

func TestUnit_ConcurrentCommands(t *testing.T) {
	u, _, _ := newTestUnit(t, false)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		state := "on"
		if i%2 == 0 {
			state = "off"
		}
		go func() {
			defer wg.Done()
			_ = u.ChangeState(ctx, state, SourceAutomation)
			_ = u.Status()
		}()
	}
	wg.Wait()

	// Whatever won, the unit and the port agree.
	changed, err := u.Reconcile(ctx)
	if err != nil || changed {
		t.Errorf("Reconcile() after concurrent commands = %v, %v; want false, nil", changed, err)
	}
}
