package instance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/configurable"
	"github.com/nerrad567/gray-logic-onoff/internal/telemetry"
)

// Logger defines the logging interface used by the manager.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager owns the instance lifecycle: validate, persist, build, register.
//
// All public methods are thread-safe. Writes are serialised so the stored
// instance and its live unit never diverge.
type Manager struct {
	catalog   *configurable.Catalog
	repo      Repository
	units     *automation.Registry
	history   StateHistoryRepository
	collector telemetry.Collector
	logger    Logger

	writeMu sync.Mutex

	activationMu sync.RWMutex
	activation   map[string]error
}

// Option configures a Manager.
type Option func(*Manager)

// WithCollector reports build outcomes and the live unit count to c.
func WithCollector(c telemetry.Collector) Option {
	return func(m *Manager) {
		if c != nil {
			m.collector = c
		}
	}
}

// WithHistory deletes an instance's state history along with it.
func WithHistory(h StateHistoryRepository) Option {
	return func(m *Manager) { m.history = h }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewManager creates a manager over catalog, repo and the live unit registry.
func NewManager(catalog *configurable.Catalog, repo Repository, units *automation.Registry, opts ...Option) *Manager {
	m := &Manager{
		catalog:    catalog,
		repo:       repo,
		units:      units,
		collector:  telemetry.Noop(),
		logger:     noopLogger{},
		activation: make(map[string]error),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create validates fields against class, stores a new instance and
// activates it.
//
// Returns:
//   - configurable.ErrUnknownClass when class is not registered
//   - the field validation error (nothing is stored)
//   - ErrInstanceExists when id is already taken
//   - the saved instance and an *ActivationError when the unit cannot be built
func (m *Manager) Create(ctx context.Context, class string, id string, fields configurable.Fields) (*configurable.Instance, error) {
	d, err := m.catalog.Get(class)
	if err != nil {
		return nil, err
	}
	if _, err := configurable.ValidateFields(d, fields); err != nil {
		return nil, err
	}

	id = strings.TrimSpace(id)
	if id == "" {
		id = configurable.NewInstanceID()
	}
	inst := &configurable.Instance{ID: id, Class: class, Fields: fields.Clone()}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.repo.Create(ctx, inst); err != nil {
		return nil, err
	}
	m.logger.Info("instance created", "instance_id", inst.ID, "class", class)

	return inst.DeepCopy(), m.activate(d, inst)
}

// Update replaces an instance's fields and rebuilds its unit. A failed
// rebuild leaves the instance saved and inactive: its previous unit is
// removed and an *ActivationError is returned.
func (m *Manager) Update(ctx context.Context, id string, fields configurable.Fields) (*configurable.Instance, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	inst, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := m.catalog.Get(inst.Class)
	if err != nil {
		return nil, err
	}
	if _, err := configurable.ValidateFields(d, fields); err != nil {
		return nil, err
	}

	inst.Fields = fields.Clone()
	if err := m.repo.Update(ctx, inst); err != nil {
		return nil, err
	}
	m.logger.Info("instance updated", "instance_id", inst.ID)

	return inst.DeepCopy(), m.activate(d, inst)
}

// Delete removes an instance, its live unit and its state history.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	m.units.Remove(id)
	m.setActivation(id, nil)
	m.collector.SetActiveUnits(m.units.Len())

	if m.history != nil {
		if err := m.history.DeleteForInstance(ctx, id); err != nil {
			m.logger.Warn("state history not deleted", "instance_id", id, "error", err)
		}
	}
	m.logger.Info("instance deleted", "instance_id", id)
	return nil
}

// Get returns a stored instance.
func (m *Manager) Get(ctx context.Context, id string) (*configurable.Instance, error) {
	return m.repo.GetByID(ctx, id)
}

// List returns every stored instance.
func (m *Manager) List(ctx context.Context) ([]*configurable.Instance, error) {
	return m.repo.List(ctx)
}

// Unit returns the live unit of an instance, or automation.ErrUnitNotFound
// when the instance is inactive.
func (m *Manager) Unit(id string) (*automation.Unit, error) {
	return m.units.Get(id)
}

// ActivationError returns the remembered build failure of id, or nil when
// its last build succeeded.
func (m *Manager) ActivationError(id string) error {
	m.activationMu.RLock()
	defer m.activationMu.RUnlock()
	return m.activation[id]
}

// LoadAll builds every stored instance. Build failures are logged and
// remembered, never returned; only a storage failure is. Returns the
// number of instances activated.
func (m *Manager) LoadAll(ctx context.Context) (int, error) {
	instances, err := m.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading instances: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	active := 0
	for _, inst := range instances {
		if ctx.Err() != nil {
			return active, ctx.Err()
		}
		d, err := m.catalog.Get(inst.Class)
		if err != nil {
			m.remember(inst, err)
			continue
		}
		if m.activate(d, inst) == nil {
			active++
		}
	}
	m.logger.Info("instances loaded", "total", len(instances), "active", active)
	return active, nil
}

// Reactivate retries every instance with a remembered build failure, for
// use after the hardware topology changes. Returns how many became active.
func (m *Manager) Reactivate(ctx context.Context) (int, error) {
	m.activationMu.RLock()
	ids := make([]string, 0, len(m.activation))
	for id := range m.activation {
		ids = append(ids, id)
	}
	m.activationMu.RUnlock()

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	recovered := 0
	for _, id := range ids {
		inst, err := m.repo.GetByID(ctx, id)
		if errors.Is(err, ErrInstanceNotFound) {
			m.setActivation(id, nil)
			continue
		}
		if err != nil {
			return recovered, err
		}
		d, err := m.catalog.Get(inst.Class)
		if err != nil {
			continue
		}
		if m.activate(d, inst) == nil {
			recovered++
		}
	}
	return recovered, nil
}

// activate builds and registers the unit of inst. On failure any previous
// unit is removed and the error is remembered and returned wrapped in
// *ActivationError. Callers hold writeMu.
func (m *Manager) activate(d configurable.Descriptor, inst *configurable.Instance) error {
	start := time.Now()
	unit, err := d.BuildAutomationUnit(inst)
	outcome := telemetry.OutcomeOK
	if err != nil {
		outcome = string(configurable.ErrorKind(err))
	}
	m.collector.ObserveBuild(inst.Class, outcome, time.Since(start))

	if err != nil {
		m.units.Remove(inst.ID)
		m.collector.SetActiveUnits(m.units.Len())
		return m.remember(inst, err)
	}

	m.units.Register(unit)
	m.setActivation(inst.ID, nil)
	m.collector.SetActiveUnits(m.units.Len())
	return nil
}

func (m *Manager) remember(inst *configurable.Instance, err error) error {
	actErr := &ActivationError{InstanceID: inst.ID, Err: err}
	m.setActivation(inst.ID, actErr)
	m.logger.Warn("instance not active",
		"instance_id", inst.ID,
		"class", inst.Class,
		"kind", configurable.ErrorKind(err),
		"error", err,
	)
	return actErr
}

func (m *Manager) setActivation(id string, err error) {
	m.activationMu.Lock()
	defer m.activationMu.Unlock()
	if err == nil {
		delete(m.activation, id)
		return
	}
	m.activation[id] = err
}
