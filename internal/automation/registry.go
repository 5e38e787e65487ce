package automation

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Logger defines the logging interface used by units and the registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the live units keyed by instance ID.
//
// All public methods are thread-safe.
type Registry struct {
	units  map[string]*Unit
	mu     sync.RWMutex
	logger Logger
}

// NewRegistry creates an empty unit registry.
func NewRegistry() *Registry {
	return &Registry{
		units:  make(map[string]*Unit),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Register makes u the live unit for its instance, replacing any previous
// unit for the same instance. Returns the replaced unit, if any.
func (r *Registry) Register(u *Unit) *Unit {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.units[u.ID()]
	r.units[u.ID()] = u
	r.logger.Debug("unit registered", "instance_id", u.ID(), "replaced", prev != nil)
	return prev
}

// Remove drops the live unit for id. Reports whether one existed.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.units[id]; !ok {
		return false
	}
	delete(r.units, id)
	r.logger.Debug("unit removed", "instance_id", id)
	return true
}

// Get returns the live unit for id, or ErrUnitNotFound.
func (r *Registry) Get(id string) (*Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[id]
	if !ok {
		return nil, ErrUnitNotFound
	}
	return u, nil
}

// List returns live units sorted by instance ID.
func (r *Registry) List() []*Unit {
	r.mu.RLock()
	units := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		units = append(units, u)
	}
	r.mu.RUnlock()

	sort.Slice(units, func(i, j int) bool { return units[i].ID() < units[j].ID() })
	return units
}

// Len returns the number of live units.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.units)
}

// ReconcileAll reconciles every live unit against its port.
// Failures are logged per unit. Returns the number of units that changed state.
func (r *Registry) ReconcileAll(ctx context.Context) int {
	changed := 0
	for _, u := range r.List() {
		if ctx.Err() != nil {
			break
		}
		ok, err := u.Reconcile(ctx)
		if err != nil {
			r.logger.Warn("reconcile failed", "instance_id", u.ID(), "port_id", u.PortID(), "error", err)
			continue
		}
		if ok {
			changed++
		}
	}
	return changed
}

// Run reconciles all units immediately and then every interval until ctx
// is cancelled. A non-positive interval reconciles once and returns.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	r.ReconcileAll(ctx)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.ReconcileAll(ctx); n > 0 {
				r.logger.Info("reconciled units with hardware", "changed", n)
			}
		}
	}
}
