// Package instance persists configured device instances and keeps their
// automation units live.
//
// The Manager is the single write path for instances: it validates the
// submitted fields against the device class, stores the instance, builds
// its unit, and registers the unit with the automation registry.
//
//	mgr := instance.NewManager(catalog, repo, units,
//	    instance.WithCollector(metrics),
//	    instance.WithHistory(history),
//	)
//	inst, err := mgr.Create(ctx, "onoff", configurable.Fields{
//	    "name":   "Porch light",
//	    "portId": "relay-1",
//	})
//
// An instance that validates but cannot be built (its port is missing, for
// example) is still saved. It stays inactive, and the build error is both
// returned and remembered so the API can report it until the next
// successful build.
//
// The state history repository records every published unit event and
// answers newest-first queries per instance.
package instance
