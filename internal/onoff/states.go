package onoff

import (
	"github.com/nerrad567/gray-logic-onoff/internal/automation"
	"github.com/nerrad567/gray-logic-onoff/internal/resource"
)

// State names.
const (
	StateInit = "init"
	StateOn   = "on"
	StateOff  = "off"
)

// States returns a freshly built state catalog. Each call returns an
// independent value; callers may hold on to it without sharing.
func States() *automation.Catalog {
	c, err := automation.NewCatalog([]automation.State{
		automation.BuildReadOnlyState(StateInit, resource.StateUnknown),
		automation.BuildControlState(StateOn, resource.StateOn, resource.ActionOn, true),
		automation.BuildControlState(StateOff, resource.StateOff, resource.ActionOff, false),
	})
	if err != nil {
		// The state list above is fixed; a failure here is a programming error.
		panic("onoff: invalid state catalog: " + err.Error())
	}
	return c
}
