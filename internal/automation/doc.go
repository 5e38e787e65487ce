// Package automation runs the live state machines that drive device ports.
//
// A device class declares its states as a Catalog. Each State is either
// read-only (observed, never commanded) or controllable; a controllable state
// carries the boolean level driven onto the port when it is commanded.
//
// A Unit binds one configured device instance to its catalog and its
// resolved output port:
//
//	┌──────────────┐  ChangeState   ┌──────────┐  Write(level)  ┌────────────┐
//	│  API / rules │ ─────────────▶ │   Unit   │ ─────────────▶ │ OutputPort │
//	└──────────────┘                └──────────┘                └────────────┘
//	                                     │ Publish(Event)             │
//	                                     ▼                            │ Read
//	                                ┌──────────┐      Reconcile ◀─────┘
//	                                │ EventBus │
//	                                └──────────┘
//
// Units start in the catalog's initial read-only state and leave it on the
// first command or the first reconciliation against the port read-back.
//
// The Registry holds the live units keyed by instance ID and periodically
// reconciles them.
//
// # Thread Safety
//
// Catalog is immutable. Unit and Registry are safe for concurrent use;
// commands against one unit are serialised so the port never sees
// interleaved writes from the same unit.
package automation
