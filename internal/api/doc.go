// Package api implements the HTTP REST API and WebSocket server for the
// on/off device service.
//
// This package provides:
//   - device class discovery (fields, states, icon, JSON Schema)
//   - instance CRUD with activation into live automation units
//   - state commands and state history per instance
//   - a WebSocket hub pushing unit.state_changed frames and accepting
//     state commands
//   - an audit trail of configuration changes and commands (admin only)
//   - Prometheus exposition on /api/v1/metrics
//
// # Security
//
// Every route except /health, /metrics and /ws requires an HS256 bearer
// token. WebSocket connections authenticate with a single-use ticket from
// POST /auth/ws-ticket so tokens never appear in URLs.
//
// # WebSocket Frames
//
// Clients send {"type","ref","data"} frames:
//
//	watch     {"instances":["id",...]}   empty list watches every instance
//	unwatch   {"instances":["id",...]}   empty list stops everything
//	command   {"instance_id","state","source"}
//	ping
//
// The server answers with ack, error or pong (echoing ref) and pushes
// unit.state_changed frames for watched instances.
//
// # Error Mapping
//
//	validation_error          400  a field value is missing or malformed
//	missing_field             422  a stored instance lacks a mandatory field
//	port_not_found            409  no hardware port under the configured id
//	port_capability_mismatch  409  the port cannot drive a relay
//	automation_only           409  manual command on an automation-only unit
//	read_only_state           409  the target state cannot be commanded
//	unknown_state             400  the target state does not exist
//
// Instances that were stored but could not be activated carry their
// instance_id in the error body.
package api
