// Package auth provides bearer-token authentication and role-based
// authorisation for the on/off device API.
//
// Tokens are HS256 JWTs carrying a subject and a role. Three roles exist:
//
//   - operator:   reads everything and switches devices by hand
//   - automation: reads everything and switches devices on behalf of rules
//   - admin:      everything, including configuring instances
//
// The permission used for a command decides its source: a command
// authorised by PermDeviceAutomate is recorded as an automation command,
// anything else as a manual one. Automation-only devices therefore reject
// operators but accept automation clients.
//
// Role permissions are a static table; no database lookup is involved.
package auth
