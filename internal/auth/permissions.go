package auth

import (
	"fmt"

	"github.com/nerrad567/gray-logic-onoff/internal/automation"
)

// Permission represents a named capability.
type Permission string

// Permission constants.
const (
	PermDeviceRead      Permission = "device:read"
	PermDeviceOperate   Permission = "device:operate"
	PermDeviceAutomate  Permission = "device:automate"
	PermDeviceConfigure Permission = "device:configure"
	PermSystemRead      Permission = "system:read"
)

// rolePermissions is the single source of truth for the authorisation model.
var rolePermissions = map[Role][]Permission{
	RoleOperator: {
		PermDeviceRead,
		PermDeviceOperate,
	},
	RoleAutomation: {
		PermDeviceRead,
		PermDeviceAutomate,
	},
	RoleAdmin: {
		PermDeviceRead,
		PermDeviceOperate,
		PermDeviceAutomate,
		PermDeviceConfigure,
		PermSystemRead,
	},
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// PermissionsForRole returns a copy of the permissions of role, or nil.
func PermissionsForRole(role Role) []Permission {
	perms := rolePermissions[role]
	if perms == nil {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// CommandSource decides the source a state command is issued under.
//
// requested is what the client asked for; empty means "whatever my role
// allows", preferring manual. Clients can never claim SourceHardware.
// Returns ErrForbidden when the role cannot issue the command.
func CommandSource(role Role, requested automation.Source) (automation.Source, error) {
	switch requested {
	case automation.SourceAutomation:
		if HasPermission(role, PermDeviceAutomate) {
			return automation.SourceAutomation, nil
		}
	case automation.SourceManual:
		if HasPermission(role, PermDeviceOperate) {
			return automation.SourceManual, nil
		}
	case "":
		if HasPermission(role, PermDeviceOperate) {
			return automation.SourceManual, nil
		}
		if HasPermission(role, PermDeviceAutomate) {
			return automation.SourceAutomation, nil
		}
	default:
		return "", fmt.Errorf("%w: source %q cannot be requested", ErrForbidden, requested)
	}
	return "", fmt.Errorf("%w: role %q cannot issue %q commands", ErrForbidden, role, requested)
}
