package user

import "slices"

// Permission names an action the bridge lets a signed-in role perform.
type Permission string

const (
	PermissionViewOwnProfile    Permission = "profile.view_own"
	PermissionEditOwnProfile    Permission = "profile.edit_own"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceCreate  Permission = "attendance.create"
)

// selfService is everything a user may do to their own profile and attendance.
var selfService = []Permission{
	PermissionViewOwnProfile,
	PermissionEditOwnProfile,
	PermissionAttendanceViewOwn,
	PermissionAttendanceCreate,
}

// RolePermissions lists the grants per role. Admins use the client like any
// employee; administration lives on the server.
var RolePermissions = map[Role][]Permission{
	RoleEmployee: selfService,
	RoleAdmin:    selfService,
}

// HasPermission checks whether a role grants permission. Unknown roles get nothing.
func HasPermission(role Role, permission Permission) bool {
	return slices.Contains(RolePermissions[role], permission)
}
