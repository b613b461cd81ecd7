package auth

// Permission codes checked by the application. Codes are flat strings; the
// catalog in the permissions table may hold more codes than listed here.
const (
	// PermCreateAdmin allows registering new administrator accounts.
	PermCreateAdmin = "create_admin"

	// PermRBACPermissionsRead allows listing and viewing permissions.
	PermRBACPermissionsRead = "rbac.permissions.read"
	// PermRBACPermissionsCreate allows adding permissions to the catalog.
	PermRBACPermissionsCreate = "rbac.permissions.create"
	// PermRBACPermissionsDelete allows removing permissions from the catalog.
	PermRBACPermissionsDelete = "rbac.permissions.delete"

	// PermRBACRolesRead allows listing and viewing roles with their permissions.
	PermRBACRolesRead = "rbac.roles.read"
	// PermRBACRolesCreate allows creating roles.
	PermRBACRolesCreate = "rbac.roles.create"
	// PermRBACRolesUpdate allows editing roles and replacing their permission sets.
	PermRBACRolesUpdate = "rbac.roles.update"
	// PermRBACRolesDelete allows deleting non-system roles.
	PermRBACRolesDelete = "rbac.roles.delete"

	// PermRBACAssignmentsRead allows viewing the roles held by a user.
	PermRBACAssignmentsRead = "rbac.assignments.read"
	// PermRBACAssignmentsUpdate allows assigning roles to and removing roles from users.
	PermRBACAssignmentsUpdate = "rbac.assignments.update"
)
