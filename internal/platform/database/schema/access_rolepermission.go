package schema

// RolePermissionTable represents the 'access.rolepermission' table
type RolePermissionTable struct {
	Table        string
	RoleID       string
	PermissionID string
}

// RolePermission is the schema definition for access.rolepermission
var RolePermission = RolePermissionTable{
	Table:        "access.rolepermission",
	RoleID:       "roleid",
	PermissionID: "permissionid",
}
