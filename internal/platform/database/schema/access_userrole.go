package schema

// UserRoleTable represents the 'access.userrole' table
type UserRoleTable struct {
	Table      string
	AccountID  string
	RoleID     string
	AssignedAt string
}

// UserRole is the schema definition for access.userrole
var UserRole = UserRoleTable{
	Table:      "access.userrole",
	AccountID:  "accountid",
	RoleID:     "roleid",
	AssignedAt: "assignedat",
}
