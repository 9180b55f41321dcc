package schema

// PermissionTable represents the 'access.permission' table
type PermissionTable struct {
	Table       string
	ID          string
	Name        string
	Category    string
	Description string
	CreatedAt   string
}

// Permission is the schema definition for access.permission
var Permission = PermissionTable{
	Table:       "access.permission",
	ID:          "id",
	Name:        "name",
	Category:    "category",
	Description: "description",
	CreatedAt:   "createdat",
}
