package schema

// RoleTable represents the 'access.role' table
type RoleTable struct {
	Table       string
	ID          string
	Name        string
	Description string
	IsSystem    string
	CreatedAt   string
	UpdatedAt   string
}

// Role is the schema definition for access.role
var Role = RoleTable{
	Table:       "access.role",
	ID:          "id",
	Name:        "name",
	Description: "description",
	IsSystem:    "issystem",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}
