package schema

// AccountTable represents the 'access.account' table
type AccountTable struct {
	Table        string
	ID           string
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	AvatarURL    string
	Status       string
	IsActive     string
	LastLoginAt  string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// Account is the schema definition for access.account
var Account = AccountTable{
	Table:        "access.account",
	ID:           "id",
	Email:        "email",
	Username:     "username",
	PasswordHash: "passwordhash",
	FirstName:    "firstname",
	LastName:     "lastname",
	Phone:        "phone",
	AvatarURL:    "avatarurl",
	Status:       "status",
	IsActive:     "isactive",
	LastLoginAt:  "lastloginat",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns all standard column names in scan order
func (t AccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Username, t.PasswordHash, t.FirstName, t.LastName,
		t.Phone, t.AvatarURL, t.Status, t.IsActive, t.LastLoginAt,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
