package profile

import (
	"errors"
	"time"
)

type Role string

const (
	RoleNone     Role = ""
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

var (
	ErrNotFound         = errors.New("profile not found")
	ErrIdentityNotFound = errors.New("identity not found")
	ErrEmailTaken       = errors.New("email already registered")
)

func (r Role) Valid() bool {
	return r == RoleManager || r == RoleEmployee
}

// Home is the dashboard path for the role. Anything other than manager lands
// on the employee dashboard.
func (r Role) Home() string {
	if r == RoleManager {
		return "/manager"
	}
	return "/employee"
}

// Identity is the account principal that owns credentials.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile extends an Identity with display name and role. ID equals the identity id.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
