package domain

import "time"

// Role is the authorization level of a user. There are exactly two.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleClient Role = "CLIENT"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

// Toggle returns the other role. ADMIN becomes CLIENT and vice versa.
func (r Role) Toggle() Role {
	if r == RoleAdmin {
		return RoleClient
	}
	return RoleAdmin
}

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string // argon2 encoded
	Role         Role
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins the name parts for display, e.g. in recovery mails.
func (u User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// NewUser builds a user with registration defaults: CLIENT role, enabled.
// The caller supplies the id (ULID) and an already-hashed password.
func NewUser(id, email, firstName, lastName, passwordHash string, now time.Time) User {
	return User{
		ID:           id,
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: passwordHash,
		Role:         RoleClient,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
