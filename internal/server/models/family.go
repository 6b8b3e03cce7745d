package models

import "time"

type Family struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Role is a member's standing inside a family.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

type Membership struct {
	ID        string
	FamilyID  string
	UserID    string
	Role      Role
	CreatedAt time.Time
}

// Member is a membership joined with the user's name, as listed to clients.
type Member struct {
	UserID   string    `json:"user_id"`
	UserName string    `json:"username"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

type Invite struct {
	ID        string
	FamilyID  string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
