package models

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleRep     Role = "rep"
)

// ParseRole maps a requested role onto a known one. Anything other than
// "rep" registers a student.
func ParseRole(s string) Role {
	if Role(s) == RoleRep {
		return RoleRep
	}
	return RoleStudent
}

// User is the profile stored for an authenticated identity.
type User struct {
	UID         string    `json:"uid"`
	DisplayName string    `json:"displayName"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u *User) IsRep() bool {
	return u != nil && u.Role == RoleRep
}
