package models

import (
	"time"

	"github.com/samber/lo"
)

// Role names. Staff roles may use the clinic API; customers are guests and
// upgraded guest accounts.
const (
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
	RoleDoctor   = "doctor"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// StaffRoles are the roles allowed to reach the /api resources.
var StaffRoles = []string{RoleOwner, RoleAdmin, RoleDoctor, RoleStaff}

// ManagerRoles may delete patients and list accounts.
var ManagerRoles = []string{RoleOwner, RoleAdmin}

// IsStaff reports whether role belongs to StaffRoles.
func IsStaff(role string) bool {
	return lo.Contains(StaffRoles, role)
}

const (
	ProviderNative = "native"
	ProviderGuest  = "guest"

	UserActive   = "active"
	UserDisabled = "disabled"
)

// User represents an account in the system. Password holds the bcrypt hash
// and only ever leaves the process through the users collection.
type User struct {
	Base
	Sequenced
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"displayName"`
	AuthProvider string    `json:"authProvider"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (*User) CodePrefix() string { return "USR" }

func (u *User) FilterValue(field string) (string, bool) {
	switch field {
	case "role":
		return u.Role, true
	case "status":
		return u.Status, true
	case "email":
		return u.Email, true
	}
	return "", false
}

// SafeUser is the client facing view of a User.
type SafeUser struct {
	ID           ID        `json:"id"`
	Code         string    `json:"code"`
	Type         string    `json:"type"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	DisplayName  string    `json:"displayName"`
	AuthProvider string    `json:"authProvider"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Safe strips the password hash.
func (u *User) Safe() SafeUser {
	return SafeUser{
		ID:           u.ID,
		Code:         u.Code,
		Type:         IdentityUser,
		Email:        u.Email,
		Role:         u.Role,
		DisplayName:  u.DisplayName,
		AuthProvider: u.AuthProvider,
		Status:       u.Status,
		CreatedAt:    u.CreatedAt,
	}
}
