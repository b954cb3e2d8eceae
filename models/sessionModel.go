package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Identity kinds as written in the session payload.
const (
	IdentityGuest = "guest"
	IdentityUser  = "user"
)

// Identity is who a session belongs to: either a GuestIdentity or a
// UserIdentity.
type Identity interface {
	Kind() string
}

// GuestIdentity is a temporary visitor that has no user record.
type GuestIdentity struct {
	ID string `json:"id"`
}

func (GuestIdentity) Kind() string { return IdentityGuest }

// Role of a guest is always customer.
func (GuestIdentity) Role() string { return RoleCustomer }

// UserIdentity points at a record in the users collection. The role is read
// from that record on each request.
type UserIdentity struct {
	UserID ID `json:"id"`
}

func (UserIdentity) Kind() string { return IdentityUser }

// SessionData is the identity payload of a session.
type SessionData struct {
	Identity Identity
}

type identityWire struct {
	Type string          `json:"type"`
	ID   json.RawMessage `json:"id"`
	Role string          `json:"role,omitempty"`
}

func (d SessionData) MarshalJSON() ([]byte, error) {
	switch v := d.Identity.(type) {
	case nil:
		return []byte("{}"), nil
	case GuestIdentity:
		id, _ := json.Marshal(v.ID)
		return json.Marshal(identityWire{Type: IdentityGuest, ID: id, Role: RoleCustomer})
	case UserIdentity:
		id, _ := json.Marshal(int64(v.UserID))
		return json.Marshal(identityWire{Type: IdentityUser, ID: id})
	default:
		return nil, fmt.Errorf("unknown identity %T", d.Identity)
	}
}

func (d *SessionData) UnmarshalJSON(b []byte) error {
	var w identityWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Type {
	case "":
		d.Identity = nil
	case IdentityGuest:
		var id string
		if err := json.Unmarshal(w.ID, &id); err != nil {
			return fmt.Errorf("guest id: %w", err)
		}
		d.Identity = GuestIdentity{ID: id}
	case IdentityUser:
		var id ID
		if err := id.UnmarshalJSON(w.ID); err != nil {
			return fmt.Errorf("user id: %w", err)
		}
		d.Identity = UserIdentity{UserID: id}
	default:
		return fmt.Errorf("unknown identity type %q", w.Type)
	}
	return nil
}

// Session is one row of the sessions collection.
type Session struct {
	SID       string      `json:"sid"`
	Data      SessionData `json:"session"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func (s *Session) RecordKey() string { return s.SID }

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
