package identity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Role represents the backend's user role claim.
type Role string

const (
	RoleStandard Role = "user"  // Regular player account
	RoleAdmin    Role = "admin" // Platform administrator
)

// ParseRole normalizes an arbitrary role string from the backend.
// Anything that is not recognisably an administrator is a standard account;
// the role column is free text server-side and has been observed with
// casing variations.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleStandard
}

// Identity is the denormalized profile snapshot the client keeps locally
// for the authenticated account.
type Identity struct {
	ID        int64   `json:"id"`                   // Backend user id
	Name      string  `json:"name,omitempty"`       // Display name
	Email     string  `json:"email,omitempty"`      // Account email
	Role      Role    `json:"role,omitempty"`       // user | admin
	Handle    string  `json:"ff_name,omitempty"`    // In-game handle
	Phone     string  `json:"phone_num,omitempty"`  // Contact number
	Balance   float64 `json:"balance"`              // Coin balance, never negative
	AvatarURL string  `json:"avatar_url,omitempty"` // Optional avatar reference
}

// Normalize clamps fields to their documented invariants.
func (i *Identity) Normalize() {
	if i.Balance < 0 {
		i.Balance = 0
	}
	i.Role = ParseRole(string(i.Role))
}

// Valid reports whether the identity is usable as a session subject.
func (i *Identity) Valid() bool {
	return i != nil && i.ID > 0
}

// Patch is a partial identity update. Nil fields are left untouched when
// applied, matching the backend's PUT /profile semantics.
type Patch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone_num,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Apply merges the patch into a copy of the identity and returns it.
// The merge is shallow and non-destructive.
func (p Patch) Apply(cur Identity) Identity {
	if p.Name != nil {
		cur.Name = *p.Name
	}
	if p.Email != nil {
		cur.Email = *p.Email
	}
	if p.Phone != nil {
		cur.Phone = *p.Phone
	}
	if p.AvatarURL != nil {
		cur.AvatarURL = *p.AvatarURL
	}
	return cur
}

// Empty reports whether the patch carries no changes.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.AvatarURL == nil
}

// flexibleNumber tolerates the backend serialising numeric fields either as
// JSON numbers or as decimal strings ("1250.00" has been observed for the
// profile balance).
type flexibleNumber float64

func (f *flexibleNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexibleNumber(v)
	return nil
}

// Profile is the wire shape of GET /profile responses.
type Profile struct {
	ID        int64          `json:"id"`
	Name      string         `json:"name"`
	Email     string         `json:"email"`
	Handle    string         `json:"ff_name"`
	Phone     string         `json:"phone_num"`
	AvatarURL string         `json:"avatar_url"`
	Balance   flexibleNumber `json:"balance"`
	Role      string         `json:"role"`
}

// Identity converts the wire profile into the local snapshot.
func (p Profile) Identity() Identity {
	id := Identity{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Role:      ParseRole(p.Role),
		Handle:    p.Handle,
		Phone:     p.Phone,
		Balance:   float64(p.Balance),
		AvatarURL: p.AvatarURL,
	}
	id.Normalize()
	return id
}

// Decode parses a stored identity snapshot, reporting ok=false when the
// payload does not describe a valid identity.
func Decode(data []byte) (Identity, bool) {
	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false
	}
	if !id.Valid() {
		return Identity{}, false
	}
	id.Normalize()
	return id, true
}
