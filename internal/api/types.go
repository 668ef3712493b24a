package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// User is the account record returned by the backend. Fields the session
// client doesn't interpret are kept in Extra and written back unchanged.
type User struct {
	ID          string
	Email       string
	FirstName   string
	LastName    string
	Role        string
	Permissions []string
	Extra       map[string]json.RawMessage
}

var userKnownFields = []string{"id", "email", "first_name", "last_name", "role", "permissions"}

// HasPermission reports whether permission is in the user's permission list.
func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Permissions, permission)
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Permissions = slices.Clone(u.Permissions)
	c.Extra = maps.Clone(u.Extra)
	for k, v := range c.Extra {
		c.Extra[k] = slices.Clone(v)
	}
	return &c
}

// FullName joins first and last name.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*u = User{}
	if raw, ok := fields["id"]; ok {
		id, err := decodeID(raw)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		u.ID = id
	}
	targets := map[string]any{
		"email":       &u.Email,
		"first_name":  &u.FirstName,
		"last_name":   &u.LastName,
		"role":        &u.Role,
		"permissions": &u.Permissions,
	}
	for name, target := range targets {
		raw, ok := fields[name]
		if !ok || bytes.Equal(raw, []byte("null")) {
			continue
		}
		if err := json.Unmarshal(raw, target); err != nil {
			return fmt.Errorf("invalid user %s: %w", name, err)
		}
	}

	for _, name := range userKnownFields {
		delete(fields, name)
	}
	if len(fields) > 0 {
		u.Extra = fields
	}
	return nil
}

func (u User) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+len(userKnownFields))
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	out["role"] = u.Role
	if u.Email != "" {
		out["email"] = u.Email
	}
	if u.FirstName != "" {
		out["first_name"] = u.FirstName
	}
	if u.LastName != "" {
		out["last_name"] = u.LastName
	}
	if u.Permissions != nil {
		out["permissions"] = u.Permissions
	}
	return json.Marshal(out)
}

// decodeID accepts both numeric and string identifiers.
func decodeID(raw json.RawMessage) (string, error) {
	if bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10), nil
	}
	return n.String(), nil
}

// Credentials is the login request body.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// Registration is the register request body. Extra carries any additional
// profile fields the signup form collects.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	AcceptTerms     bool
	Role            string
	Extra           map[string]any
}

func (r Registration) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+7)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["first_name"] = r.FirstName
	out["last_name"] = r.LastName
	out["email"] = r.Email
	out["password"] = r.Password
	out["confirm_password"] = r.ConfirmPassword
	out["accept_terms"] = r.AcceptTerms
	if r.Role != "" {
		out["role"] = r.Role
	}
	return json.Marshal(out)
}

// AuthResponse covers login, refresh and status responses. Status may
// answer either with a full token payload or with just is_authenticated.
type AuthResponse struct {
	AccessToken     string `json:"access_token"`
	RefreshToken    string `json:"refresh_token,omitempty"`
	User            *User  `json:"user,omitempty"`
	ExpiresIn       int64  `json:"expires_in,omitempty"`
	ExpiresAt       string `json:"expires_at,omitempty"`
	IsAuthenticated *bool  `json:"is_authenticated,omitempty"`
	Message         string `json:"message,omitempty"`
}

// RegisterResponse is the register endpoint's answer.
type RegisterResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// refreshRequest is the refresh request body.
type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
