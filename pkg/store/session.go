package store

import (
	"encoding/json"
	"errors"
	"strings"
)

// Role is the account type reported by the backend on login.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleClient   Role = "CLIENT"
)

// ParseRole accepts the role names the backend has been seen to emit,
// case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployee:
		return RoleEmployee, true
	case RoleClient:
		return RoleClient, true
	default:
		return "", false
	}
}

// Label is the human title for the role, used in headers.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "System Administrator"
	case RoleEmployee:
		return "Employee"
	case RoleClient:
		return "Client"
	default:
		return string(r)
	}
}

// User describes the logged in account. The JSON shape matches what the web
// dashboards kept under the zplusUser key so both can share a backend.
type User struct {
	SelfID   string `json:"selfId"`
	Name     string `json:"name,omitempty"`
	UserType Role   `json:"userType"`
}

// DisplayName falls back to the self id when no name was returned.
func (u User) DisplayName() string {
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.SelfID
}

// Session pairs the bearer token with the user it was issued to.
type Session struct {
	Token string
	User  User
}

var errNoToken = errors.New("store: session token required")

func encodeUser(u User) ([]byte, error) {
	return json.Marshal(u)
}

func decodeUser(data []byte) (User, error) {
	var u User
	if err := json.Unmarshal(data, &u); err != nil {
		return User{}, err
	}
	role, ok := ParseRole(string(u.UserType))
	if !ok {
		return User{}, errors.New("store: unknown user type " + string(u.UserType))
	}
	u.UserType = role
	return u, nil
}
