package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

const (
	RoleAdmin      = "ROLE_ADMIN"
	RoleSuperAdmin = "ROLE_SUPER_ADMIN"
	RoleAttendee   = "ROLE_ATTENDEE"
)

// Roles is a JSON role list column. Legacy rows holding a bare string are read as one role.
type Roles []string

func (r Roles) Has(role string) bool {
	for _, have := range r {
		if have == role {
			return true
		}
	}
	return false
}

// With returns r plus role, keeping entries unique.
func (r Roles) With(role string) Roles {
	if r.Has(role) {
		return r
	}
	out := make(Roles, 0, len(r)+1)
	out = append(out, r...)
	return append(out, role)
}

func (r Roles) Value() (driver.Value, error) {
	if r == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (r *Roles) Scan(value interface{}) error {
	if r == nil {
		return fmt.Errorf("model.Roles: Scan on nil pointer")
	}
	if value == nil {
		*r = Roles{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case []byte:
		raw = string(v)
	case string:
		raw = v
	default:
		return fmt.Errorf("model.Roles: unsupported Scan type %T", value)
	}

	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		*r = Roles{}
		return nil
	}

	var arr []string
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		*r = arr
		return nil
	}

	var single string
	if err := json.Unmarshal([]byte(raw), &single); err == nil && single != "" {
		*r = Roles{single}
		return nil
	}

	return fmt.Errorf("model.Roles: cannot decode %q", raw)
}
