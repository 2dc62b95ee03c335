package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Role is a single capability an account can hold.
type Role uint16

const (
	RoleStaff Role = 1 << iota
	RoleSuperuser
	RoleDean
	RoleDeptHead
	RoleFaculty
	RoleStudent
)

// AllRoles lists every role in display order.
var AllRoles = []Role{RoleStaff, RoleSuperuser, RoleDean, RoleDeptHead, RoleFaculty, RoleStudent}

var roleNames = map[Role]string{
	RoleStaff:     "staff",
	RoleSuperuser: "superuser",
	RoleDean:      "dean",
	RoleDeptHead:  "dept_head",
	RoleFaculty:   "faculty",
	RoleStudent:   "student",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint16(r))
}

// ParseRole maps a role name (or one of the legacy flag names) to a Role.
func ParseRole(name string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "is_")
	switch key {
	case "headdept", "department_head", "depthead":
		key = "dept_head"
	}
	for role, roleName := range roleNames {
		if roleName == key {
			return role, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown role %q", ErrInvalidValue, name)
}

// Roles is the capability set of an account, stored as a bit set.
type Roles uint16

// NewRoles builds a set from the given roles.
func NewRoles(roles ...Role) Roles {
	var set Roles
	for _, r := range roles {
		set = set.Add(r)
	}
	return set
}

func (s Roles) Has(r Role) bool { return uint16(s)&uint16(r) != 0 }

func (s Roles) Add(r Role) Roles { return Roles(uint16(s) | uint16(r)) }

func (s Roles) Remove(r Role) Roles { return Roles(uint16(s) &^ uint16(r)) }

// HasAny reports whether the set holds at least one of the given roles.
func (s Roles) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Names returns the role names in AllRoles order.
func (s Roles) Names() []string {
	names := make([]string, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			names = append(names, r.String())
		}
	}
	return names
}

func (s Roles) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *Roles) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("roles must be a list of role names: %w", err)
	}
	var set Roles
	for _, name := range names {
		role, err := ParseRole(name)
		if err != nil {
			return err
		}
		set = set.Add(role)
	}
	*s = set
	return nil
}

// ParseRoleNames converts a list of names to a Roles set.
func ParseRoleNames(names []string) (Roles, error) {
	var set Roles
	for _, name := range names {
		role, err := ParseRole(name)
		if err != nil {
			return 0, err
		}
		set = set.Add(role)
	}
	return set, nil
}

type Account struct {
	ID        uint       `gorm:"primaryKey;column:id" json:"id"`
	FirstName string     `gorm:"column:first_name;size:255" json:"first_name"`
	LastName  string     `gorm:"column:last_name;size:255" json:"last_name"`
	Email     string     `gorm:"column:email;size:255;uniqueIndex;not null" json:"email"`
	Password  string     `gorm:"column:password;size:100" json:"-"`
	IsActive  bool       `gorm:"column:is_active;default:true" json:"is_active"`
	Roles     Roles      `gorm:"column:roles;not null;default:0" json:"roles"`
	LastLogin *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// FullName joins first and last name.
func (a Account) FullName() string {
	return strings.TrimSpace(strings.Join([]string{strings.TrimSpace(a.FirstName), strings.TrimSpace(a.LastName)}, " "))
}
