package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrIDConflict = errors.New("id already exists")
)

const (
	RoleCEO     = "CEO"
	RoleVP      = "VP"
	RoleManager = "MANAGER"
	RoleLackey  = "LACKEY"
)

// Roles lists the accepted roles in the order they are reported to clients.
var Roles = []string{RoleCEO, RoleVP, RoleManager, RoleLackey}

// HireDateLayout is the ISO 8601 calendar date accepted for HireDate.
const HireDateLayout = "2006-01-02"

type Employee struct {
	ID        string
	FirstName string
	LastName  string
	HireDate  string
	Role      string
	Quote     string
	Joke      string
}

func NormalizeRole(role string) string {
	return strings.ToUpper(role)
}
