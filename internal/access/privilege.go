package access

import "strings"

// Privilege is the ordered authorization level a user holds on one view.
// The order is total: None < Read < Write < Admin.
type Privilege int

const (
	PrivilegeNone Privilege = iota
	PrivilegeRead
	PrivilegeWrite
	PrivilegeAdmin
)

var privilegeCodes = map[string]Privilege{
	"none":  PrivilegeNone,
	"read":  PrivilegeRead,
	"write": PrivilegeWrite,
	"admin": PrivilegeAdmin,
}

// ParsePrivilege maps a stored code to its level. Unknown codes resolve to
// None: a malformed grant must never elevate.
func ParsePrivilege(code string) Privilege {
	if p, ok := privilegeCodes[strings.ToLower(strings.TrimSpace(code))]; ok {
		return p
	}
	return PrivilegeNone
}

// ValidPrivilegeCode reports whether code names a known level exactly.
func ValidPrivilegeCode(code string) bool {
	_, ok := privilegeCodes[strings.ToLower(strings.TrimSpace(code))]
	return ok
}

func PrivilegeCodes() []string {
	return []string{"none", "read", "write", "admin"}
}

func (p Privilege) String() string {
	switch p {
	case PrivilegeRead:
		return "read"
	case PrivilegeWrite:
		return "write"
	case PrivilegeAdmin:
		return "admin"
	default:
		return "none"
	}
}

// AtLeast reports whether p satisfies the required level.
func (p Privilege) AtLeast(required Privilege) bool {
	return p >= required
}
