package authorize

import (
	"errors"
	"fmt"
	"strings"
)

type Action string
type Resource string
type Role string

// ----------------------------
// Roles
// ----------------------------
//
// The four portal roles. Role is closed: anything the backend reports that
// does not parse into one of these is treated as a malformed identity.

const (
	RoleClient           Role = "client"
	RoleDomicileEmployee Role = "domicile_employee"
	RoleLocationEmployee Role = "location_employee"
	RoleAdmin            Role = "admin"
)

var ErrUnknownRole = errors.New("unknown role")

// AllRoles lists every role in a stable order.
var AllRoles = []Role{RoleClient, RoleDomicileEmployee, RoleLocationEmployee, RoleAdmin}

var RoleDisplayNames = map[Role]string{
	RoleClient:           "Client",
	RoleDomicileEmployee: "Mobile washer",
	RoleLocationEmployee: "In-house washer",
	RoleAdmin:            "Administrator",
}

// roleAliases maps the spellings used by the backend and by the route surface
// (extern/intern) onto the canonical roles.
var roleAliases = map[string]Role{
	"client":            RoleClient,
	"domicile_employee": RoleDomicileEmployee,
	"domicile":          RoleDomicileEmployee,
	"extern_employee":   RoleDomicileEmployee,
	"extern":            RoleDomicileEmployee,
	"location_employee": RoleLocationEmployee,
	"location":          RoleLocationEmployee,
	"intern_employee":   RoleLocationEmployee,
	"intern":            RoleLocationEmployee,
	"admin":             RoleAdmin,
}

func ParseRole(s string) (Role, error) {
	r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r.bit() != 0
}

func (r Role) IsEmployee() bool {
	switch r {
	case RoleDomicileEmployee, RoleLocationEmployee:
		return true
	case RoleClient, RoleAdmin:
		return false
	}
	return false
}

// IsStaff reports whether the role sees client details on appointments.
func (r Role) IsStaff() bool {
	return r.IsEmployee() || r == RoleAdmin
}

// ----------------------------
// Actions
// ----------------------------

const (
	ActionCreate       Action = "create"
	ActionRead         Action = "read"
	ActionList         Action = "list"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionClaim        Action = "claim"
	ActionUpdateStatus Action = "update_status"
	ActionCancel       Action = "cancel"

	WildcardAction Action = "*"
)

var KnownActions = map[Action]struct{}{
	ActionCreate: {}, ActionRead: {}, ActionList: {}, ActionUpdate: {}, ActionDelete: {},
	ActionClaim: {}, ActionUpdateStatus: {}, ActionCancel: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	ResourceLocationAppointment Resource = "appointment:location"
	ResourceDomicileAppointment Resource = "appointment:domicile"
	ResourceProfile             Resource = "profile"
	ResourceAccount             Resource = "account"
	ResourceStats               Resource = "stats"

	WildcardResource Resource = "*"
)

var KnownResources = map[Resource]struct{}{
	ResourceLocationAppointment: {}, ResourceDomicileAppointment: {},
	ResourceProfile: {}, ResourceAccount: {}, ResourceStats: {},
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

// Permission rows: p, role, resource, action
type PermissionPolicy struct {
	Subject Role
	Object  Resource
	Action  Action
}
