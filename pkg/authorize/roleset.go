package authorize

import "strings"

// RoleSet is a set of roles backed by a bitmask.
type RoleSet uint8

func (r Role) bit() RoleSet {
	switch r {
	case RoleClient:
		return 1 << 0
	case RoleDomicileEmployee:
		return 1 << 1
	case RoleLocationEmployee:
		return 1 << 2
	case RoleAdmin:
		return 1 << 3
	}
	return 0
}

func NewRoleSet(roles ...Role) RoleSet {
	var s RoleSet
	for _, r := range roles {
		s |= r.bit()
	}
	return s
}

func (s RoleSet) Has(r Role) bool {
	b := r.bit()
	return b != 0 && s&b == b
}

func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s RoleSet) String() string {
	names := make([]string, 0, len(AllRoles))
	for _, r := range s.Roles() {
		names = append(names, string(r))
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Requirement is what a protected route demands of a session: membership in
// Accepted, and the login page unauthenticated visitors are sent to.
type Requirement struct {
	Accepted RoleSet
	Login    Role
}

// Require accepts exactly one role and logs visitors in as that role.
func Require(role Role) Requirement {
	if !role.Valid() {
		panic("authorize: Require with unknown role " + string(role))
	}
	return Requirement{Accepted: NewRoleSet(role), Login: role}
}

// RequireAny accepts any of roles. The login role is explicit and must be
// one of the accepted roles.
func RequireAny(login Role, roles ...Role) Requirement {
	set := NewRoleSet(roles...)
	if !set.Has(login) {
		panic("authorize: login role " + string(login) + " is not in accepted set " + set.String())
	}
	return Requirement{Accepted: set, Login: login}
}

func (q Requirement) LoginPath() string {
	return "/login/" + string(q.Login)
}
