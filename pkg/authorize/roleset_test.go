package authorize

import "testing"

func TestRoleSet(t *testing.T) {
	s := NewRoleSet(RoleAdmin, RoleLocationEmployee)

	for _, r := range AllRoles {
		want := r == RoleAdmin || r == RoleLocationEmployee
		if got := s.Has(r); got != want {
			t.Errorf("Has(%q) = %v, want %v", r, got, want)
		}
	}
	if s.Has(Role("")) {
		t.Error("empty role must never be a member")
	}
	if got := s.String(); got != "{location_employee,admin}" {
		t.Errorf("String() = %q", got)
	}
}

func TestRequire(t *testing.T) {
	q := Require(RoleAdmin)
	if q.Login != RoleAdmin || !q.Accepted.Has(RoleAdmin) || q.Accepted.Has(RoleClient) {
		t.Fatalf("Require(admin) = %+v", q)
	}
	if q.LoginPath() != "/login/admin" {
		t.Errorf("LoginPath() = %q", q.LoginPath())
	}
}

func TestRequireAny(t *testing.T) {
	q := RequireAny(RoleClient, RoleClient, RoleAdmin)
	if q.LoginPath() != "/login/client" {
		t.Errorf("LoginPath() = %q", q.LoginPath())
	}
	if !q.Accepted.Has(RoleAdmin) {
		t.Error("admin should be accepted")
	}

	t.Run("login outside accepted set panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		RequireAny(RoleAdmin, RoleClient, RoleDomicileEmployee)
	})
}
