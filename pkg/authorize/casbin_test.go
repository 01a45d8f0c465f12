package authorize

import (
	"context"
	"errors"
	"testing"
)

func newSeededAuthorization(t *testing.T) IAuthorization {
	t.Helper()

	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	auth, err := NewAuthorization(e)
	if err != nil {
		t.Fatalf("NewAuthorization() error = %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("SeedDefaultPolicies() error = %v", err)
	}
	return auth
}

func TestNewAuthorization(t *testing.T) {
	t.Run("returns error for nil enforcer", func(t *testing.T) {
		_, err := NewAuthorization(nil)
		if err == nil {
			t.Error("Expected error for nil enforcer")
		}
	})

	t.Run("seeding marks policy healthy", func(t *testing.T) {
		newSeededAuthorization(t)
		if !IsPolicyHealthy() {
			t.Error("Expected policy to be healthy after seeding")
		}
	})
}

func TestEnforce_DefaultPolicies(t *testing.T) {
	auth := newSeededAuthorization(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		role   Role
		object Resource
		action Action
		want   bool
	}{
		{"client books location", RoleClient, ResourceLocationAppointment, ActionCreate, true},
		{"client cancels domicile", RoleClient, ResourceDomicileAppointment, ActionCancel, true},
		{"client never updates status", RoleClient, ResourceLocationAppointment, ActionUpdateStatus, false},
		{"client never claims", RoleClient, ResourceDomicileAppointment, ActionClaim, false},
		{"domicile employee claims", RoleDomicileEmployee, ResourceDomicileAppointment, ActionClaim, true},
		{"domicile employee updates domicile", RoleDomicileEmployee, ResourceDomicileAppointment, ActionUpdateStatus, true},
		{"domicile employee cannot touch location", RoleDomicileEmployee, ResourceLocationAppointment, ActionUpdateStatus, false},
		{"location employee updates location", RoleLocationEmployee, ResourceLocationAppointment, ActionUpdateStatus, true},
		{"location employee has no claim step", RoleLocationEmployee, ResourceLocationAppointment, ActionClaim, false},
		{"location employee cannot touch domicile", RoleLocationEmployee, ResourceDomicileAppointment, ActionRead, false},
		{"admin anything", RoleAdmin, ResourceAccount, ActionDelete, true},
		{"admin updates domicile", RoleAdmin, ResourceDomicileAppointment, ActionUpdateStatus, true},
		{"client cannot delete accounts", RoleClient, ResourceAccount, ActionDelete, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := auth.Enforce(ctx, tt.role, tt.object, tt.action)
			if err != nil {
				t.Fatalf("Enforce() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Enforce(%s, %s, %s) = %v, want %v", tt.role, tt.object, tt.action, got, tt.want)
			}
		})
	}
}

func TestEnforce_InvalidArgs(t *testing.T) {
	auth := newSeededAuthorization(t)
	ctx := context.Background()

	if _, err := auth.Enforce(ctx, Role("root"), ResourceProfile, ActionRead); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("unknown role: error = %v, want ErrInvalidArgs", err)
	}
	if _, err := auth.Enforce(ctx, RoleClient, Resource("wallet"), ActionRead); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("unknown resource: error = %v, want ErrInvalidArgs", err)
	}
	if _, err := auth.Enforce(ctx, RoleClient, ResourceProfile, Action("fly")); !errors.Is(err, ErrInvalidArgs) {
		t.Errorf("unknown action: error = %v, want ErrInvalidArgs", err)
	}
}

func TestMustEnforce(t *testing.T) {
	auth := NewAuditedAuthorization(newSeededAuthorization(t), nil)
	ctx := context.Background()

	if err := auth.MustEnforce(ctx, RoleClient, ResourceAccount, ActionDelete); !errors.Is(err, ErrForbidden) {
		t.Errorf("MustEnforce() error = %v, want ErrForbidden", err)
	}
	if err := auth.MustEnforce(ctx, RoleAdmin, ResourceAccount, ActionDelete); err != nil {
		t.Errorf("MustEnforce() unexpected error = %v", err)
	}
}

func TestRemovePermission(t *testing.T) {
	auth := newSeededAuthorization(t)
	ctx := context.Background()

	removed, err := auth.RemovePermission(ctx, RoleClient, ResourceProfile, ActionUpdate)
	if err != nil || !removed {
		t.Fatalf("RemovePermission() = %v, %v", removed, err)
	}
	ok, err := auth.Enforce(ctx, RoleClient, ResourceProfile, ActionUpdate)
	if err != nil {
		t.Fatalf("Enforce() error = %v", err)
	}
	if ok {
		t.Error("permission should be gone after removal")
	}
}
