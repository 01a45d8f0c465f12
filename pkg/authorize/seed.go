package authorize

import (
	"context"
	"log/slog"
)

// DefaultPolicies is the portal's view of who may do what. The backend
// enforces its own rules; these only keep the portal from offering or
// sending requests a role can never make.
func DefaultPolicies() []PermissionPolicy {
	return []PermissionPolicy{
		// Admin: everything
		{RoleAdmin, WildcardResource, WildcardAction},

		// Client: book, browse and cancel own appointments of both kinds
		{RoleClient, ResourceLocationAppointment, ActionCreate},
		{RoleClient, ResourceLocationAppointment, ActionRead},
		{RoleClient, ResourceLocationAppointment, ActionList},
		{RoleClient, ResourceLocationAppointment, ActionCancel},
		{RoleClient, ResourceDomicileAppointment, ActionCreate},
		{RoleClient, ResourceDomicileAppointment, ActionRead},
		{RoleClient, ResourceDomicileAppointment, ActionList},
		{RoleClient, ResourceDomicileAppointment, ActionCancel},
		{RoleClient, ResourceProfile, ActionRead},
		{RoleClient, ResourceProfile, ActionUpdate},

		// Domicile employee: claim and work domicile jobs
		{RoleDomicileEmployee, ResourceDomicileAppointment, ActionRead},
		{RoleDomicileEmployee, ResourceDomicileAppointment, ActionList},
		{RoleDomicileEmployee, ResourceDomicileAppointment, ActionClaim},
		{RoleDomicileEmployee, ResourceDomicileAppointment, ActionUpdateStatus},
		{RoleDomicileEmployee, ResourceDomicileAppointment, ActionCancel},
		{RoleDomicileEmployee, ResourceProfile, ActionRead},
		{RoleDomicileEmployee, ResourceProfile, ActionUpdate},
		{RoleDomicileEmployee, ResourceStats, ActionRead},

		// Location employee: every location job, no claim step
		{RoleLocationEmployee, ResourceLocationAppointment, ActionRead},
		{RoleLocationEmployee, ResourceLocationAppointment, ActionList},
		{RoleLocationEmployee, ResourceLocationAppointment, ActionUpdateStatus},
		{RoleLocationEmployee, ResourceLocationAppointment, ActionCancel},
		{RoleLocationEmployee, ResourceProfile, ActionRead},
		{RoleLocationEmployee, ResourceProfile, ActionUpdate},
		{RoleLocationEmployee, ResourceStats, ActionRead},
	}
}

// SeedDefaultPolicies sets up the baseline RBAC policies.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	added := 0
	for _, p := range DefaultPolicies() {
		ok, err := auth.AddPermission(ctx, p.Subject, p.Object, p.Action)
		if err != nil {
			logger.Error("failed to seed policy",
				"role", p.Subject, "resource", p.Object, "action", p.Action, "error", err)
			return err
		}
		if ok {
			added++
		}
	}

	policyLoadHealthy.Store(true)
	logger.Debug("seeded default policies", "added", added)
	return nil
}
