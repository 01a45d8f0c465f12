package authorize

import (
	"sync/atomic"

	casbin "github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// modelText is a flat role -> (resource, action) model. Roles are the
// subjects themselves; there is no user grouping on the portal side.
const modelText = `[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// policyLoadHealthy reports whether the seeded policy is in place.
var policyLoadHealthy atomic.Bool

// IsPolicyHealthy returns true once default policies have been seeded.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// NewEnforcer creates an in-memory Casbin enforcer. Policies are seeded by
// SeedDefaultPolicies; nothing is persisted.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m)
}
