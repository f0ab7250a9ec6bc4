package casbin

import (
	"context"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/casbin/casbin/v2/persist"

	"github.com/CameronXie/canteen-admin/internal/decisionmaker"
)

// Model grants a role an action on every path matched by the policy's key pattern. "*" allows any action.
const Model = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch(r.obj, p.obj) && (p.act == "*" || r.act == p.act)
`

type decisionMaker struct {
	enforcer casbin.IEnforcer
}

// MakeDecision evaluates a decision request for each role of the subject using the enforcer.
// It first loads the latest policy, then allows the request when any role is permitted.
func (d *decisionMaker) MakeDecision(_ context.Context, req *decisionmaker.DecisionRequest) (bool, error) {
	err := d.enforcer.LoadPolicy()
	if err != nil {
		return false, err
	}

	for _, role := range req.Roles {
		allowed, err := d.enforcer.Enforce(role, req.Resource, req.Action)
		if err != nil {
			return false, err
		}
		if allowed {
			return true, nil
		}
	}

	return false, nil
}

// NewDecisionMaker creates a DecisionMaker using the provided Casbin configuration and policy repository adapter.
// Rules in seed are added to the repository unless already present.
func NewDecisionMaker(config string, policyRepo persist.Adapter, seed ...[]string) (decisionmaker.DecisionMaker, error) {
	m, err := model.NewModelFromString(config)
	if err != nil {
		return nil, err
	}

	enforcer, err := casbin.NewEnforcer(m, policyRepo)
	if err != nil {
		return nil, err
	}

	for _, rule := range seed {
		if _, err := enforcer.AddPolicy(rule); err != nil {
			return nil, err
		}
	}

	return &decisionMaker{enforcer: enforcer}, nil
}
