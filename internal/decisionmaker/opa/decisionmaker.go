package opa

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/CameronXie/canteen-admin/internal/decisionmaker"
	"github.com/CameronXie/canteen-admin/internal/policyretriever"
)

const (
	moduleName = "decisionmaker"
)

type decisionMaker struct {
	policyRetriever policyretriever.PolicyRetriever
	query           string

	mu       sync.Mutex
	policy   string
	prepared *rego.PreparedEvalQuery
}

// MakeDecision evaluates the policy against the roles, action and resource of the request.
// The prepared query is reused until the retrieved policy text changes.
func (d *decisionMaker) MakeDecision(ctx context.Context, req *decisionmaker.DecisionRequest) (bool, error) {
	query, err := d.prepare(ctx)
	if err != nil {
		return false, err
	}

	roles := req.Roles
	if roles == nil {
		roles = []string{}
	}

	result, err := query.Eval(ctx, rego.EvalInput(map[string]any{
		"subject":  req.Subject,
		"roles":    roles,
		"action":   req.Action,
		"resource": req.Resource,
	}))
	if err != nil {
		return false, fmt.Errorf("failed to evaluate query: %w", err)
	}

	if len(result) == 0 || len(result[0].Expressions) == 0 {
		return false, fmt.Errorf("failed to evaluate query: %s is undefined", d.query)
	}

	allowed, ok := result[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("failed to evaluate query: %s returned %T, expected bool", d.query, result[0].Expressions[0].Value)
	}

	return allowed, nil
}

func (d *decisionMaker) prepare(ctx context.Context) (*rego.PreparedEvalQuery, error) {
	policy, err := d.policyRetriever.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.prepared != nil && d.policy == policy {
		return d.prepared, nil
	}

	query, err := rego.New(rego.Module(moduleName, policy), rego.Query(d.query)).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query: %w", err)
	}

	d.policy = policy
	d.prepared = &query

	return d.prepared, nil
}

// NewDecisionMaker initializes a DecisionMaker with the provided PolicyRetriever and Rego query.
func NewDecisionMaker(policyRetriever policyretriever.PolicyRetriever, query string) decisionmaker.DecisionMaker {
	return &decisionMaker{
		policyRetriever: policyRetriever,
		query:           query,
	}
}
