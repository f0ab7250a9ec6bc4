package opa

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/CameronXie/canteen-admin/internal/decisionmaker"
	prp "github.com/CameronXie/canteen-admin/internal/policyretriever/opa"
)

type MockPolicyRetriever struct {
	mock.Mock
}

func (m *MockPolicyRetriever) GetPolicy() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func TestMakeDecision(t *testing.T) {
	policy, err := prp.NewEmbeddedPolicyRetriever().GetPolicy()
	assert.NoError(t, err)

	cases := map[string]struct {
		mockPolicy string
		errPolicy  error
		request    *decisionmaker.DecisionRequest
		expected   bool
		wantErr    string
	}{
		"admin reads orders": {
			mockPolicy: policy,
			request:    &decisionmaker.DecisionRequest{Roles: []string{"admin"}, Action: "get", Resource: "/api/v1/orders"},
			expected:   true,
		},
		"admin updates nested resource": {
			mockPolicy: policy,
			request: &decisionmaker.DecisionRequest{
				Roles:    []string{"user", "admin"},
				Action:   "patch",
				Resource: "/api/v1/orders/0b7e5a4c-1d2e-4f30-9a8b-7c6d5e4f3a21/status",
			},
			expected: true,
		},
		"user is denied": {
			mockPolicy: policy,
			request:    &decisionmaker.DecisionRequest{Roles: []string{"user"}, Action: "get", Resource: "/api/v1/orders"},
			expected:   false,
		},
		"no roles": {
			mockPolicy: policy,
			request:    &decisionmaker.DecisionRequest{Action: "get", Resource: "/api/v1/me"},
			expected:   false,
		},
		"admin outside api prefix": {
			mockPolicy: policy,
			request:    &decisionmaker.DecisionRequest{Roles: []string{"admin"}, Action: "get", Resource: "/internal/debug"},
			expected:   false,
		},
		"policy retriever error": {
			errPolicy: errors.New("some error"),
			request:   &decisionmaker.DecisionRequest{Roles: []string{"admin"}},
			wantErr:   "failed to get policy: some error",
		},
		"query initialisation error": {
			mockPolicy: "",
			request:    &decisionmaker.DecisionRequest{Roles: []string{"admin"}},
			wantErr:    "failed to prepare query",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			policyRetrieverMock := new(MockPolicyRetriever)
			policyRetrieverMock.On("GetPolicy").Return(tc.mockPolicy, tc.errPolicy)

			got, err := NewDecisionMaker(policyRetrieverMock, prp.Query).MakeDecision(context.TODO(), tc.request)

			if tc.wantErr != "" {
				assert.ErrorContains(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}

			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestMakeDecision_ReusesPreparedQuery(t *testing.T) {
	policyRetrieverMock := new(MockPolicyRetriever)
	policyRetrieverMock.On("GetPolicy").Return("package canteen.authz\n\nallow := input.action == \"get\"\n", nil)

	d := NewDecisionMaker(policyRetrieverMock, prp.Query).(*decisionMaker)

	for _, action := range []string{"get", "delete"} {
		allowed, err := d.MakeDecision(context.TODO(), &decisionmaker.DecisionRequest{Action: action})
		assert.NoError(t, err)
		assert.Equal(t, action == "get", allowed)
	}

	first := d.prepared
	_, err := d.MakeDecision(context.TODO(), &decisionmaker.DecisionRequest{Action: "get"})
	assert.NoError(t, err)
	assert.Same(t, first, d.prepared)
	policyRetrieverMock.AssertNumberOfCalls(t, "GetPolicy", 3)
}
