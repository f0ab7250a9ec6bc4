package opa

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/CameronXie/canteen-admin/internal/policyretriever"
)

// Query is the rule the embedded policy exposes its decision on
const Query = "data.canteen.authz.allow"

//go:embed authz.rego
var defaultPolicy string

type embeddedPolicyRetriever struct{}

// GetPolicy returns the policy compiled into the binary
func (embeddedPolicyRetriever) GetPolicy() (string, error) {
	return defaultPolicy, nil
}

// NewEmbeddedPolicyRetriever returns the built-in admin policy
func NewEmbeddedPolicyRetriever() policyretriever.PolicyRetriever {
	return embeddedPolicyRetriever{}
}

type filePolicyRetriever struct {
	path string
}

// GetPolicy reads the policy file on every call so edits apply without a restart.
func (p *filePolicyRetriever) GetPolicy() (string, error) {
	policy, err := os.ReadFile(p.path)
	if err != nil {
		return "", fmt.Errorf("read policy file %s: %w", p.path, err)
	}

	return string(policy), nil
}

// NewFilePolicyRetriever creates a PolicyRetriever backed by a rego file on disk
func NewFilePolicyRetriever(path string) policyretriever.PolicyRetriever {
	return &filePolicyRetriever{path: path}
}
