package opa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedPolicyRetriever_GetPolicy(t *testing.T) {
	policy, err := NewEmbeddedPolicyRetriever().GetPolicy()

	require.NoError(t, err)
	assert.Contains(t, policy, "package canteen.authz")
}

func TestFilePolicyRetriever_GetPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "authz.rego")
	require.NoError(t, os.WriteFile(path, []byte("package canteen.authz\n\nallow := true\n"), 0o600))

	cases := map[string]struct {
		path        string
		expected    string
		expectedErr bool
	}{
		"existing file": {
			path:     path,
			expected: "package canteen.authz\n\nallow := true\n",
		},
		"missing file": {
			path:        filepath.Join(dir, "missing.rego"),
			expectedErr: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			policy, err := NewFilePolicyRetriever(tc.path).GetPolicy()

			if tc.expectedErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, policy)
		})
	}
}
