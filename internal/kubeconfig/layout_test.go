package kubeconfig_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/kubeconfig"
)

func TestLayoutPath(testInstance *testing.T) {
	testCases := []struct {
		name        string
		layout      kubeconfig.Layout
		base        string
		environment string
		expected    string
	}{
		{
			name:        "default_layout_absolute_base",
			layout:      kubeconfig.DefaultLayout(),
			base:        "/github/workspace",
			environment: "kauai",
			expected:    "/github/workspace/kilauea/kubefiles/kauai/kubectl_configs/kauai-kube-config-admins.yml",
		},
		{
			name:        "relative_parent_base",
			layout:      kubeconfig.Layout{},
			base:        "..",
			environment: "kauai",
			expected:    "../kilauea/kubefiles/kauai/kubectl_configs/kauai-kube-config-admins.yml",
		},
		{
			name:        "custom_directories",
			layout:      kubeconfig.Layout{InfrastructureDirectory: "infra", KubeconfigDirectory: "kubeconfig-github-actions"},
			base:        "/w",
			environment: "emerald",
			expected:    "/w/infra/kubefiles/emerald/kubeconfig-github-actions/emerald-kube-config-admins.yml",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, testCase.layout.Path(testCase.base, testCase.environment))
		})
	}
}
