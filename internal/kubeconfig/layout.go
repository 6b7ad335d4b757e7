// Package kubeconfig locates the per-environment admin kubeconfig inside the
// infrastructure checkout.
package kubeconfig

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// DefaultInfrastructureDirectory is the infrastructure checkout next to the workspace.
	DefaultInfrastructureDirectory = "kilauea"
	// DefaultKubeconfigDirectory holds kubeconfig files inside each environment directory.
	DefaultKubeconfigDirectory = "kubectl_configs"

	kubefilesDirectoryConstant     = "kubefiles"
	kubeconfigFileTemplateConstant = "%s-kube-config-admins.yml"
)

// Layout describes where kubeconfig files live.
type Layout struct {
	InfrastructureDirectory string
	KubeconfigDirectory     string
}

// DefaultLayout returns the standard kilauea layout.
func DefaultLayout() Layout {
	return Layout{InfrastructureDirectory: DefaultInfrastructureDirectory, KubeconfigDirectory: DefaultKubeconfigDirectory}
}

// Sanitize fills blank fields with defaults.
func (layout Layout) Sanitize() Layout {
	sanitized := layout
	if len(strings.TrimSpace(sanitized.InfrastructureDirectory)) == 0 {
		sanitized.InfrastructureDirectory = DefaultInfrastructureDirectory
	}
	if len(strings.TrimSpace(sanitized.KubeconfigDirectory)) == 0 {
		sanitized.KubeconfigDirectory = DefaultKubeconfigDirectory
	}
	return sanitized
}

// Path returns <base>/<infrastructure>/kubefiles/<environment>/<kubeconfig directory>/<environment>-kube-config-admins.yml.
// base may be relative, e.g. "..".
func (layout Layout) Path(base string, environment string) string {
	sanitized := layout.Sanitize()
	return filepath.Join(
		base,
		sanitized.InfrastructureDirectory,
		kubefilesDirectoryConstant,
		environment,
		sanitized.KubeconfigDirectory,
		fmt.Sprintf(kubeconfigFileTemplateConstant, environment),
	)
}
