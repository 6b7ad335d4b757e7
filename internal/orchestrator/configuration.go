package orchestrator

import (
	"strings"

	"github.com/temirov/argomigrate/internal/argo"
	"github.com/temirov/argomigrate/internal/kubeconfig"
	"github.com/temirov/argomigrate/internal/manifest"
	"github.com/temirov/argomigrate/internal/migrations"
)

const (
	configurationEngineBinaryKeyConstant              = "engine_binary"
	configurationInfrastructureDirectoryKeyConstant   = "infrastructure_directory"
	configurationKubeconfigDirectoryKeyConstant       = "kubeconfig_directory"
	configurationWorkflowsDirectoryKeyConstant        = "workflows_directory"
	configurationWorkflowTemplateKeyConstant          = "workflow_template"
	configurationManifestFileKeyConstant              = "manifest_file"
	configurationManifestQueryKeyConstant             = "manifest_query"
	configurationHandleQueryKeyConstant               = "handle_query"
	configurationStatusQueryKeyConstant               = "status_query"
	configurationRegistryHostKeyConstant              = "registry_host"
	configurationPullSecretKeyConstant                = "pull_secret"
	configurationIncludeRegistryParametersKeyConstant = "include_registry_parameters"
	configurationIndexedSlotsKeyConstant              = "indexed_slots"
	configurationMaxParallelKeyConstant               = "max_parallel"
	configurationKeySeparatorConstant                 = "."
)

// CommandConfiguration captures persisted configuration for the migrate command.
type CommandConfiguration struct {
	EngineBinary              string `mapstructure:"engine_binary"`
	InfrastructureDirectory   string `mapstructure:"infrastructure_directory"`
	KubeconfigDirectory       string `mapstructure:"kubeconfig_directory"`
	WorkflowsDirectory        string `mapstructure:"workflows_directory"`
	WorkflowTemplate          string `mapstructure:"workflow_template"`
	ManifestFile              string `mapstructure:"manifest_file"`
	ManifestQuery             string `mapstructure:"manifest_query"`
	HandleQuery               string `mapstructure:"handle_query"`
	StatusQuery               string `mapstructure:"status_query"`
	RegistryHost              string `mapstructure:"registry_host"`
	PullSecret                string `mapstructure:"pull_secret"`
	IncludeRegistryParameters bool   `mapstructure:"include_registry_parameters"`
	IndexedSlots              int    `mapstructure:"indexed_slots"`
	MaxParallel               int    `mapstructure:"max_parallel"`
}

// DefaultCommandConfiguration returns baseline configuration values for migrations.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		EngineBinary:              argo.DefaultEngineBinary,
		InfrastructureDirectory:   kubeconfig.DefaultInfrastructureDirectory,
		KubeconfigDirectory:       kubeconfig.DefaultKubeconfigDirectory,
		WorkflowsDirectory:        argo.DefaultWorkflowsDirectory,
		WorkflowTemplate:          migrations.DefaultWorkflowTemplatePath,
		ManifestFile:              migrations.DefaultManifestFileName,
		ManifestQuery:             manifest.DefaultEntriesQuery,
		HandleQuery:               argo.DefaultHandleQuery,
		StatusQuery:               argo.DefaultStatusQuery,
		RegistryHost:              migrations.DefaultRegistryHost,
		PullSecret:                migrations.DefaultPullSecret,
		IncludeRegistryParameters: true,
		IndexedSlots:              migrations.DefaultIndexedSlotCount,
		MaxParallel:               0,
	}
}

// DefaultConfigurationValues produces Viper defaults for the migrate command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationEngineBinaryKeyConstant:              defaults.EngineBinary,
		prefix + configurationInfrastructureDirectoryKeyConstant:   defaults.InfrastructureDirectory,
		prefix + configurationKubeconfigDirectoryKeyConstant:       defaults.KubeconfigDirectory,
		prefix + configurationWorkflowsDirectoryKeyConstant:        defaults.WorkflowsDirectory,
		prefix + configurationWorkflowTemplateKeyConstant:          defaults.WorkflowTemplate,
		prefix + configurationManifestFileKeyConstant:              defaults.ManifestFile,
		prefix + configurationManifestQueryKeyConstant:             defaults.ManifestQuery,
		prefix + configurationHandleQueryKeyConstant:               defaults.HandleQuery,
		prefix + configurationStatusQueryKeyConstant:               defaults.StatusQuery,
		prefix + configurationRegistryHostKeyConstant:              defaults.RegistryHost,
		prefix + configurationPullSecretKeyConstant:                defaults.PullSecret,
		prefix + configurationIncludeRegistryParametersKeyConstant: defaults.IncludeRegistryParameters,
		prefix + configurationIndexedSlotsKeyConstant:              defaults.IndexedSlots,
		prefix + configurationMaxParallelKeyConstant:               defaults.MaxParallel,
	}
}

// Sanitize trims configured text values. Blank values are filled later by the components.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.EngineBinary = strings.TrimSpace(configuration.EngineBinary)
	sanitized.InfrastructureDirectory = strings.TrimSpace(configuration.InfrastructureDirectory)
	sanitized.KubeconfigDirectory = strings.TrimSpace(configuration.KubeconfigDirectory)
	sanitized.WorkflowsDirectory = strings.TrimSpace(configuration.WorkflowsDirectory)
	sanitized.WorkflowTemplate = strings.TrimSpace(configuration.WorkflowTemplate)
	sanitized.ManifestFile = strings.TrimSpace(configuration.ManifestFile)
	sanitized.ManifestQuery = strings.TrimSpace(configuration.ManifestQuery)
	sanitized.HandleQuery = strings.TrimSpace(configuration.HandleQuery)
	sanitized.StatusQuery = strings.TrimSpace(configuration.StatusQuery)
	sanitized.RegistryHost = strings.TrimSpace(configuration.RegistryHost)
	sanitized.PullSecret = strings.TrimSpace(configuration.PullSecret)
	if sanitized.MaxParallel < 0 {
		sanitized.MaxParallel = 0
	}
	return sanitized
}

// ResolverSettings maps the configuration onto migration resolver settings.
func (configuration CommandConfiguration) ResolverSettings() migrations.Settings {
	return migrations.Settings{
		WorkflowTemplatePath:      configuration.WorkflowTemplate,
		ManifestFileName:          configuration.ManifestFile,
		RegistryHost:              configuration.RegistryHost,
		PullSecret:                configuration.PullSecret,
		IncludeRegistryParameters: configuration.IncludeRegistryParameters,
		IndexedSlotCount:          configuration.IndexedSlots,
	}
}

// SubmitterSettings maps the configuration onto workflow engine settings.
func (configuration CommandConfiguration) SubmitterSettings() argo.Settings {
	return argo.Settings{
		EngineBinary:       configuration.EngineBinary,
		WorkflowsDirectory: configuration.WorkflowsDirectory,
		Kubeconfig:         configuration.KubeconfigLayout(),
		HandleQuery:        configuration.HandleQuery,
		StatusQuery:        configuration.StatusQuery,
	}
}

// KubeconfigLayout returns the configured kubeconfig layout.
func (configuration CommandConfiguration) KubeconfigLayout() kubeconfig.Layout {
	return kubeconfig.Layout{
		InfrastructureDirectory: configuration.InfrastructureDirectory,
		KubeconfigDirectory:     configuration.KubeconfigDirectory,
	}
}
