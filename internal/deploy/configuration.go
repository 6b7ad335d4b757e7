package deploy

import (
	"strings"

	"github.com/temirov/argomigrate/internal/argo"
	"github.com/temirov/argomigrate/internal/kubeconfig"
	"github.com/temirov/argomigrate/internal/migrations"
)

const (
	configurationEngineBinaryKeyConstant            = "engine_binary"
	configurationInfrastructureDirectoryKeyConstant = "infrastructure_directory"
	configurationKubeconfigDirectoryKeyConstant     = "kubeconfig_directory"
	configurationWorkflowsDirectoryKeyConstant      = "workflows_directory"
	configurationRegistryHostKeyConstant            = "registry_host"
	configurationPullSecretKeyConstant              = "pull_secret"
	configurationTimeoutKeyConstant                 = "timeout"
	configurationExtraSetStringsKeyConstant         = "extra_set_strings"
	configurationSetStringSlotsKeyConstant          = "set_string_slots"
	configurationKeySeparatorConstant               = "."
)

// CommandConfiguration captures persisted configuration for the deploy command.
type CommandConfiguration struct {
	EngineBinary            string   `mapstructure:"engine_binary"`
	InfrastructureDirectory string   `mapstructure:"infrastructure_directory"`
	KubeconfigDirectory     string   `mapstructure:"kubeconfig_directory"`
	WorkflowsDirectory      string   `mapstructure:"workflows_directory"`
	RegistryHost            string   `mapstructure:"registry_host"`
	PullSecret              string   `mapstructure:"pull_secret"`
	Timeout                 string   `mapstructure:"timeout"`
	ExtraSetStrings         []string `mapstructure:"extra_set_strings"`
	SetStringSlots          int      `mapstructure:"set_string_slots"`
}

// DefaultCommandConfiguration returns baseline configuration values for deployments.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		EngineBinary:            DefaultEngineBinary,
		InfrastructureDirectory: kubeconfig.DefaultInfrastructureDirectory,
		KubeconfigDirectory:     kubeconfig.DefaultKubeconfigDirectory,
		WorkflowsDirectory:      argo.DefaultWorkflowsDirectory,
		RegistryHost:            migrations.DefaultRegistryHost,
		PullSecret:              migrations.DefaultPullSecret,
		Timeout:                 DefaultTimeout,
		ExtraSetStrings:         nil,
		SetStringSlots:          DefaultSetStringSlotCount,
	}
}

// DefaultConfigurationValues produces Viper defaults for the deploy command under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationEngineBinaryKeyConstant:            defaults.EngineBinary,
		prefix + configurationInfrastructureDirectoryKeyConstant: defaults.InfrastructureDirectory,
		prefix + configurationKubeconfigDirectoryKeyConstant:     defaults.KubeconfigDirectory,
		prefix + configurationWorkflowsDirectoryKeyConstant:      defaults.WorkflowsDirectory,
		prefix + configurationRegistryHostKeyConstant:            defaults.RegistryHost,
		prefix + configurationPullSecretKeyConstant:              defaults.PullSecret,
		prefix + configurationTimeoutKeyConstant:                 defaults.Timeout,
		prefix + configurationExtraSetStringsKeyConstant:         []string{},
		prefix + configurationSetStringSlotsKeyConstant:          defaults.SetStringSlots,
	}
}

// Sanitize trims configured values and removes empty extra assignments.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.EngineBinary = strings.TrimSpace(configuration.EngineBinary)
	sanitized.InfrastructureDirectory = strings.TrimSpace(configuration.InfrastructureDirectory)
	sanitized.KubeconfigDirectory = strings.TrimSpace(configuration.KubeconfigDirectory)
	sanitized.WorkflowsDirectory = strings.TrimSpace(configuration.WorkflowsDirectory)
	sanitized.RegistryHost = strings.TrimSpace(configuration.RegistryHost)
	sanitized.PullSecret = strings.TrimSpace(configuration.PullSecret)
	sanitized.Timeout = strings.TrimSpace(configuration.Timeout)

	sanitized.ExtraSetStrings = nil
	for _, assignment := range configuration.ExtraSetStrings {
		if trimmed := strings.TrimSpace(assignment); len(trimmed) > 0 {
			sanitized.ExtraSetStrings = append(sanitized.ExtraSetStrings, trimmed)
		}
	}
	return sanitized
}

// DeployerSettings maps the configuration onto deployer settings.
func (configuration CommandConfiguration) DeployerSettings() Settings {
	return Settings{
		EngineBinary:       configuration.EngineBinary,
		WorkflowsDirectory: configuration.WorkflowsDirectory,
		Kubeconfig: kubeconfig.Layout{
			InfrastructureDirectory: configuration.InfrastructureDirectory,
			KubeconfigDirectory:     configuration.KubeconfigDirectory,
		},
		Plan: PlanSettings{
			RegistryHost:       configuration.RegistryHost,
			PullSecret:         configuration.PullSecret,
			Timeout:            configuration.Timeout,
			ExtraSetStrings:    configuration.ExtraSetStrings,
			SetStringSlotCount: configuration.SetStringSlots,
		},
	}
}
