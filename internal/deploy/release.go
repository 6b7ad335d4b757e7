package deploy

import (
	"fmt"
	"strings"

	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/migrations"
	"github.com/temirov/argomigrate/internal/runcontext"
)

const (
	// DefaultEngineBinary is the Helm executable.
	DefaultEngineBinary = "helm"
	// DefaultTimeout is passed to helm --timeout when no timeout input is set.
	DefaultTimeout = "600"
	// DefaultSetStringSlotCount is the highest setString<N> input consulted.
	DefaultSetStringSlotCount = 10

	// Deploy input names.
	InputTimeout         = "timeout"
	InputImagePullSecret = "imagePullSecret"
	InputChartPath       = "helmChartPath"
	InputReleaseName     = "helmReleaseName"
	InputDockerImage     = "dockerImage"
	InputDockerTag       = "dockerTag"

	setStringInputTemplateConstant        = "setString%d"
	defaultChartPathTemplateConstant      = "./%s"
	defaultImageTemplateConstant          = "%s/%s/%s/%s"
	imageTagAssignmentTemplateConstant    = "image.tag=%s"
	gitRevisionAssignmentTemplateConstant = "gitsha=%q"
	imageNameAssignmentTemplateConstant   = "image.registryAndName=%s"
	pullSecretAssignmentTemplateConstant  = "image.pullSecret=%s"
	ownerPrefixSeparatorConstant          = "-"
	kubeconfigFlagConstant                = "--kubeconfig"
	upgradeSubcommandConstant             = "upgrade"
	setStringFlagConstant                 = "--set-string"
	waitFlagConstant                      = "--wait"
	timeoutFlagConstant                   = "--timeout"
)

// Release describes one helm upgrade.
type Release struct {
	Name        string
	ChartPath   string
	Image       string
	Tag         string
	Revision    string
	PullSecret  string
	Timeout     string
	SetStrings  []string
	Environment string
}

// Arguments returns the helm argument vector for the release.
func (release Release) Arguments(kubeconfigPath string) []string {
	arguments := []string{
		kubeconfigFlagConstant, kubeconfigPath,
		upgradeSubcommandConstant, release.Name, release.ChartPath,
		setStringFlagConstant, fmt.Sprintf(imageTagAssignmentTemplateConstant, release.Tag),
		setStringFlagConstant, fmt.Sprintf(gitRevisionAssignmentTemplateConstant, release.Revision),
		setStringFlagConstant, fmt.Sprintf(imageNameAssignmentTemplateConstant, release.Image),
		setStringFlagConstant, fmt.Sprintf(pullSecretAssignmentTemplateConstant, release.PullSecret),
	}
	for _, assignment := range release.SetStrings {
		arguments = append(arguments, setStringFlagConstant, assignment)
	}
	return append(arguments, waitFlagConstant, timeoutFlagConstant, release.Timeout)
}

// ServiceName strips a leading "<owner>-" from the repository name.
func ServiceName(runContext runcontext.RunContext) string {
	repository := runContext.Repository
	return strings.TrimPrefix(repository.Name, repository.Owner+ownerPrefixSeparatorConstant)
}

// PlanSettings supplies the defaults a release falls back to.
type PlanSettings struct {
	RegistryHost       string
	PullSecret         string
	Timeout            string
	ExtraSetStrings    []string
	SetStringSlotCount int
}

// DefaultPlanSettings returns the standard release defaults.
func DefaultPlanSettings() PlanSettings {
	return PlanSettings{
		RegistryHost:       migrations.DefaultRegistryHost,
		PullSecret:         migrations.DefaultPullSecret,
		Timeout:            DefaultTimeout,
		SetStringSlotCount: DefaultSetStringSlotCount,
	}
}

// PlanRelease reads the optional deploy inputs and fills every blank one with its default.
// Configured extra assignments precede the setString<N> inputs.
func PlanRelease(source inputs.Source, settings PlanSettings, deployEnvironment string, runContext runcontext.RunContext) (Release, error) {
	serviceName := ServiceName(runContext)
	repository := runContext.Repository

	values := map[string]string{
		InputTimeout:         settings.Timeout,
		InputImagePullSecret: settings.PullSecret,
		InputChartPath:       fmt.Sprintf(defaultChartPathTemplateConstant, serviceName),
		InputReleaseName:     serviceName,
		InputDockerImage:     fmt.Sprintf(defaultImageTemplateConstant, settings.RegistryHost, repository.Owner, repository.Name, serviceName),
		InputDockerTag:       runContext.RevisionTag(),
	}
	for _, inputName := range []string{InputTimeout, InputImagePullSecret, InputChartPath, InputReleaseName, InputDockerImage, InputDockerTag} {
		value, inputError := source.GetInput(inputName, inputs.Options{})
		if inputError != nil {
			return Release{}, inputError
		}
		if len(value) > 0 {
			values[inputName] = value
		}
	}

	setStrings := make([]string, 0, len(settings.ExtraSetStrings))
	for _, assignment := range settings.ExtraSetStrings {
		if trimmed := strings.TrimSpace(assignment); len(trimmed) > 0 {
			setStrings = append(setStrings, trimmed)
		}
	}
	for slotIndex := 1; slotIndex <= settings.SetStringSlotCount; slotIndex++ {
		assignment, inputError := source.GetInput(fmt.Sprintf(setStringInputTemplateConstant, slotIndex), inputs.Options{})
		if inputError != nil {
			return Release{}, inputError
		}
		if len(assignment) > 0 {
			setStrings = append(setStrings, assignment)
		}
	}

	return Release{
		Name:        values[InputReleaseName],
		ChartPath:   values[InputChartPath],
		Image:       values[InputDockerImage],
		Tag:         values[InputDockerTag],
		Revision:    runContext.ShortRevision(),
		PullSecret:  values[InputImagePullSecret],
		Timeout:     values[InputTimeout],
		SetStrings:  setStrings,
		Environment: deployEnvironment,
	}, nil
}
