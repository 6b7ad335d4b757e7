package migrations

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/argomigrate/internal/inputs"
	"github.com/temirov/argomigrate/internal/manifest"
	"github.com/temirov/argomigrate/internal/runcontext"
)

const (
	// DefaultWorkflowTemplatePath is the migration workflow template relative to the workflows directory.
	DefaultWorkflowTemplatePath = "workflows/migrations/migrate.yml"
	// DefaultManifestFileName is the project file consulted when no explicit slots are set.
	DefaultManifestFileName = "package.json"
	// DefaultRegistryHost hosts the migration images.
	DefaultRegistryHost = "docker.pkg.github.com"
	// DefaultPullSecret is the cluster secret used to pull images from the registry.
	DefaultPullSecret = "peachjar-eks-github-pull-secret"
	// DefaultIndexedSlotCount is the highest indexed input slot consulted.
	DefaultIndexedSlotCount = 3

	// Workflow parameter names.
	ParameterImage               = "image"
	ParameterDatabase            = "dbsecret"
	ParameterRepository          = "repository"
	ParameterPullSecret          = "pullsecret"
	imageReferenceFormatConstant = "%s:%s"

	inputImageConstant                   = "mig_image"
	inputTagConstant                     = "mig_tag"
	inputSecretConstant                  = "mig_secret"
	indexedInputTemplateConstant         = "%s_%d"
	firstIndexedSlotConstant             = 2
	repositoryReferenceTemplateConstant  = "%s/%s/%s"
	incompleteSlotTemplateConstant       = "%s is required when %s is set"
	manifestReaderMissingMessageConstant = "manifest reader not configured"
	jobResolvedLogMessageConstant        = "migration resolved"
	manifestFallbackLogMessageConstant   = "no explicit migrations; reading manifest"
	logFieldJobNameConstant              = "job"
	logFieldEnvironmentConstant          = "environment"
	logFieldSourceConstant               = "source"
	logFieldManifestPathConstant         = "manifest"
	sourceExplicitInputsConstant         = "inputs"
	sourceManifestConstant               = "manifest"
)

// ErrManifestReaderNotConfigured indicates the resolver was constructed without a manifest reader.
var ErrManifestReaderNotConfigured = errors.New(manifestReaderMissingMessageConstant)

// ManifestReader loads manifest entries from a file.
type ManifestReader interface {
	Load(executionContext context.Context, path string) ([]manifest.Entry, error)
}

// Settings tunes job construction.
type Settings struct {
	WorkflowTemplatePath      string
	ManifestFileName          string
	RegistryHost              string
	PullSecret                string
	IncludeRegistryParameters bool
	IndexedSlotCount          int
}

// DefaultSettings returns the settings matching the standard migration workflow.
func DefaultSettings() Settings {
	return Settings{
		WorkflowTemplatePath:      DefaultWorkflowTemplatePath,
		ManifestFileName:          DefaultManifestFileName,
		RegistryHost:              DefaultRegistryHost,
		PullSecret:                DefaultPullSecret,
		IncludeRegistryParameters: true,
		IndexedSlotCount:          DefaultIndexedSlotCount,
	}
}

func (settings Settings) sanitize() Settings {
	defaults := DefaultSettings()
	sanitized := settings
	sanitized.WorkflowTemplatePath = valueOrDefault(settings.WorkflowTemplatePath, defaults.WorkflowTemplatePath)
	sanitized.ManifestFileName = valueOrDefault(settings.ManifestFileName, defaults.ManifestFileName)
	sanitized.RegistryHost = valueOrDefault(settings.RegistryHost, defaults.RegistryHost)
	sanitized.PullSecret = valueOrDefault(settings.PullSecret, defaults.PullSecret)
	if sanitized.IndexedSlotCount < firstIndexedSlotConstant-1 {
		sanitized.IndexedSlotCount = defaults.IndexedSlotCount
	}
	return sanitized
}

// Request carries the per-run values shared by every job.
type Request struct {
	DeployEnvironment string
	RunContext        runcontext.RunContext
}

// Resolver builds the ordered job list for a run.
type Resolver struct {
	settings       Settings
	manifestReader ManifestReader
	logger         *zap.Logger
}

// NewResolver constructs a Resolver. Blank settings fall back to DefaultSettings values.
func NewResolver(settings Settings, manifestReader ManifestReader, logger *zap.Logger) (*Resolver, error) {
	if manifestReader == nil {
		return nil, ErrManifestReaderNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{settings: settings.sanitize(), manifestReader: manifestReader, logger: logger}, nil
}

type slotDefinition struct {
	image  string
	tag    string
	secret string
}

// Resolve returns the jobs for the run. Explicit input slots take precedence; the manifest is
// consulted only when the first slot is empty. An empty result is ErrNoMigrationsSpecified.
func (resolver *Resolver) Resolve(executionContext context.Context, source inputs.Source, request Request) ([]Job, error) {
	firstSlot, firstSlotError := readSlot(source, inputImageConstant, inputTagConstant, inputSecretConstant)
	if firstSlotError != nil {
		return nil, firstSlotError
	}

	var jobs []Job
	if firstSlot != nil {
		jobs = append(jobs, resolver.buildJob(*firstSlot, request, sourceExplicitInputsConstant))
		for slotIndex := firstIndexedSlotConstant; slotIndex <= resolver.settings.IndexedSlotCount; slotIndex++ {
			indexedSlot, indexedError := readIndexedSlot(source, slotIndex)
			if indexedError != nil {
				return nil, indexedError
			}
			if indexedSlot != nil {
				jobs = append(jobs, resolver.buildJob(*indexedSlot, request, sourceExplicitInputsConstant))
			}
		}
	} else {
		manifestJobs, manifestError := resolver.resolveManifest(executionContext, request)
		if manifestError != nil {
			return nil, manifestError
		}
		jobs = manifestJobs
	}

	if len(jobs) == 0 {
		return nil, ErrNoMigrationsSpecified
	}
	return jobs, nil
}

func (resolver *Resolver) resolveManifest(executionContext context.Context, request Request) ([]Job, error) {
	manifestPath := filepath.Join(request.RunContext.Workspace, resolver.settings.ManifestFileName)
	resolver.logger.Debug(manifestFallbackLogMessageConstant, zap.String(logFieldManifestPathConstant, manifestPath))

	entries, loadError := resolver.manifestReader.Load(executionContext, manifestPath)
	if loadError != nil {
		var entryError manifest.EntryError
		if errors.As(loadError, &entryError) {
			return nil, ValidationError{FieldName: entryError.Path(), Message: entryError.Reason}
		}
		return nil, ManifestError{Path: manifestPath, Cause: loadError}
	}

	jobs := make([]Job, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, resolver.buildJob(slotDefinition{image: entry.Image, tag: entry.Tag, secret: entry.Secret}, request, sourceManifestConstant))
	}
	return jobs, nil
}

func (resolver *Resolver) buildJob(slot slotDefinition, request Request, source string) Job {
	tag := slot.tag
	if len(tag) == 0 {
		tag = request.RunContext.RevisionTag()
	}

	parameters := NewParameters(
		Parameter{Name: ParameterImage, Value: fmt.Sprintf(imageReferenceFormatConstant, slot.image, tag)},
		Parameter{Name: ParameterDatabase, Value: slot.secret},
	)
	if resolver.settings.IncludeRegistryParameters {
		repository := request.RunContext.Repository
		parameters = parameters.
			With(ParameterRepository, fmt.Sprintf(repositoryReferenceTemplateConstant, resolver.settings.RegistryHost, repository.Owner, repository.Name)).
			With(ParameterPullSecret, resolver.settings.PullSecret)
	}

	resolver.logger.Debug(
		jobResolvedLogMessageConstant,
		zap.String(logFieldJobNameConstant, slot.image),
		zap.String(logFieldEnvironmentConstant, request.DeployEnvironment),
		zap.String(logFieldSourceConstant, source),
	)

	return Job{
		Name:                 slot.image,
		DeployEnvironment:    request.DeployEnvironment,
		Parameters:           parameters,
		WorkflowTemplatePath: resolver.settings.WorkflowTemplatePath,
		WorkingDirectory:     request.RunContext.Workspace,
	}
}

// readSlot returns nil when the slot is empty and a ConfigurationError when only
// one of image and secret is set.
func readSlot(source inputs.Source, imageName string, tagName string, secretName string) (*slotDefinition, error) {
	image, imageError := source.GetInput(imageName, inputs.Options{})
	if imageError != nil {
		return nil, imageError
	}
	tag, tagError := source.GetInput(tagName, inputs.Options{})
	if tagError != nil {
		return nil, tagError
	}
	secret, secretError := source.GetInput(secretName, inputs.Options{})
	if secretError != nil {
		return nil, secretError
	}

	switch {
	case len(image) == 0 && len(secret) == 0:
		return nil, nil
	case len(image) == 0:
		return nil, inputs.ConfigurationError{FieldName: imageName, Message: fmt.Sprintf(incompleteSlotTemplateConstant, imageName, secretName)}
	case len(secret) == 0:
		return nil, inputs.ConfigurationError{FieldName: secretName, Message: fmt.Sprintf(incompleteSlotTemplateConstant, secretName, imageName)}
	default:
		return &slotDefinition{image: image, tag: tag, secret: secret}, nil
	}
}

// readIndexedSlot includes a slot only when both image and secret are present.
func readIndexedSlot(source inputs.Source, slotIndex int) (*slotDefinition, error) {
	slot, slotError := readSlot(
		source,
		fmt.Sprintf(indexedInputTemplateConstant, inputImageConstant, slotIndex),
		fmt.Sprintf(indexedInputTemplateConstant, inputTagConstant, slotIndex),
		fmt.Sprintf(indexedInputTemplateConstant, inputSecretConstant, slotIndex),
	)
	var configurationError inputs.ConfigurationError
	if errors.As(slotError, &configurationError) {
		return nil, nil
	}
	return slot, slotError
}

func valueOrDefault(value string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
