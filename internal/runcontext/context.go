// Package runcontext determines the commit, repository and workspace a run operates on.
package runcontext

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/argomigrate/internal/gitrepo"
	pathutils "github.com/temirov/argomigrate/internal/utils/path"
)

const (
	githubShaEnvironmentVariableConstant        = "GITHUB_SHA"
	githubRepositoryEnvironmentVariableConstant = "GITHUB_REPOSITORY"
	githubWorkspaceEnvironmentVariableConstant  = "GITHUB_WORKSPACE"
	shortRevisionLengthConstant                 = 7
	revisionTagPrefixConstant                   = "git-"
	workspaceResolutionErrorTemplateConstant    = "unable to resolve workspace: %w"
	revisionResolutionErrorTemplateConstant     = "unable to determine commit sha: %w"
	repositoryResolutionErrorTemplateConstant   = "unable to determine repository: %w"
	inspectorMissingMessageConstant             = "no git inspector configured"
	revisionFallbackLogMessageConstant          = "commit sha resolved from git"
	repositoryFallbackLogMessageConstant        = "repository resolved from git remote"
	logFieldRevisionConstant                    = "sha"
	logFieldRepositoryConstant                  = "repository"
	logFieldWorkspaceConstant                   = "workspace"
)

// RunContext describes the commit and repository a run operates on.
type RunContext struct {
	Revision   string
	Repository gitrepo.RepositoryCoordinates
	Workspace  string
}

// ShortRevision returns the first seven characters of the revision, or all of it when shorter.
func (runContext RunContext) ShortRevision() string {
	if len(runContext.Revision) <= shortRevisionLengthConstant {
		return runContext.Revision
	}
	return runContext.Revision[:shortRevisionLengthConstant]
}

// RevisionTag returns the image tag derived from the revision, git-<sha7>.
func (runContext RunContext) RevisionTag() string {
	return revisionTagPrefixConstant + runContext.ShortRevision()
}

// RepositoryInspector reads repository information from a checkout.
type RepositoryInspector interface {
	HeadRevision(executionContext context.Context, repositoryPath string) (string, error)
	OriginRepository(executionContext context.Context, repositoryPath string) (gitrepo.RepositoryCoordinates, error)
}

// EnvironmentLookup resolves environment variables.
type EnvironmentLookup func(key string) (string, bool)

// Provider resolves the RunContext from CI variables, falling back to git.
type Provider struct {
	lookup            EnvironmentLookup
	inspector         RepositoryInspector
	pathResolver      *pathutils.Resolver
	logger            *zap.Logger
	workspaceOverride string
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithWorkspaceOverride pins the workspace, taking precedence over GITHUB_WORKSPACE.
func WithWorkspaceOverride(workspace string) ProviderOption {
	return func(provider *Provider) {
		provider.workspaceOverride = strings.TrimSpace(workspace)
	}
}

// WithPathResolver replaces the resolver used to anchor relative workspaces.
func WithPathResolver(resolver *pathutils.Resolver) ProviderOption {
	return func(provider *Provider) {
		if resolver != nil {
			provider.pathResolver = resolver
		}
	}
}

// NewProvider constructs a Provider. A nil lookup reads the process environment; a nil
// inspector disables the git fallbacks.
func NewProvider(lookup EnvironmentLookup, inspector RepositoryInspector, logger *zap.Logger, options ...ProviderOption) *Provider {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	provider := &Provider{
		lookup:       lookup,
		inspector:    inspector,
		pathResolver: pathutils.NewResolver(),
		logger:       logger,
	}
	for _, option := range options {
		option(provider)
	}
	return provider
}

// Workspace resolves the workspace directory without consulting git.
func (provider *Provider) Workspace() (string, error) {
	candidate := provider.workspaceOverride
	if len(candidate) == 0 {
		candidate = provider.environmentValue(githubWorkspaceEnvironmentVariableConstant)
	}
	workspace, resolveError := provider.pathResolver.Absolute(candidate)
	if resolveError != nil {
		return "", fmt.Errorf(workspaceResolutionErrorTemplateConstant, resolveError)
	}
	return workspace, nil
}

// RunContext resolves the full run context.
func (provider *Provider) RunContext(executionContext context.Context) (RunContext, error) {
	workspace, workspaceError := provider.Workspace()
	if workspaceError != nil {
		return RunContext{}, workspaceError
	}

	revision, revisionError := provider.resolveRevision(executionContext, workspace)
	if revisionError != nil {
		return RunContext{}, fmt.Errorf(revisionResolutionErrorTemplateConstant, revisionError)
	}

	repository, repositoryError := provider.resolveRepository(executionContext, workspace)
	if repositoryError != nil {
		return RunContext{}, fmt.Errorf(repositoryResolutionErrorTemplateConstant, repositoryError)
	}

	return RunContext{Revision: revision, Repository: repository, Workspace: workspace}, nil
}

func (provider *Provider) resolveRevision(executionContext context.Context, workspace string) (string, error) {
	if revision := provider.environmentValue(githubShaEnvironmentVariableConstant); len(revision) > 0 {
		return revision, nil
	}
	if provider.inspector == nil {
		return "", errors.New(inspectorMissingMessageConstant)
	}

	revision, inspectError := provider.inspector.HeadRevision(executionContext, workspace)
	if inspectError != nil {
		return "", inspectError
	}
	provider.logger.Debug(revisionFallbackLogMessageConstant, zap.String(logFieldRevisionConstant, revision), zap.String(logFieldWorkspaceConstant, workspace))
	return revision, nil
}

func (provider *Provider) resolveRepository(executionContext context.Context, workspace string) (gitrepo.RepositoryCoordinates, error) {
	if slug := provider.environmentValue(githubRepositoryEnvironmentVariableConstant); len(slug) > 0 {
		return gitrepo.ParseRepositorySlug(slug)
	}
	if provider.inspector == nil {
		return gitrepo.RepositoryCoordinates{}, errors.New(inspectorMissingMessageConstant)
	}

	coordinates, inspectError := provider.inspector.OriginRepository(executionContext, workspace)
	if inspectError != nil {
		return gitrepo.RepositoryCoordinates{}, inspectError
	}
	provider.logger.Debug(repositoryFallbackLogMessageConstant, zap.String(logFieldRepositoryConstant, coordinates.Slug()))
	return coordinates, nil
}

func (provider *Provider) environmentValue(key string) string {
	value, _ := provider.lookup(key)
	return strings.TrimSpace(value)
}
