package gitrepo

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/argomigrate/internal/execshell"
)

const (
	revParseSubcommandConstant           = "rev-parse"
	headReferenceConstant                = "HEAD"
	remoteSubcommandConstant             = "remote"
	remoteGetURLSubcommandConstant       = "get-url"
	defaultRemoteNameConstant            = "origin"
	executorNotConfiguredMessageConstant = "git executor not configured"
	emptyRevisionMessageConstant         = "git rev-parse returned an empty revision"
)

// ErrGitExecutorNotConfigured indicates the inspector was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Inspector reads commit and remote information from a local checkout.
type Inspector struct {
	executor   GitExecutor
	remoteName string
}

// NewInspector constructs an Inspector querying the origin remote.
func NewInspector(executor GitExecutor) (*Inspector, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Inspector{executor: executor, remoteName: defaultRemoteNameConstant}, nil
}

// HeadRevision returns the full commit SHA checked out in repositoryPath.
func (inspector *Inspector) HeadRevision(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{revParseSubcommandConstant, headReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}

	revision := strings.TrimSpace(executionResult.StandardOutput)
	if len(revision) == 0 {
		return "", errors.New(emptyRevisionMessageConstant)
	}
	return revision, nil
}

// OriginRepository returns the coordinates of the origin remote of repositoryPath.
func (inspector *Inspector) OriginRepository(executionContext context.Context, repositoryPath string) (RepositoryCoordinates, error) {
	executionResult, executionError := inspector.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{remoteSubcommandConstant, remoteGetURLSubcommandConstant, inspector.remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return RepositoryCoordinates{}, executionError
	}
	return ParseRemoteURL(executionResult.StandardOutput)
}
