package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	scpUserDelimiterConstant            = "@"
	scpPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	slugTemplateConstant                = "%s/%s"
	remoteURLParseErrorTemplateConstant = "%q: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
	invalidSlugMessageConstant          = "expected owner/name"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolNone  RemoteProtocol = RemoteProtocol("")
)

// RepositoryCoordinates identifies a hosted repository.
type RepositoryCoordinates struct {
	Protocol RemoteProtocol
	Host     string
	Owner    string
	Name     string
}

// Slug renders the coordinates as owner/name.
func (coordinates RepositoryCoordinates) Slug() string {
	return fmt.Sprintf(slugTemplateConstant, coordinates.Owner, coordinates.Name)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRepositorySlug parses the owner/name form used by GITHUB_REPOSITORY.
func ParseRepositorySlug(slug string) (RepositoryCoordinates, error) {
	trimmedSlug := strings.TrimSpace(slug)
	owner, name, found := strings.Cut(trimmedSlug, pathSeparatorConstant)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, pathSeparatorConstant) {
		return RepositoryCoordinates{}, RemoteURLParseError{Input: slug, Message: invalidSlugMessageConstant}
	}
	return RepositoryCoordinates{Owner: owner, Name: strings.TrimSuffix(name, gitSuffixConstant)}, nil
}

// ParseRemoteURL converts ssh://, scp-style (git@host:owner/name) and http(s) remotes into coordinates.
func ParseRemoteURL(remote string) (RepositoryCoordinates, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RepositoryCoordinates{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseURLRemote(trimmedRemote, RemoteProtocolSSH)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant), strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parseURLRemote(trimmedRemote, RemoteProtocolHTTPS)
	case strings.Contains(trimmedRemote, scpUserDelimiterConstant) && strings.Contains(trimmedRemote, scpPathDelimiterConstant):
		return parseSCPRemote(trimmedRemote)
	default:
		return RepositoryCoordinates{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
}

func parseURLRemote(remote string, protocol RemoteProtocol) (RepositoryCoordinates, error) {
	parsedURL, parseError := url.Parse(remote)
	if parseError != nil || len(parsedURL.Host) == 0 {
		return RepositoryCoordinates{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return buildCoordinates(remote, protocol, parsedURL.Hostname(), parsedURL.Path)
}

func parseSCPRemote(remote string) (RepositoryCoordinates, error) {
	userSplitIndex := strings.Index(remote, scpUserDelimiterConstant)
	hostAndPath := remote[userSplitIndex+1:]
	host, path, found := strings.Cut(hostAndPath, scpPathDelimiterConstant)
	if !found || len(host) == 0 {
		return RepositoryCoordinates{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return buildCoordinates(remote, RemoteProtocolSSH, host, path)
}

func buildCoordinates(remote string, protocol RemoteProtocol, host string, path string) (RepositoryCoordinates, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != 2 {
		return RepositoryCoordinates{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	owner := segments[0]
	name := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(name) == 0 {
		return RepositoryCoordinates{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	return RepositoryCoordinates{Protocol: protocol, Host: host, Owner: owner, Name: name}, nil
}
