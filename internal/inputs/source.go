// Package inputs resolves named run inputs from the CI environment and from
// explicit command-line assignments.
package inputs

import (
	"fmt"
	"os"
	"strings"
)

const (
	actionsInputPrefixConstant        = "INPUT_"
	inputNameSpaceConstant            = " "
	inputNameSpaceReplacementConstant = "_"
	requiredInputTemplateConstant     = "Input required and not supplied: %s"
)

// Options adjusts a single input lookup.
type Options struct {
	Required bool
}

// Source looks up a named input. Values are trimmed; an absent input yields an
// empty string unless Required is set, in which case RequiredInputError is returned.
type Source interface {
	GetInput(name string, options Options) (string, error)
}

// RequiredInputError reports a required input that was missing or blank.
type RequiredInputError struct {
	Name string
}

// Error describes the missing input.
func (requiredError RequiredInputError) Error() string {
	return fmt.Sprintf(requiredInputTemplateConstant, requiredError.Name)
}

// EnvironmentLookup resolves environment variables.
type EnvironmentLookup func(key string) (string, bool)

// ActionsEnvironmentSource reads GitHub Actions style INPUT_<NAME> variables.
type ActionsEnvironmentSource struct {
	lookup EnvironmentLookup
}

// NewActionsEnvironmentSource constructs a source reading the process environment when lookup is nil.
func NewActionsEnvironmentSource(lookup EnvironmentLookup) ActionsEnvironmentSource {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return ActionsEnvironmentSource{lookup: lookup}
}

// VariableName returns the environment variable holding the named input.
func VariableName(name string) string {
	return actionsInputPrefixConstant + strings.ToUpper(strings.ReplaceAll(name, inputNameSpaceConstant, inputNameSpaceReplacementConstant))
}

// GetInput implements Source.
func (source ActionsEnvironmentSource) GetInput(name string, options Options) (string, error) {
	rawValue, _ := source.lookup(VariableName(name))
	return finalize(name, rawValue, options)
}

// MapSource serves inputs from an in-memory assignment map keyed by input name.
type MapSource struct {
	values map[string]string
}

// NewMapSource copies values into a MapSource.
func NewMapSource(values map[string]string) MapSource {
	duplicated := make(map[string]string, len(values))
	for name, value := range values {
		duplicated[name] = value
	}
	return MapSource{values: duplicated}
}

// GetInput implements Source.
func (source MapSource) GetInput(name string, options Options) (string, error) {
	return finalize(name, source.values[name], options)
}

// ChainSource returns the first non-empty value found across its sources in order.
type ChainSource struct {
	sources []Source
}

// NewChainSource constructs a ChainSource, skipping nil sources.
func NewChainSource(sources ...Source) ChainSource {
	filtered := make([]Source, 0, len(sources))
	for _, source := range sources {
		if source != nil {
			filtered = append(filtered, source)
		}
	}
	return ChainSource{sources: filtered}
}

// GetInput implements Source.
func (source ChainSource) GetInput(name string, options Options) (string, error) {
	for _, candidate := range source.sources {
		value, lookupError := candidate.GetInput(name, Options{})
		if lookupError != nil {
			return "", lookupError
		}
		if len(value) > 0 {
			return value, nil
		}
	}
	return finalize(name, "", options)
}

func finalize(name string, rawValue string, options Options) (string, error) {
	trimmedValue := strings.TrimSpace(rawValue)
	if options.Required && len(trimmedValue) == 0 {
		return "", RequiredInputError{Name: name}
	}
	return trimmedValue, nil
}
