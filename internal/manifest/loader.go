package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/itchyny/gojq"
)

const (
	// DefaultEntriesQuery locates the migration entries inside package.json.
	DefaultEntriesQuery = ".peachjar.migrations"

	queryCompilationTemplateConstant   = "invalid manifest query %q: %w"
	readFailureTemplateConstant        = "unable to read manifest %s: %w"
	decodeFailureTemplateConstant      = "unable to parse manifest %s: %w"
	queryFailureTemplateConstant       = "unable to evaluate %q against manifest %s: %w"
	readerNotConfiguredMessageConstant = "manifest file reader not configured"
	fieldImageConstant                 = "image"
	fieldTagConstant                   = "tag"
	fieldSecretConstant                = "secret"
	entriesCollectionNameConstant      = "migrations"
	reasonRequiredConstant             = "is required"
	reasonEmptyStringConstant          = "is not allowed to be empty"
	reasonNotStringConstant            = "must be a string"
	reasonNotObjectConstant            = "must be an object"
	reasonNotArrayConstant             = "must be an array"
	entryFieldPathTemplateConstant     = "%s[%d].%s"
	entryPathTemplateConstant          = "%s[%d]"
	entryErrorTemplateConstant         = "%s %s"
)

// ErrFileReaderNotConfigured indicates the loader was constructed without a file reader.
var ErrFileReaderNotConfigured = errors.New(readerNotConfiguredMessageConstant)

// Entry is a single validated migration definition.
type Entry struct {
	Image  string
	Tag    string
	Secret string
}

// EntryError reports a structurally invalid manifest entry. Index is -1 when the
// entries value itself is malformed.
type EntryError struct {
	Index  int
	Field  string
	Reason string
}

// Path renders the location of the invalid value, e.g. migrations[1].secret.
func (entryError EntryError) Path() string {
	switch {
	case entryError.Index < 0:
		return entriesCollectionNameConstant
	case len(entryError.Field) == 0:
		return fmt.Sprintf(entryPathTemplateConstant, entriesCollectionNameConstant, entryError.Index)
	default:
		return fmt.Sprintf(entryFieldPathTemplateConstant, entriesCollectionNameConstant, entryError.Index, entryError.Field)
	}
}

// Error describes the invalid entry.
func (entryError EntryError) Error() string {
	return fmt.Sprintf(entryErrorTemplateConstant, entryError.Path(), entryError.Reason)
}

// FileReader reads whole files.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// OSFileReader reads from the local file system.
type OSFileReader struct{}

// ReadFile implements FileReader.
func (OSFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader reads and validates manifest entries.
type Loader struct {
	reader FileReader
	query  string
	code   *gojq.Code
}

// NewLoader compiles query (DefaultEntriesQuery when blank) and binds it to reader.
func NewLoader(reader FileReader, query string) (*Loader, error) {
	if reader == nil {
		return nil, ErrFileReaderNotConfigured
	}

	trimmedQuery := strings.TrimSpace(query)
	if len(trimmedQuery) == 0 {
		trimmedQuery = DefaultEntriesQuery
	}

	parsedQuery, parseError := gojq.Parse(trimmedQuery)
	if parseError != nil {
		return nil, fmt.Errorf(queryCompilationTemplateConstant, trimmedQuery, parseError)
	}
	code, compileError := gojq.Compile(parsedQuery)
	if compileError != nil {
		return nil, fmt.Errorf(queryCompilationTemplateConstant, trimmedQuery, compileError)
	}

	return &Loader{reader: reader, query: trimmedQuery, code: code}, nil
}

// Load reads the manifest at path and returns its validated entries in document order.
// Read, parse and query failures are returned wrapped; structural problems are EntryError values.
func (loader *Loader) Load(executionContext context.Context, path string) ([]Entry, error) {
	content, readError := loader.reader.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf(readFailureTemplateConstant, path, readError)
	}

	var document any
	if decodeError := json.Unmarshal(content, &document); decodeError != nil {
		return nil, fmt.Errorf(decodeFailureTemplateConstant, path, decodeError)
	}

	rawEntries, queryError := loader.evaluate(executionContext, document)
	if queryError != nil {
		return nil, fmt.Errorf(queryFailureTemplateConstant, loader.query, path, queryError)
	}

	return validateEntries(rawEntries)
}

func (loader *Loader) evaluate(executionContext context.Context, document any) (any, error) {
	iterator := loader.code.RunWithContext(executionContext, document)
	value, hasValue := iterator.Next()
	if !hasValue {
		return nil, nil
	}
	if evaluationError, isError := value.(error); isError {
		return nil, evaluationError
	}
	return value, nil
}

func validateEntries(rawEntries any) ([]Entry, error) {
	if rawEntries == nil {
		return []Entry{}, nil
	}

	entryList, isList := rawEntries.([]any)
	if !isList {
		return nil, EntryError{Index: -1, Reason: reasonNotArrayConstant}
	}

	entries := make([]Entry, 0, len(entryList))
	for entryIndex, rawEntry := range entryList {
		entryObject, isObject := rawEntry.(map[string]any)
		if !isObject {
			return nil, EntryError{Index: entryIndex, Reason: reasonNotObjectConstant}
		}

		image, imageError := requiredString(entryObject, entryIndex, fieldImageConstant)
		if imageError != nil {
			return nil, imageError
		}
		secret, secretError := requiredString(entryObject, entryIndex, fieldSecretConstant)
		if secretError != nil {
			return nil, secretError
		}
		tag, tagError := optionalString(entryObject, entryIndex, fieldTagConstant)
		if tagError != nil {
			return nil, tagError
		}

		entries = append(entries, Entry{Image: image, Tag: tag, Secret: secret})
	}
	return entries, nil
}

func requiredString(entryObject map[string]any, entryIndex int, field string) (string, error) {
	rawValue, exists := entryObject[field]
	if !exists || rawValue == nil {
		return "", EntryError{Index: entryIndex, Field: field, Reason: reasonRequiredConstant}
	}
	value, isString := rawValue.(string)
	if !isString {
		return "", EntryError{Index: entryIndex, Field: field, Reason: reasonNotStringConstant}
	}
	if len(strings.TrimSpace(value)) == 0 {
		return "", EntryError{Index: entryIndex, Field: field, Reason: reasonEmptyStringConstant}
	}
	return value, nil
}

func optionalString(entryObject map[string]any, entryIndex int, field string) (string, error) {
	rawValue, exists := entryObject[field]
	if !exists || rawValue == nil {
		return "", nil
	}
	value, isString := rawValue.(string)
	if !isString {
		return "", EntryError{Index: entryIndex, Field: field, Reason: reasonNotStringConstant}
	}
	return value, nil
}
