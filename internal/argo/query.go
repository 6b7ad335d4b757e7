package argo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

const (
	queryCompilationTemplateConstant = "invalid query %q: %w"
	emptyOutputMessageConstant       = "empty output"
	missingValueTemplateConstant     = "%s returned no value"
	nonStringValueTemplateConstant   = "%s returned %T, expected string"
	emptyValueTemplateConstant       = "%s returned an empty string"
)

// stringQuery extracts a single non-empty string from a JSON document.
type stringQuery struct {
	source string
	code   *gojq.Code
}

func compileStringQuery(source string) (stringQuery, error) {
	parsedQuery, parseError := gojq.Parse(source)
	if parseError != nil {
		return stringQuery{}, fmt.Errorf(queryCompilationTemplateConstant, source, parseError)
	}
	code, compileError := gojq.Compile(parsedQuery)
	if compileError != nil {
		return stringQuery{}, fmt.Errorf(queryCompilationTemplateConstant, source, compileError)
	}
	return stringQuery{source: source, code: code}, nil
}

func (query stringQuery) evaluate(executionContext context.Context, rawDocument string) (string, error) {
	if len(strings.TrimSpace(rawDocument)) == 0 {
		return "", errors.New(emptyOutputMessageConstant)
	}

	var document any
	if decodeError := json.Unmarshal([]byte(rawDocument), &document); decodeError != nil {
		return "", decodeError
	}

	iterator := query.code.RunWithContext(executionContext, document)
	value, hasValue := iterator.Next()
	if !hasValue || value == nil {
		return "", fmt.Errorf(missingValueTemplateConstant, query.source)
	}
	if evaluationError, isError := value.(error); isError {
		return "", evaluationError
	}

	text, isString := value.(string)
	if !isString {
		return "", fmt.Errorf(nonStringValueTemplateConstant, query.source, value)
	}
	if len(strings.TrimSpace(text)) == 0 {
		return "", fmt.Errorf(emptyValueTemplateConstant, query.source)
	}
	return text, nil
}
