package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/manifest"
)

const testManifestFileNameConstant = "package.json"

func writeManifest(testInstance *testing.T, content string) string {
	testInstance.Helper()
	manifestPath := filepath.Join(testInstance.TempDir(), testManifestFileNameConstant)
	require.NoError(testInstance, os.WriteFile(manifestPath, []byte(content), 0o600))
	return manifestPath
}

func TestLoaderLoad(testInstance *testing.T) {
	testCases := []struct {
		name            string
		content         string
		expectedEntries []manifest.Entry
		expectedError   string
	}{
		{
			name: "valid_entries_keep_order",
			content: `{"name":"svc","peachjar":{"migrations":[
				{"image":"svc-foobar-migrations","secret":"svc-foobar-db"},
				{"image":"svc-audit-migrations","secret":"svc-audit-db","tag":"v2"}
			]}}`,
			expectedEntries: []manifest.Entry{
				{Image: "svc-foobar-migrations", Secret: "svc-foobar-db"},
				{Image: "svc-audit-migrations", Secret: "svc-audit-db", Tag: "v2"},
			},
		},
		{
			name:            "absent_key_is_empty",
			content:         `{"name":"svc"}`,
			expectedEntries: []manifest.Entry{},
		},
		{
			name:            "empty_array",
			content:         `{"peachjar":{"migrations":[]}}`,
			expectedEntries: []manifest.Entry{},
		},
		{
			name: "missing_secret_rejects_batch",
			content: `{"peachjar":{"migrations":[
				{"image":"a","secret":"s"},
				{"image":"b","secret":"s"},
				{"image":"c"}
			]}}`,
			expectedError: "migrations[2].secret is required",
		},
		{
			name:          "empty_image",
			content:       `{"peachjar":{"migrations":[{"image":" ","secret":"s"}]}}`,
			expectedError: "migrations[0].image is not allowed to be empty",
		},
		{
			name:          "non_string_tag",
			content:       `{"peachjar":{"migrations":[{"image":"a","secret":"s","tag":7}]}}`,
			expectedError: "migrations[0].tag must be a string",
		},
		{
			name:          "entry_not_object",
			content:       `{"peachjar":{"migrations":["a"]}}`,
			expectedError: "migrations[0] must be an object",
		},
		{
			name:          "entries_not_array",
			content:       `{"peachjar":{"migrations":{"image":"a"}}}`,
			expectedError: "migrations must be an array",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			loader, creationError := manifest.NewLoader(manifest.OSFileReader{}, "")
			require.NoError(testInstance, creationError)

			entries, loadError := loader.Load(context.Background(), writeManifest(testInstance, testCase.content))
			if len(testCase.expectedError) > 0 {
				var entryError manifest.EntryError
				require.ErrorAs(testInstance, loadError, &entryError)
				require.EqualError(testInstance, loadError, testCase.expectedError)
				require.Nil(testInstance, entries)
				return
			}
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedEntries, entries)
		})
	}
}

func TestLoaderReadAndParseFailures(testInstance *testing.T) {
	loader, creationError := manifest.NewLoader(manifest.OSFileReader{}, manifest.DefaultEntriesQuery)
	require.NoError(testInstance, creationError)

	_, missingError := loader.Load(context.Background(), filepath.Join(testInstance.TempDir(), "absent.json"))
	require.ErrorIs(testInstance, missingError, os.ErrNotExist)

	_, parseError := loader.Load(context.Background(), writeManifest(testInstance, `{"peachjar":`))
	require.Error(testInstance, parseError)
	require.Contains(testInstance, parseError.Error(), "unable to parse manifest")

	_, queryError := loader.Load(context.Background(), writeManifest(testInstance, `["not","an","object"]`))
	require.Error(testInstance, queryError)
	require.Contains(testInstance, queryError.Error(), "unable to evaluate")
}

func TestLoaderCustomQuery(testInstance *testing.T) {
	loader, creationError := manifest.NewLoader(manifest.OSFileReader{}, ".deploy.jobs")
	require.NoError(testInstance, creationError)

	entries, loadError := loader.Load(context.Background(), writeManifest(testInstance, `{"deploy":{"jobs":[{"image":"a","secret":"b"}]}}`))
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, []manifest.Entry{{Image: "a", Secret: "b"}}, entries)
}

func TestNewLoaderValidation(testInstance *testing.T) {
	_, readerError := manifest.NewLoader(nil, "")
	require.ErrorIs(testInstance, readerError, manifest.ErrFileReaderNotConfigured)

	_, queryError := manifest.NewLoader(manifest.OSFileReader{}, ".peachjar[")
	require.Error(testInstance, queryError)
}
