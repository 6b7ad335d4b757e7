package migrations_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/argomigrate/internal/migrations"
)

func TestParametersPreserveInsertionOrder(testInstance *testing.T) {
	parameters := migrations.NewParameters(
		migrations.Parameter{Name: "image", Value: "svc:git-abc"},
		migrations.Parameter{Name: "dbsecret", Value: "db"},
		migrations.Parameter{Name: "image", Value: "svc:v2"},
	)

	require.Equal(testInstance, 2, parameters.Len())
	require.Equal(testInstance, []migrations.Parameter{
		{Name: "image", Value: "svc:v2"},
		{Name: "dbsecret", Value: "db"},
	}, parameters.All())

	extended := parameters.With("pullsecret", "pull")
	require.Equal(testInstance, 2, parameters.Len())
	require.Equal(testInstance, 3, extended.Len())

	all := extended.All()
	all[0].Value = "mutated"
	value, found := extended.Lookup("image")
	require.True(testInstance, found)
	require.Equal(testInstance, "svc:v2", value)
	require.Equal(testInstance, "pullsecret=pull", extended.All()[2].Assignment())

	_, missing := extended.Lookup("repository")
	require.False(testInstance, missing)
}

func TestErrorMessages(testInstance *testing.T) {
	validationError := migrations.ValidationError{FieldName: "migrations[1].secret", Message: "is required"}
	require.Equal(testInstance, "Validation Error: migrations[1].secret is required", validationError.Error())
	require.Equal(testInstance, "no migrations specified", migrations.ErrNoMigrationsSpecified.Error())
}
