package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCommandHandler_PrintsMatchesPerResource(t *testing.T) {
	f := newFixture(t, projectConfig())
	sut := ProvideQueryCommandHandler(f.configRepository, f.engine)

	out := strings.Builder{}
	err := sut.Handle(&out, configPath, "", "$.metadata.labels['app.kubernetes.io/name']")

	require.NoError(t, err)
	assert.Equal(t, "Deployment/web: \"web\"\nService/web: \"web\"\n", out.String())
}

func TestQueryCommandHandler_ObjectsAreSorted(t *testing.T) {
	f := newFixture(t, projectConfig())
	sut := ProvideQueryCommandHandler(f.configRepository, f.engine)

	out := strings.Builder{}
	err := sut.Handle(&out, configPath, "", "$.spec.ports[0]")

	require.NoError(t, err)
	assert.Contains(t, out.String(), `Service/web: {"name":"http","port":8080`)
}

func TestQueryCommandHandler_InvalidExpression(t *testing.T) {
	f := newFixture(t, projectConfig())
	sut := ProvideQueryCommandHandler(f.configRepository, f.engine)

	err := sut.Handle(&strings.Builder{}, configPath, "", "$.[")

	assert.ErrorContains(t, err, "invalid jsonpath")
}
