package main

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getJSON(t *testing.T, path string, out any) int {
	t.Helper()
	app := newApp()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(body, out))
	}
	return resp.StatusCode
}

func TestConceptsEndpointResolvesTab(t *testing.T) {
	var data struct {
		Default  string `json:"default"`
		Active   string `json:"active"`
		Concepts []struct {
			ID     string      `json:"id"`
			Title  string      `json:"title"`
			Params []ParamSpec `json:"params"`
		} `json:"concepts"`
	}

	code := getJSON(t, "/api/concepts?tab=attention", &data)
	assert.Equal(t, 200, code)
	assert.Equal(t, "attention", data.Active)
	assert.Equal(t, string(defaultConcept), data.Default)
	assert.Len(t, data.Concepts, len(concepts))

	// Invalid tab values fall back without an error status.
	code = getJSON(t, "/api/concepts?tab=bogus", &data)
	assert.Equal(t, 200, code)
	assert.Equal(t, string(defaultConcept), data.Active)
}

func TestFrameEndpointClampsInputs(t *testing.T) {
	var data struct {
		Concept  string `json:"concept"`
		Cursor   int    `json:"cursor"`
		Artifact struct {
			Context int `json:"context"`
		} `json:"artifact"`
	}

	code := getJSON(t, "/api/frame/attention?cursor=9999&temperature=-5", &data)
	assert.Equal(t, 200, code)
	assert.Equal(t, "attention", data.Concept)
	assert.Equal(t, len(attnTokens), data.Cursor, "cursor clamps to the upper bound")
	assert.Equal(t, len(attnTokens), data.Artifact.Context)
}

func TestFrameEndpointUnknownConceptFallsBack(t *testing.T) {
	var data struct {
		Concept string `json:"concept"`
	}
	code := getJSON(t, "/api/frame/nonsense", &data)
	assert.Equal(t, 200, code)
	assert.Equal(t, string(defaultConcept), data.Concept)
}

func TestFrameEndpointGradientDefaults(t *testing.T) {
	var data struct {
		Artifact GradientArtifact `json:"artifact"`
	}
	code := getJSON(t, "/api/frame/gradient?cursor=28", &data)
	assert.Equal(t, 200, code)
	require.Len(t, data.Artifact.Path, 29)
	assert.InDelta(t, 3.0, data.Artifact.Path[0].X, 1e-12)
	assert.InDelta(t, -2.2, data.Artifact.Path[0].Y, 1e-12)
}

func TestPCAEndpointErrorState(t *testing.T) {
	// No fixture file exists in the test working directory, so the panel
	// must degrade to its error state without taking the app down.
	var art PCAArtifact
	code := getJSON(t, "/api/pca", &art)
	assert.Equal(t, 503, code)
	assert.Equal(t, "error", art.State)
	assert.NotEmpty(t, art.Error)

	// The rest of the API stays usable.
	assert.Equal(t, 200, getJSON(t, "/api/frame/cnn", nil))
}
