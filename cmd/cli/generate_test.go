package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/ui-testgen/pipeline"
	"github.com/hairizuanbinnoorazman/ui-testgen/selector"
)

func TestArtifactNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		storyID     string
		wantFeature string
		wantSteps   string
	}{
		{storyID: "SHOP-12", wantFeature: "SHOP-12.feature", wantSteps: "SHOP12Steps.java"},
		{storyID: "owner/repo#42", wantFeature: "owner_repo_42.feature", wantSteps: "OwnerRepo42Steps.java"},
		{storyID: "12", wantFeature: "12.feature", wantSteps: "Story12Steps.java"},
		{storyID: "", wantFeature: "generated.feature", wantSteps: "GeneratedSteps.java"},
	}

	for _, tt := range tests {
		t.Run(tt.storyID, func(t *testing.T) {
			t.Parallel()
			feature, steps := artifactNames(tt.storyID)
			assert.Equal(t, tt.wantFeature, feature)
			assert.Equal(t, tt.wantSteps, steps)
		})
	}
}

func successResult() pipeline.Result {
	return pipeline.Result{
		Status: pipeline.StatusSuccess,
		Story:  "SHOP-12",
		GeneratedArtifacts: &pipeline.Artifacts{
			Feature: "Feature: Login\n  Scenario: ok\n",
			Steps:   `driver.findElement(By.cssSelector("#email"));`,
		},
		ValidationReport: &selector.Report{
			AllowedSelectors: []string{"#email"},
			UsedSelectors:    []string{"#email"},
			InvalidSelectors: []string{},
			Status:           selector.StatusPass,
		},
	}
}

func TestGenerateCallsService(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req GenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, GenerateRequest{
			StoryURL:       "https://acme.atlassian.net/browse/SHOP-12",
			UIRepoLocation: "/src/web",
		}, req)

		json.NewEncoder(w).Encode(successResult())
	}))
	defer server.Close()

	res, err := generate(context.Background(), newClient(server.URL, "tok", 5*time.Second, false), GenerateRequest{
		StoryURL:       "https://acme.atlassian.net/browse/SHOP-12",
		UIRepoLocation: "/src/web",
	})
	require.NoError(t, err)
	assert.Equal(t, successResult(), res)
}

func TestGenerateServiceError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"jiraUrl is required"}`))
	}))
	defer server.Close()

	_, err := generate(context.Background(), newClient(server.URL, "", 5*time.Second, false), GenerateRequest{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "jiraUrl is required", apiErr.Message)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Write([]byte(`{"status":"UP"}`))
	}))
	defer server.Close()

	status, err := health(context.Background(), newClient(server.URL, "", 5*time.Second, false))
	require.NoError(t, err)
	assert.Equal(t, "UP", status)
}

func TestWriteArtifacts(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := writeArtifacts(dir, successResult())
	require.NoError(t, err)
	require.Len(t, paths, 2)

	feature, err := os.ReadFile(filepath.Join(dir, "SHOP-12.feature"))
	require.NoError(t, err)
	assert.Equal(t, "Feature: Login\n  Scenario: ok\n", string(feature))

	steps, err := os.ReadFile(filepath.Join(dir, "SHOP12Steps.java"))
	require.NoError(t, err)
	assert.Equal(t, "driver.findElement(By.cssSelector(\"#email\"));\n", string(steps))
}

func TestRenderResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		result  pipeline.Result
		want    []string
		notWant []string
	}{
		{
			name:    "success",
			result:  successResult(),
			want:    []string{"SUCCESS", "SHOP-12", "Feature: Login", "#email", "PASS"},
			notWant: []string{"after one retry"},
		},
		{
			name: "retried with invalid selector",
			result: pipeline.Result{
				Status:             pipeline.StatusSuccess,
				Story:              "SHOP-13",
				GeneratedArtifacts: &pipeline.Artifacts{Feature: "Feature: x", Steps: "steps"},
				ValidationReport: &selector.Report{
					UsedSelectors:    []string{"#ghost"},
					InvalidSelectors: []string{"#ghost"},
					Status:           selector.StatusFail,
				},
				Retried: true,
			},
			want: []string{"#ghost", "FAIL", "after one retry"},
		},
		{
			name: "hard stop",
			result: pipeline.Result{
				Status:  pipeline.StatusError,
				Message: pipeline.ErrSelectorsUnavailable.Error(),
			},
			want:    []string{"ERROR", "UI selectors unavailable"},
			notWant: []string{"Feature", "Selector validation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			renderResult(&buf, tt.result)
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, buf.String(), s)
			}
		})
	}
}

func TestClientDebugOutputIsTruncated(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", debugBodyLimit*2)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "testgen/"+Version, r.Header.Get("User-Agent"))
		w.Write([]byte(long))
	}))
	defer server.Close()

	var stderr bytes.Buffer
	c := newClient(server.URL, "", 5*time.Second, true)
	c.stderr = &stderr

	body, err := c.Get(context.Background(), "/health", nil)
	require.NoError(t, err)
	assert.Len(t, body, len(long))
	assert.Contains(t, stderr.String(), "DEBUG: GET "+server.URL+"/health")
	assert.Contains(t, stderr.String(), fmt.Sprintf("(%d bytes)", len(long)))
	assert.NotContains(t, stderr.String(), long)
}

func TestClientCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := generate(ctx, newClient(server.URL, "", 5*time.Second, false), GenerateRequest{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
