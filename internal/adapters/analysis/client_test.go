package analysis_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/guard/internal/adapters/analysis"
	"go.trai.ch/guard/internal/core/domain"
)

// MockRoundTripper is a helper to mock http.Client behavior.
type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) *http.Response
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req), nil
}

func newMockClient(handler func(req *http.Request) *http.Response) *http.Client {
	return &http.Client{
		Transport: &MockRoundTripper{RoundTripFunc: handler},
	}
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

const policyBody = `{
  "is_failure": true,
  "incomplete_count": 1,
  "job_link": "https://app.example.com/jobs/j-1",
  "dependencies": [
    {
      "registry": "npm",
      "name": "leftpad",
      "version": "0.0.1",
      "rejections": [
        {"title": "Known malware", "suppressed": false, "source": {"severity": "critical", "domain": "malicious_code"}},
        {"title": "Old", "suppressed": true, "source": {"severity": "bogus"}}
      ]
    }
  ]
}`

func TestClient_Analyze(t *testing.T) {
	var submitted map[string]any

	httpClient := newMockClient(func(req *http.Request) *http.Response {
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))

		switch {
		case req.Method == http.MethodPost && req.URL.Path == "/v1/jobs":
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&submitted))
			return jsonResponse(http.StatusCreated, `{"job_id":"j-1"}`)
		case req.Method == http.MethodGet && req.URL.Path == "/v1/jobs/j-1/policy":
			return jsonResponse(http.StatusOK, policyBody)
		default:
			t.Errorf("unexpected request %s %s", req.Method, req.URL)
			return jsonResponse(http.StatusNotFound, "")
		}
	})

	client := analysis.NewClientWithHTTP(domain.AnalysisConfig{
		URL:     "https://api.example.com/v1",
		Token:   "secret",
		Project: "web",
	}, httpClient)

	result, err := client.Analyze(context.Background(), domain.AnalysisRequest{
		Ecosystem: domain.FormatNPM,
		Label:     "npm install leftpad",
		Dependencies: domain.DependencySet{
			{Name: "leftpad", Version: "0.0.1", Registry: "npm"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "npm", submitted["ecosystem"])
	assert.Equal(t, "web", submitted["project"])
	packages, ok := submitted["packages"].([]any)
	require.True(t, ok)
	assert.Len(t, packages, 1)

	assert.True(t, result.IsFailure)
	assert.Equal(t, 1, result.IncompleteCount)
	assert.Equal(t, "https://app.example.com/jobs/j-1", result.JobLink)
	require.Len(t, result.Dependencies, 1)

	finding := result.Dependencies[0]
	assert.Equal(t, "leftpad", finding.Name)
	require.Len(t, finding.Rejections, 2)
	assert.Equal(t, domain.SeverityCritical, finding.Rejections[0].Severity)
	assert.Equal(t, "malicious_code", finding.Rejections[0].Domain)
	assert.Equal(t, domain.SeverityInfo, finding.Rejections[1].Severity)
	assert.True(t, finding.Rejections[1].Suppressed)
}

func TestClient_Analyze_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"unauthorized", http.StatusUnauthorized, "", domain.ErrAnalysisUnauthorized.Error()},
		{"forbidden", http.StatusForbidden, "", domain.ErrAnalysisUnauthorized.Error()},
		{"server error", http.StatusInternalServerError, "", domain.ErrAnalysisRequestFailed.Error()},
		{"bad json", http.StatusOK, "{", domain.ErrAnalysisParseFailed.Error()},
		{"missing job id", http.StatusOK, "{}", domain.ErrAnalysisParseFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := analysis.NewClientWithHTTP(domain.AnalysisConfig{URL: "https://api.example.com"},
				newMockClient(func(_ *http.Request) *http.Response {
					return jsonResponse(tt.status, tt.body)
				}))

			_, err := client.Analyze(context.Background(), domain.AnalysisRequest{Ecosystem: domain.FormatNPM})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestClient_NotConfigured(t *testing.T) {
	client := analysis.NewClient(domain.AnalysisConfig{})

	_, err := client.Analyze(context.Background(), domain.AnalysisRequest{})
	require.ErrorIs(t, err, domain.ErrAnalysisNotConfigured)
}
