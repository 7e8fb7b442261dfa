// Package analysis implements the Analyzer port against the risk-analysis HTTP API.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"go.trai.ch/guard/internal/core/domain"
	"go.trai.ch/guard/internal/core/ports"
	"go.trai.ch/zerr"
)

const userAgent = "guard"

// Client implements ports.Analyzer over HTTP.
type Client struct {
	cfg        domain.AnalysisConfig
	httpClient *http.Client
}

// NewClient creates an Analyzer for the configured service.
func NewClient(cfg domain.AnalysisConfig) ports.Analyzer {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP creates a Client using the given HTTP client.
func NewClientWithHTTP(cfg domain.AnalysisConfig, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

// Analyze submits the dependencies as a job and fetches its policy evaluation.
func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.PolicyEvaluationResult, error) {
	if c.cfg.URL == "" {
		return nil, domain.ErrAnalysisNotConfigured
	}

	jobID, err := c.submit(ctx, req)
	if err != nil {
		return nil, err
	}

	var evaluation policyResponse
	if err := c.do(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID)+"/policy", nil, &evaluation); err != nil {
		return nil, zerr.With(err, "job_id", jobID)
	}

	return evaluation.toDomain(), nil
}

func (c *Client) submit(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	body := jobRequest{
		Ecosystem: string(req.Ecosystem),
		Label:     req.Label,
		Project:   firstNonEmpty(req.Project, c.cfg.Project),
		Group:     firstNonEmpty(req.Group, c.cfg.Group),
		Packages:  make([]jobPackage, 0, len(req.Dependencies)),
	}
	for _, d := range req.Dependencies {
		body.Packages = append(body.Packages, jobPackage{Name: d.Name, Version: d.Version, Registry: d.Registry})
	}

	var resp jobResponse
	if err := c.do(ctx, http.MethodPost, "/jobs", body, &resp); err != nil {
		return "", err
	}
	if resp.JobID == "" {
		return "", zerr.Wrap(zerr.New("response has no job_id"), domain.ErrAnalysisParseFailed.Error())
	}
	return resp.JobID, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return zerr.Wrap(err, domain.ErrAnalysisRequestFailed.Error())
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, reqBody)
	if err != nil {
		return zerr.Wrap(err, domain.ErrAnalysisRequestFailed.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zerr.Wrap(err, domain.ErrAnalysisRequestFailed.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return zerr.With(domain.ErrAnalysisUnauthorized, "status_code", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		apiErr := zerr.With(domain.ErrAnalysisRequestFailed, "status_code", resp.StatusCode)
		return zerr.With(apiErr, "path", path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return zerr.Wrap(err, domain.ErrAnalysisRequestFailed.Error())
	}

	if err := json.Unmarshal(body, out); err != nil {
		return zerr.Wrap(err, domain.ErrAnalysisParseFailed.Error())
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
