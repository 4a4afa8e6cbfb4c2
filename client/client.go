// Copyright (c) 2026 mostafamaarof.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mostafamaarof/AI-Survey/models"
)

// DefaultTimeout bounds every request made by a Client built with New.
const DefaultTimeout = 10 * time.Second

// Client talks to a running survey API. It implements wizard.Submitter.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the API rooted at baseURL. A nil httpClient gets
// one with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// LoadSurvey fetches the active survey, or surveyID when not empty.
func (c *Client) LoadSurvey(ctx context.Context, surveyID string) (*models.SurveyPayload, error) {
	path := "/api/survey"
	if surveyID != "" {
		path += "?survey_id=" + url.QueryEscape(surveyID)
	}
	var payload models.SurveyPayload
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Submit posts a complete submission. Rejections come back as
// *models.APIError carrying the server's message.
func (c *Client) Submit(ctx context.Context, req models.SubmitRequest) (models.SubmitResponse, error) {
	var resp models.SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/api/submit", req, &resp); err != nil {
		return models.SubmitResponse{}, err
	}
	return resp, nil
}

// Stats fetches the response totals of the active survey.
func (c *Client) Stats(ctx context.Context) (*models.StatsResponse, error) {
	var stats models.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// decodeError turns an error response into *models.APIError. The message is
// empty when the body is not the usual JSON error shape.
func decodeError(resp *http.Response) error {
	apiErr := &models.APIError{Status: resp.StatusCode}

	var body models.ErrorResponse
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && json.Unmarshal(raw, &body) == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}
