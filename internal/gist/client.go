package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const DefaultAPIURL = "https://api.github.com"

// File is a single file of a gist.
type File struct {
	Content string `json:"content"`
}

// Gist is the subset of the created gist the service cares about.
type Gist struct {
	ID      string `json:"id"`
	HTMLURL string `json:"html_url"`
}

type createGistRequest struct {
	Description string          `json:"description"`
	Public      bool            `json:"public"`
	Files       map[string]File `json:"files"`
}

type apiErrorResponse struct {
	Message string `json:"message"`
}

// Client talks to a gist-like paste service. Failures are returned
// as-is to the caller; there is no retry and no fallback.
type Client struct {
	logger     zerolog.Logger
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(logger zerolog.Logger, baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
}

func (c *Client) CreateGist(ctx context.Context, description string, files map[string]File, public bool) (*Gist, error) {
	body, err := json.Marshal(createGistRequest{
		Description: description,
		Public:      public,
		Files:       files,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gist request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/gists", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build gist request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call gist service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr apiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message == "" {
			apiErr.Message = "failed to create gist"
		}

		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("message", apiErr.Message).
			Msg("gist service rejected request")
		return nil, fmt.Errorf("gist service returned %d: %s", resp.StatusCode, apiErr.Message)
	}

	gist := new(Gist)
	err = json.NewDecoder(resp.Body).Decode(gist)
	if err != nil {
		return nil, fmt.Errorf("failed to decode gist response: %w", err)
	}

	c.logger.Debug().
		Str("gist_id", gist.ID).
		Msg("created gist")
	return gist, nil
}
