package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/promocanvas/pkg/integrations"
)

// ErrConflict is returned by [ContentClient.PutFile] when the supplied SHA
// no longer matches the file on the branch (HTTP 409 or 422).
var ErrConflict = errors.New("github: content sha mismatch")

// ContentClient reads and writes single files through the GitHub contents
// API. The blob SHA returned by reads must be passed back on writes.
type ContentClient struct {
	token      string
	httpClient *http.Client
	baseURL    string
	branch     string
}

// NewContentClient creates a new content client with the given access token.
// An empty branch targets the repository default branch.
func NewContentClient(token, branch string) *ContentClient {
	return &ContentClient{
		token:      token,
		httpClient: integrations.NewHTTPClient(30 * time.Second),
		baseURL:    "https://api.github.com",
		branch:     branch,
	}
}

// WithBaseURL points the client at a different API root (GitHub Enterprise
// or a test server).
func (c *ContentClient) WithBaseURL(u string) *ContentClient {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *ContentClient) WithHTTPClient(hc *http.Client) *ContentClient {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// GetFile retrieves a file and its blob SHA. A missing file returns an
// error wrapping [integrations.ErrNotFound].
func (c *ContentClient) GetFile(ctx context.Context, repo Repository, path string) (*FileContent, error) {
	u := c.contentsURL(repo, path)
	if c.branch != "" {
		u += "?ref=" + url.QueryEscape(c.branch)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", integrations.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := apiError(resp); err != nil {
		return nil, err
	}

	var fileResp apiContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&fileResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if fileResp.Type != "" && fileResp.Type != "file" {
		return nil, fmt.Errorf("github: %s is a %s, not a file", path, fileResp.Type)
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(fileResp.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}

	return &FileContent{
		Path:    fileResp.Path,
		SHA:     fileResp.SHA,
		Size:    fileResp.Size,
		Content: content,
	}, nil
}

// PutFile creates or replaces a file and returns the new blob SHA.
// An empty sha creates the file; GitHub rejects the create if the file
// already exists, which is reported as [ErrConflict].
func (c *ContentClient) PutFile(ctx context.Context, repo Repository, path string, content []byte, sha, message string) (string, error) {
	body, err := json.Marshal(apiPutRequest{
		Message: message,
		Content: base64.StdEncoding.EncodeToString(content),
		SHA:     sha,
		Branch:  c.branch,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(repo, path), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", integrations.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", apiError(resp)
	}

	var putResp apiPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&putResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return putResp.Content.SHA, nil
}

func (c *ContentClient) contentsURL(repo Repository, path string) string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, repo.Owner, repo.Name, path)
}

func (c *ContentClient) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// apiError maps a response status to an error. 200 and 201 map to nil.
func apiError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", integrations.ErrNotFound, &integrations.StatusError{StatusCode: resp.StatusCode})
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", ErrConflict, &integrations.StatusError{StatusCode: resp.StatusCode})
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return fmt.Errorf("GitHub API error (%d): %s: %w", resp.StatusCode, strings.TrimSpace(string(body)),
		&integrations.StatusError{StatusCode: resp.StatusCode})
}
