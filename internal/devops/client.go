// Package devops is a minimal Azure DevOps work-item client. It covers the
// single call the pipeline needs: create a User Story work item from a
// title.
package devops

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const apiVersion = "7.1"

type Client struct {
	org     string
	project string
	pat     string
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

func NewClient(org, project, pat string, logger *slog.Logger) *Client {
	return &Client{
		org:     org,
		project: project,
		pat:     pat,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
		baseURL: "https://dev.azure.com",
	}
}

// SetTestTransport redirects API calls to a test server URL.
func (c *Client) SetTestTransport(url string) {
	c.baseURL = url
}

// Configured reports whether the client has everything it needs to reach
// Azure DevOps. An unconfigured client makes publishing a configuration
// error, not a per-item failure.
func (c *Client) Configured() bool {
	return c.org != "" && c.project != "" && c.pat != ""
}

// patchOp is one operation in an Azure DevOps JSON-patch document.
type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value string `json:"value"`
}

type workItemResponse struct {
	ID    int `json:"id"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
	} `json:"_links"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// CreateWorkItem creates a User Story work item carrying the given title and
// returns its id and browse URL.
func (c *Client) CreateWorkItem(ctx context.Context, title string) (string, string, error) {
	body, err := json.Marshal([]patchOp{
		{Op: "add", Path: "/fields/System.Title", Value: title},
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal patch document: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/$%s?api-version=%s",
		c.baseURL, url.PathEscape(c.org), url.PathEscape(c.project),
		url.PathEscape("User Story"), apiVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json-patch+json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(":"+c.pat)))

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return "", "", fmt.Errorf("api error %d: %s", resp.StatusCode, errResp.Message)
		}
		return "", "", fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	var item workItemResponse
	if err := json.Unmarshal(respBody, &item); err != nil {
		return "", "", fmt.Errorf("unmarshal response: %w", err)
	}
	if item.ID == 0 {
		return "", "", fmt.Errorf("response missing work item id")
	}

	id := fmt.Sprintf("%d", item.ID)
	link := item.Links.HTML.Href
	if link == "" {
		link = fmt.Sprintf("https://dev.azure.com/%s/%s/_workitems/edit/%s", c.org, c.project, id)
	}

	c.logger.Info("created work item", "id", id, "title", title)
	return id, link, nil
}
