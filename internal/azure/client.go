// Package azure provides a thin gateway to the Azure DevOps work item
// tracking REST API (wiql queries, work item creation and state
// transitions), API version 6.0.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/milymoreno/timesheet/internal/config"
	"github.com/milymoreno/timesheet/internal/logging"
)

const apiVersion = "6.0"

// StatusError is returned when the API answers with a non-2xx status.
// It keeps the raw status and body so callers can log them before
// skipping the failed item.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// Client encapsulates access to one Azure DevOps organization.
type Client struct {
	baseURL    string
	auth       string
	httpClient *http.Client

	// preferred project name from configuration; resolved lazily
	// against the organization's project list
	preferredProject string
	project          string
}

// NewClient creates a gateway client from the application configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	if cfg.Azure.Organization == "" || cfg.Azure.PAT == "" {
		return nil, fmt.Errorf("azure devops organization and PAT are required")
	}

	logging.Info("azure devops configuration",
		"organization", cfg.Azure.Organization,
		"project", cfg.Azure.Project,
		"pat", logging.MaskSensitive(cfg.Azure.PAT))

	return &Client{
		baseURL: fmt.Sprintf("https://dev.azure.com/%s", cfg.Azure.Organization),
		auth:    "Basic " + cfg.Azure.EncodedPAT(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		preferredProject: cfg.Azure.Project,
	}, nil
}

// doRequest performs one API call and decodes the JSON response into out.
// contentType defaults to application/json; work item mutations use the
// json-patch media type instead.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", c.auth)

	logging.Debug("azure devops request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	logging.Debug("azure devops response",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"bytes", len(respBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}

	return nil
}

// DefaultProject resolves the working project: the configured name when
// set, otherwise the organization project whose name contains
// "P2P Project", otherwise the first project listed. The result is
// cached for the lifetime of the client.
func (c *Client) DefaultProject(ctx context.Context) (string, error) {
	if c.project != "" {
		return c.project, nil
	}
	if c.preferredProject != "" {
		c.project = c.preferredProject
		return c.project, nil
	}

	var list projectList
	path := fmt.Sprintf("/_apis/projects?api-version=%s", apiVersion)
	if err := c.doRequest(ctx, http.MethodGet, path, "", nil, &list); err != nil {
		return "", fmt.Errorf("listing projects: %w", err)
	}
	if len(list.Value) == 0 {
		return "", fmt.Errorf("organization has no projects")
	}

	for _, p := range list.Value {
		if strings.Contains(p.Name, "P2P Project") {
			logging.Info("project detected", "project", p.Name)
			c.project = p.Name
			return c.project, nil
		}
	}

	logging.Warn("project 'P2P Project' not found, using first available",
		"project", list.Value[0].Name)
	c.project = list.Value[0].Name
	return c.project, nil
}
