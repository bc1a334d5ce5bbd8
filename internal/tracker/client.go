// Package tracker implements the issue-tracker QA assistant. Issues are
// fetched from the GitHub REST API and handed to the language model as
// grounding; the tracker itself is an opaque capability provider behind
// Initialized and Query.
package tracker

import (
	"context"
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/cli/go-gh/v2/pkg/api"

	"github.com/datachat-labs/datachat/internal/config"
	"github.com/datachat-labs/datachat/internal/errors"
	"github.com/datachat-labs/datachat/internal/llm"
	"github.com/datachat-labs/datachat/internal/logging"
)

// maxBodyChars caps how much of an issue body reaches the prompt
const maxBodyChars = 500

const querySystemPrompt = `You answer questions about the issues of a software project.
You are given the recent issues of the project's tracker and a question.

Rules:
1. Base your answer only on the issues listed. If they don't contain the answer, say so.
2. Reference issues by their number, e.g. #42.
3. Provide a clear, direct response with the information requested.`

// RESTClient is the subset of the GitHub REST API surface the tracker uses
type RESTClient interface {
	Get(path string, response interface{}) error
}

// Issue represents one tracker issue
type Issue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	Body   string `json:"body"`
	URL    string `json:"html_url"`
	Labels []struct {
		Name string `json:"name"`
	} `json:"labels"`
}

// Client is the issue-tracker assistant
type Client struct {
	rest        RESTClient
	llm         llm.Service
	cfg         config.TrackerConfig
	log         *logging.Logger
	initialized bool
	initErr     error
}

// NewClient creates a tracker assistant over the GitHub REST API. A missing
// configuration or failed client setup leaves the assistant in the
// uninitialized state rather than failing the process; the router skips
// uninitialized assistants.
func NewClient(cfg config.TrackerConfig, service llm.Service, log *logging.Logger) *Client {
	c := &Client{llm: service, cfg: cfg, log: log}

	if cfg.Owner == "" || cfg.Repo == "" {
		c.initErr = errors.New(errors.ErrTypeConfig, "tracker owner and repo are required")
		return c
	}

	rest, err := api.DefaultRESTClient()
	if err != nil {
		c.initErr = errors.Wrap(err, errors.ErrTypeTracker, "failed to create REST client")
		log.WithError(err).Warn("issue tracker assistant not initialized")

		return c
	}

	c.rest = rest
	c.initialized = true

	return c
}

// NewClientWithREST creates a tracker assistant over an injected REST
// client, used by tests
func NewClientWithREST(cfg config.TrackerConfig, rest RESTClient, service llm.Service, log *logging.Logger) *Client {
	return &Client{rest: rest, llm: service, cfg: cfg, log: log, initialized: true}
}

// Initialized reports whether the assistant can serve queries
func (c *Client) Initialized() bool {
	return c != nil && c.initialized
}

// Verify checks connectivity to the tracker and returns a status summary
func (c *Client) Verify(ctx context.Context) (string, error) {
	if !c.initialized {
		return "", errors.Wrap(c.initErr, errors.ErrTypeTracker, "tracker not initialized")
	}

	issues, err := c.fetchIssues(ctx)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Connected to %s/%s. Found %d recent issues.",
		c.cfg.Owner, c.cfg.Repo, len(issues)), nil
}

// Query answers a natural-language question about the tracker
func (c *Client) Query(ctx context.Context, question string) (string, error) {
	if !c.initialized {
		return "", errors.Wrap(c.initErr, errors.ErrTypeTracker, "tracker not initialized")
	}

	issues, err := c.fetchIssues(ctx)
	if err != nil {
		return "", err
	}

	userPrompt := fmt.Sprintf("Recent issues of %s/%s:\n\n%s\nQuestion: %s",
		c.cfg.Owner, c.cfg.Repo, formatIssues(issues), question)

	answer, err := c.llm.Complete(ctx, querySystemPrompt, userPrompt)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeTracker, "model call failed")
	}

	return strings.TrimSpace(answer), nil
}

// fetchIssues retrieves the most recently updated issues
func (c *Client) fetchIssues(_ context.Context) ([]Issue, error) {
	path := fmt.Sprintf("repos/%s/%s/issues?state=all&sort=updated&per_page=%d",
		c.cfg.Owner, c.cfg.Repo, c.cfg.MaxIssues)

	var issues []Issue
	if err := c.rest.Get(path, &issues); err != nil {
		return nil, errors.Wrap(err, errors.ErrTypeTracker, "failed to fetch issues")
	}

	return issues, nil
}

// formatIssues renders issues as prompt grounding
func formatIssues(issues []Issue) string {
	var sb strings.Builder

	for _, issue := range issues {
		labels := make([]string, len(issue.Labels))
		for i, l := range issue.Labels {
			labels[i] = l.Name
		}

		sb.WriteString(fmt.Sprintf("#%d [%s] %s", issue.Number, issue.State, issue.Title))

		if len(labels) > 0 {
			sb.WriteString(" (" + strings.Join(labels, ", ") + ")")
		}

		sb.WriteString("\n")

		if body := normalizeBody(issue.Body); body != "" {
			sb.WriteString(body + "\n")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// normalizeBody converts HTML bodies to markdown and truncates long ones.
// Trackers that render bodies server-side hand back HTML; markdown passes
// through the converter unchanged enough to stay readable.
func normalizeBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}

	if strings.Contains(body, "</") || strings.Contains(body, "/>") {
		if converted, err := htmltomarkdown.ConvertString(body); err == nil {
			body = strings.TrimSpace(converted)
		}
	}

	if len(body) > maxBodyChars {
		body = body[:maxBodyChars] + "..."
	}

	return body
}
