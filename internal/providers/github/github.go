// Package github adapts the GitHub contents API to the provider contract.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/repodoc/internal/providers"
	"github.com/repodoc/pkg/models"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
	acceptHeader   = "application/vnd.github+json"
	apiVersion     = "2022-11-28"
	userAgent      = "repodoc"

	// UndecodableContent replaces file bodies that cannot be decoded to text.
	UndecodableContent = "[Binary or non-UTF-8 content]"
)

// Client fetches directory listings and file bodies from GitHub, one remote
// round-trip per call.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer credential. An empty token leaves the client
// unauthenticated, subject to GitHub's anonymous rate ceiling.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithBaseURL overrides the API endpoint, used by tests and GHE setups.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New creates a GitHub content client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Authenticated() bool {
	return c.token != ""
}

// contentEntry mirrors one element of a GitHub contents response.
type contentEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	SHA      string `json:"sha"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// ListDirectory fetches one directory level of a repository.
func (c *Client) ListDirectory(ctx context.Context, repo models.RepositoryID, path string) ([]*models.Node, error) {
	raw, err := c.get(ctx, c.contentsURL(repo, path))
	if err != nil {
		return nil, err
	}

	var entries []contentEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		// A lone object here means the path addressed a file, not a directory.
		return nil, &providers.ShapeError{Expected: "array of directory entries", Got: previewPayload(raw)}
	}

	nodes := make([]*models.Node, 0, len(entries))
	for _, entry := range entries {
		kind := models.KindFile
		if entry.Type == "dir" {
			kind = models.KindDirectory
		} else if entry.Type != "file" {
			// Submodules and symlinks are not browsable content.
			continue
		}
		nodes = append(nodes, &models.Node{
			Name:     entry.Name,
			Path:     entry.Path,
			Kind:     kind,
			Revision: entry.SHA,
		})
	}
	return nodes, nil
}

// ReadFile fetches and decodes one file body. Undecodable content degrades
// to the sentinel placeholder instead of failing.
func (c *Client) ReadFile(ctx context.Context, repo models.RepositoryID, path string) (*models.FileContent, error) {
	raw, err := c.get(ctx, c.contentsURL(repo, path))
	if err != nil {
		return nil, err
	}

	var entry contentEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, &providers.ShapeError{Expected: "file content object", Got: previewPayload(raw)}
	}
	if entry.Type != "" && entry.Type != "file" {
		return nil, &providers.ShapeError{Expected: "file content object", Got: entry.Type}
	}

	content := decodeContent(entry)
	return &models.FileContent{
		Path:    entry.Path,
		Content: content,
		Size:    entry.Size,
	}, nil
}

func decodeContent(entry contentEntry) string {
	if entry.Encoding != "" && entry.Encoding != "base64" {
		log.Debug().Str("path", entry.Path).Str("encoding", entry.Encoding).Msg("unsupported content encoding")
		return UndecodableContent
	}
	if entry.Content == "" {
		return ""
	}
	// GitHub wraps base64 payloads in newlines.
	compact := strings.ReplaceAll(entry.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		log.Debug().Str("path", entry.Path).Err(err).Msg("base64 decode failed")
		return UndecodableContent
	}
	if !utf8.Valid(decoded) {
		return UndecodableContent
	}
	return string(decoded)
}

func (c *Client) get(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &providers.RequestError{
			Status:  resp.StatusCode,
			Message: extractAPIMessage(body, resp.Status),
		}
	}
	return body, nil
}

func (c *Client) contentsURL(repo models.RepositoryID, path string) string {
	parts := strings.SplitN(string(repo), "/", 2)
	u := fmt.Sprintf("%s/repos/%s/%s/contents", c.baseURL, url.PathEscape(parts[0]), url.PathEscape(parts[1]))
	cleaned := strings.Trim(path, "/")
	if cleaned != "" {
		for _, segment := range strings.Split(cleaned, "/") {
			u += "/" + url.PathEscape(segment)
		}
	}
	return u
}

func extractAPIMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

func previewPayload(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
