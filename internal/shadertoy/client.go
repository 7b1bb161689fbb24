package shadertoy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/nao1215/stubscan/internal/model"
	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBaseURL is the Shadertoy site.
	DefaultBaseURL = "https://www.shadertoy.com"

	// DefaultUserAgent is sent with every request; the view pages reject
	// requests without a browser-like agent.
	DefaultUserAgent = "Mozilla/5.0 (compatible; stubscan)"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency is the number of ids resolved at once.
	DefaultConcurrency = 4

	// titleSuffix is removed from view page titles.
	titleSuffix = " - Shadertoy"

	// maxBodySize caps how much of a response is read.
	maxBodySize = 4 << 20
)

// usernamePattern finds the author in the shader JSON embedded in view pages.
var usernamePattern = regexp2.MustCompile(`"username"\s*:\s*"(?<name>(?:[^"\\]|\\.)*)"`, regexp2.None)

// Client looks up shader metadata.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	userAgent   string
	concurrency int
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey enables the JSON API. Without a key only view pages are used.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithBaseURL overrides the site URL. Empty values are ignored.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithUserAgent overrides the User-Agent header. Empty values are ignored.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithConcurrency sets how many ids LookupAll resolves at once.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		baseURL:     DefaultBaseURL,
		userAgent:   DefaultUserAgent,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Lookup resolves one shader id. Failures are recorded in the result's
// Error field using the model.ShaderErr* messages.
func (c *Client) Lookup(ctx context.Context, id string) model.ShaderInfo {
	info := model.ShaderInfo{ID: id}

	if c.apiKey != "" {
		name, author, err := c.fetchAPI(ctx, id)
		if err == nil {
			info.Name, info.Author = name, author
			return info
		}
		if !errors.Is(err, ErrNotFound) {
			c.logger.Debug("api lookup failed", "id", id, "error", err)
			info.Error = errorMessage(err)
			return info
		}
		c.logger.Debug("api has no shader, trying view page", "id", id)
	}

	name, author, err := c.fetchView(ctx, id)
	if err != nil {
		c.logger.Debug("view lookup failed", "id", id, "error", err)
		info.Error = errorMessage(err)
		return info
	}
	info.Name, info.Author = name, author
	return info
}

// LookupAll resolves ids concurrently and returns results in input order.
// The error is non-nil only when ctx is cancelled.
func (c *Client) LookupAll(ctx context.Context, ids []string) ([]model.ShaderInfo, error) {
	results := make([]model.ShaderInfo, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = c.Lookup(ctx, id)
			return ctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// apiResponse is the subset of the API answer used here.
type apiResponse struct {
	Shader *struct {
		Info struct {
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"info"`
	} `json:"Shader"`
}

func (c *Client) fetchAPI(ctx context.Context, id string) (string, string, error) {
	u := c.baseURL + "/api/v1/shaders/" + url.PathEscape(id) + "?key=" + url.QueryEscape(c.apiKey)

	body, err := c.get(ctx, u)
	if err != nil {
		return "", "", err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrParse, err)
	}
	if resp.Shader == nil || resp.Shader.Info.Name == "" {
		return "", "", ErrNotFound
	}
	return resp.Shader.Info.Name, resp.Shader.Info.Username, nil
}

// fetchView reads the name from the view page title and the author from the
// page's embedded shader data. The author is empty when the page has none.
func (c *Client) fetchView(ctx context.Context, id string) (string, string, error) {
	body, err := c.get(ctx, c.baseURL+"/view/"+url.PathEscape(id))
	if err != nil {
		return "", "", err
	}

	title, err := pageTitle(body)
	if err != nil {
		return "", "", err
	}
	name := strings.TrimSpace(strings.TrimSuffix(title, titleSuffix))
	if name == "" || name == "Shadertoy" {
		return "", "", ErrNotFound
	}
	return name, embeddedAuthor(body), nil
}

// embeddedAuthor returns the first "username" value in body, unescaped.
func embeddedAuthor(body []byte) string {
	m, err := usernamePattern.FindStringMatch(string(body))
	if err != nil || m == nil {
		return ""
	}
	var author string
	if err := json.Unmarshal([]byte(`"`+m.GroupByName("name").String()+`"`), &author); err != nil {
		return ""
	}
	return strings.TrimSpace(author)
}

// get fetches u and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("lookup request", "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return body, nil
}

// pageTitle returns the text of the first <title> element.
func pageTitle(body []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, err)
	}

	var title string
	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			found = true
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)

	if !found {
		return "", ErrNotFound
	}
	return title, nil
}

// errorMessage maps lookup errors to the messages stored in ShaderInfo.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return model.ShaderErrNotFound
	case errors.Is(err, ErrParse):
		return model.ShaderErrParse
	default:
		return model.ShaderErrNetwork
	}
}
