package boticord

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/boticord-go/pkg/httpclient"
)

// DefaultBaseURL is the public Boticord API host.
const DefaultBaseURL = "https://api.boticord.top"

// Client issues typed calls against one Boticord API version. It holds no
// mutable state after construction and may be shared between goroutines.
type Client struct {
	transport httpclient.Client
	token     string
	version   int
	baseURL   string
	schema    schema
	log       Logger
}

type options struct {
	baseURL string
	timeout time.Duration
	log     Logger
}

// Option customizes a Client.
type Option func(*options)

// WithBaseURL points the client at another API host, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(o *options) { o.baseURL = base }
}

// WithTimeout bounds each request made by the default transport built in New.
// It has no effect on a caller-supplied transport.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger receives one debug entry per request.
func WithLogger(log Logger) Option {
	return func(o *options) { o.log = log }
}

// New constructs a Client with a default resty transport.
func New(token string, version int, opts ...Option) (*Client, error) {
	o := buildOptions(opts)
	return newClient(httpclient.NewRestyClient(o.timeout), token, version, o)
}

// NewWithTransport constructs a Client over a caller-supplied transport, which
// allows connection reuse across clients or test doubles.
func NewWithTransport(transport httpclient.Client, token string, version int, opts ...Option) (*Client, error) {
	if transport == nil {
		return nil, fmt.Errorf("boticord: transport is nil")
	}
	return newClient(transport, token, version, buildOptions(opts))
}

func buildOptions(opts []Option) options {
	o := options{baseURL: DefaultBaseURL}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func newClient(transport httpclient.Client, token string, version int, o options) (*Client, error) {
	base, err := normalizeBaseURL(o.baseURL)
	if err != nil {
		return nil, urlError("New", o.baseURL, err)
	}
	shape, ok := schemas[version]
	if !ok {
		return nil, urlError("New", base, fmt.Errorf("unsupported api version %d", version))
	}

	return &Client{
		transport: transport,
		token:     token,
		version:   version,
		baseURL:   base,
		schema:    shape,
		log:       ensureLogger(o.log),
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url %q must use http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q has no host", raw)
	}
	return raw, nil
}

// Version returns the API version the client targets.
func (c *Client) Version() int { return c.version }

// BaseURL returns the API host the client targets.
func (c *Client) BaseURL() string { return c.baseURL }

// GetBotInfo fetches a bot page.
func (c *Client) GetBotInfo(ctx context.Context, bot BotID) (Bot, error) {
	return do[Bot](ctx, c, "GetBotInfo", http.MethodGet, fmt.Sprintf("/bot/%s", bot), nil)
}

// GetServerInfo fetches a server page.
func (c *Client) GetServerInfo(ctx context.Context, server ServerID) (Server, error) {
	return do[Server](ctx, c, "GetServerInfo", http.MethodGet, fmt.Sprintf("/server/%s", server), nil)
}

// GetUserInfo fetches a user profile.
func (c *Client) GetUserInfo(ctx context.Context, user UserID) (UserInformation, error) {
	return do[UserInformation](ctx, c, "GetUserInfo", http.MethodGet, fmt.Sprintf("/profile/%s", user), nil)
}

// GetBotComments lists the comments left on a bot.
func (c *Client) GetBotComments(ctx context.Context, bot BotID) ([]Comment, error) {
	return do[[]Comment](ctx, c, "GetBotComments", http.MethodGet, fmt.Sprintf("/bot/%s/comments", bot), nil)
}

// GetServerComments lists the comments left on a server.
func (c *Client) GetServerComments(ctx context.Context, server ServerID) ([]Comment, error) {
	return do[[]Comment](ctx, c, "GetServerComments", http.MethodGet, fmt.Sprintf("/server/%s/comments", server), nil)
}

// GetUserComments lists the comments a user left on bots and servers.
func (c *Client) GetUserComments(ctx context.Context, user UserID) (UserComments, error) {
	return do[UserComments](ctx, c, "GetUserComments", http.MethodGet, fmt.Sprintf("/profile/%s/comments", user), nil)
}

// GetUserBots lists the bots owned by a user.
func (c *Client) GetUserBots(ctx context.Context, user UserID) ([]BotSummary, error) {
	return do[[]BotSummary](ctx, c, "GetUserBots", http.MethodGet, fmt.Sprintf("/bots/%s", user), nil)
}

// PostBotStats submits the bot's current stats. The token identifies the bot.
func (c *Client) PostBotStats(ctx context.Context, stats BotStats) error {
	return c.call(ctx, "PostBotStats", http.MethodPost, "/stats", stats, nil)
}

// PostServerStats submits a server's current stats.
func (c *Client) PostServerStats(ctx context.Context, stats ServerStats) error {
	return c.call(ctx, "PostServerStats", http.MethodPost, "/server", stats, nil)
}

func (c *Client) endpoint(path string) string {
	return c.baseURL + "/v" + strconv.Itoa(c.version) + path
}

// do performs one round trip and decodes the result. On failure it returns the
// zero value, never a partially decoded record.
func do[T any](ctx context.Context, c *Client, op, method, path string, in any) (T, error) {
	var out T
	if err := c.call(ctx, op, method, path, in, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// call performs one round trip. A nil out discards the response body.
func (c *Client) call(ctx context.Context, op, method, path string, in, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}

	target := c.endpoint(path)
	if _, err := url.Parse(target); err != nil {
		return urlError(op, target, err)
	}

	headers := map[string]string{
		"Authorization": c.token,
		"Accept":        "application/json",
	}
	var body []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return decodeError(op, target, 0, fmt.Errorf("marshal request: %w", err))
		}
		body = raw
		headers["Content-Type"] = "application/json"
	}

	start := time.Now()
	resp, err := c.transport.Do(ctx, &httpclient.Request{
		Method:  method,
		URL:     target,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		c.log.DebugObj("boticord request failed", "boticord_request", map[string]any{
			"op":     op,
			"method": method,
			"url":    target,
			"error":  err.Error(),
		})
		return transportError(op, target, 0, err)
	}

	status := resp.StatusCode()
	c.log.DebugObj("boticord request completed", "boticord_request", map[string]any{
		"op":         op,
		"method":     method,
		"url":        target,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return transportError(op, target, status, fmt.Errorf("unexpected response: %s", responseSnippet(resp.Body())))
	}
	if out == nil {
		return nil
	}
	if err := c.schema.decode(resp.Body(), out); err != nil {
		return decodeError(op, target, status, err)
	}
	return nil
}
