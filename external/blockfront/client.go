package blockfront

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	"github.com/blockfront-stats/tracker/internal/platform/resilience"
	"github.com/blockfront-stats/tracker/internal/usecase"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
)

const (
	defaultBaseURL = "https://blockfrontapi.vuis.dev"
	defaultTimeout = 15 * time.Second
	maxBodyPreview = 256
)

type ContentKind string

const (
	ContentText ContentKind = "text/plain; charset=utf-8"
	ContentJSON ContentKind = "application/json"
)

// Alerter receives a short description of every failed call. Implementations
// must return immediately and never panic.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	BaseURL        string
	Timeout        time.Duration
	BulkMode       string
	Logger         *logging.Logger
	Alerter        Alerter
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *fasthttp.Client
	baseURL    string
	timeout    time.Duration
	bulkJSON   bool
	logger     *logging.Logger
	alerter    Alerter
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                "blockfront-stats-tracker",
			MaxIdleConnDuration: time.Minute,
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		timeout:    timeout,
		bulkJSON:   strings.EqualFold(strings.TrimSpace(cfg.BulkMode), "json"),
		logger:     logger,
		alerter:    cfg.Alerter,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

// Get issues a GET to endpoint and returns the decoded body.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (rawjson.Value, error) {
	uri := c.baseURL + endpoint
	if encoded := query.Encode(); encoded != "" {
		uri += "?" + encoded
	}
	return c.do(ctx, fasthttp.MethodGet, endpoint, uri, nil, "")
}

// Post sends body with the given content kind and returns the decoded body.
func (c *Client) Post(ctx context.Context, endpoint string, body []byte, kind ContentKind) (rawjson.Value, error) {
	return c.do(ctx, fasthttp.MethodPost, endpoint, c.baseURL+endpoint, body, kind)
}

func (c *Client) do(ctx context.Context, method, endpoint, uri string, body []byte, kind ContentKind) (rawjson.Value, error) {
	var out rawjson.Value
	err := c.breaker.Execute(func() error {
		value, reqErr := c.execute(ctx, method, endpoint, uri, body, kind)
		out = value
		return reqErr
	}, circuitFailure)
	if err == nil {
		return out, nil
	}

	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "blockfront circuit breaker rejected request", "endpoint", endpoint, "state", c.breaker.State())
		err = &NetworkError{
			Method:   method,
			Endpoint: endpoint,
			Cause:    crerr.Wrap(usecase.ErrDependencyUnavailable, "blockfront api is temporarily unavailable"),
		}
	}
	c.logger.WarnContext(ctx, "blockfront request failed", "method", method, "endpoint", endpoint, "error", err)
	if c.alerter != nil {
		c.alerter.Alert(ctx, err.Error())
	}
	return rawjson.Value{}, err
}

func (c *Client) execute(ctx context.Context, method, endpoint, uri string, body []byte, kind ContentKind) (rawjson.Value, error) {
	fail := func(status int, cause error) (rawjson.Value, error) {
		return rawjson.Value{}, &NetworkError{Method: method, Endpoint: endpoint, StatusCode: status, Cause: cause}
	}

	if err := ctx.Err(); err != nil {
		return fail(0, err)
	}
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return fail(0, crerr.Mark(context.DeadlineExceeded, errTimeout))
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if body != nil {
		req.Header.SetContentType(string(kind))
		req.SetBody(body)
	}

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		if crerr.Is(err, fasthttp.ErrTimeout) {
			return fail(0, crerr.Mark(err, errTimeout))
		}
		return fail(0, crerr.Mark(err, errConnection))
	}

	status := resp.StatusCode()
	raw := resp.Body()
	if status < 200 || status >= 300 {
		return fail(status, crerr.Wrapf(errBadStatus, "body=%s", abbreviateBody(raw)))
	}

	value := rawjson.Parse(raw)
	if value.Kind() == rawjson.KindMalformed {
		return fail(status, crerr.Wrapf(errNotJSON, "body=%s", abbreviateBody(raw)))
	}
	return value, nil
}

func abbreviateBody(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxBodyPreview {
		return text[:maxBodyPreview] + "..."
	}
	return text
}
