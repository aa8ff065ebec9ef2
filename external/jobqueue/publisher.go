// Package jobqueue hands internal job requests to QStash, which calls back
// into the api with the internal job token.
package jobqueue

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/resilience"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultBaseURL = "https://qstash.upstash.io"

var errTransient = crerr.New("qstash transient failure")

type Config struct {
	HTTPClient       *http.Client
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	Logger           *logging.Logger
}

// PublishOptions tune delivery of one job.
type PublishOptions struct {
	Delay           time.Duration
	DeduplicationID string
}

type Publisher struct {
	client           *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

func NewPublisher(cfg Config) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL, err := validateHTTPBaseURL(baseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, crerr.New("qstash token is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &Publisher{
		client:           client,
		baseURL:          baseURL,
		token:            strings.TrimSpace(cfg.Token),
		targetBaseURL:    targetBaseURL,
		retries:          cfg.Retries,
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger.Named("jobqueue"),
		breaker:          resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}, nil
}

// Publish asks QStash to POST payload to path on the target service.
func (p *Publisher) Publish(ctx context.Context, path string, payload any, opts PublishOptions) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.baseURL + "/v2/publish/" + targetURL
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.request_curl_preview", p.curlPreview(publishURL, body, opts)),
		)
	}

	err = p.breaker.Execute(func() error {
		return p.send(ctx, publishURL, body, opts)
	}, func(err error) bool { return crerr.Is(err, errTransient) })
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
			return fmt.Errorf("qstash is temporarily unavailable: %w", err)
		}
		return crerr.Wrapf(err, "publish job target_url=%s", targetURL)
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", path,
		"delay", formatDelay(opts.Delay),
		"deduplication_id", opts.DeduplicationID,
	)
	return nil
}

func (p *Publisher) send(ctx context.Context, publishURL string, body []byte, opts PublishOptions) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(string(body)))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	for key, value := range p.headers(opts) {
		req.Header.Set(key, value)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)

	resp, err := p.client.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Wrap(err, "send qstash request"), errTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	statusErr := crerr.Newf("qstash status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	if isRetryableStatus(resp.StatusCode) {
		return crerr.Mark(statusErr, errTransient)
	}
	return statusErr
}

func (p *Publisher) headers(opts PublishOptions) map[string]string {
	headers := map[string]string{
		"Content-Type":   "application/json",
		"Upstash-Method": http.MethodPost,
	}
	if p.retries > 0 {
		headers["Upstash-Retries"] = strconv.Itoa(p.retries)
	}
	if opts.Delay > 0 {
		headers["Upstash-Delay"] = formatDelay(opts.Delay)
	}
	if id := strings.TrimSpace(opts.DeduplicationID); id != "" {
		headers["Upstash-Deduplication-Id"] = id
	}
	if p.internalJobToken != "" {
		headers["Upstash-Forward-X-Internal-Job-Token"] = p.internalJobToken
	}
	return headers
}

// curlPreview renders the request with secrets masked, for traces.
func (p *Publisher) curlPreview(publishURL string, body []byte, opts PublishOptions) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST " + shellQuote(publishURL) + " -H " + shellQuote("Authorization: Bearer ***"))
	headers := p.headers(opts)
	for _, key := range []string{"Content-Type", "Upstash-Method", "Upstash-Retries", "Upstash-Delay", "Upstash-Deduplication-Id", "Upstash-Forward-X-Internal-Job-Token"} {
		value, ok := headers[key]
		if !ok {
			continue
		}
		if key == "Upstash-Forward-X-Internal-Job-Token" {
			value = "***"
		}
		_, _ = buf.WriteString(" -H " + shellQuote(key+": "+value))
	}
	_, _ = buf.WriteString(" -d " + shellQuote(string(body)))
	return buf.String()
}

func formatDelay(delay time.Duration) string {
	if delay <= 0 {
		return "0s"
	}
	return strconv.Itoa(int(delay.Round(time.Second).Seconds())) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
