package mojang

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/usecase"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
)

const defaultBaseURL = "https://api.mojang.com"

type ResolverConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

// Resolver maps a Minecraft username to its account id.
type Resolver struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
}

type profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func NewResolver(cfg ResolverConfig) *Resolver {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 5 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Resolver{httpClient: httpClient, baseURL: baseURL, logger: logger}
}

// Resolve returns the external id and the canonical spelling of name.
// Unknown names yield usecase.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, name string) (usecase.ResolvedIdentity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return usecase.ResolvedIdentity{}, fmt.Errorf("%w: name is required", usecase.ErrInvalidInput)
	}

	endpoint := r.baseURL + "/users/profiles/minecraft/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return usecase.ResolvedIdentity{}, crerr.Wrap(err, "build profile request")
	}
	req.Header.Set("accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return usecase.ResolvedIdentity{}, crerr.Wrapf(usecase.ErrDependencyUnavailable, "lookup profile %s: %v", name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return usecase.ResolvedIdentity{}, crerr.Wrap(err, "read profile response")
	}

	switch {
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
		return usecase.ResolvedIdentity{}, fmt.Errorf("%w: minecraft account %q", usecase.ErrNotFound, name)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		r.logger.WarnContext(ctx, "mojang profile lookup failed", "name", name, "status", resp.StatusCode)
		return usecase.ResolvedIdentity{}, crerr.Wrapf(usecase.ErrDependencyUnavailable, "lookup profile %s: status=%d", name, resp.StatusCode)
	}

	var out profile
	if err := sonic.Unmarshal(raw, &out); err != nil {
		return usecase.ResolvedIdentity{}, crerr.Wrap(err, "decode profile response")
	}
	if strings.TrimSpace(out.ID) == "" {
		return usecase.ResolvedIdentity{}, fmt.Errorf("%w: minecraft account %q", usecase.ErrNotFound, name)
	}
	if out.Name == "" {
		out.Name = name
	}
	return usecase.ResolvedIdentity{ExternalID: out.ID, Name: out.Name}, nil
}
