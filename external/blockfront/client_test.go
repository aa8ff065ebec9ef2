package blockfront

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	"github.com/blockfront-stats/tracker/internal/platform/resilience"
	"github.com/blockfront-stats/tracker/internal/usecase"
)

type recordingAlerter struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlerter) Alert(_ context.Context, message string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, message)
}

func (a *recordingAlerter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.messages)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*ClientConfig)) (*Client, *recordingAlerter) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	alerter := &recordingAlerter{}
	cfg := ClientConfig{
		BaseURL: server.URL,
		Timeout: 2 * time.Second,
		Logger:  logging.NewNop(),
		Alerter: alerter,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg), alerter
}

func TestFetchPlayerStatus_SendsNameQuery(t *testing.T) {
	t.Parallel()

	client, alerter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointPlayerStatus {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "Steve" {
			t.Errorf("expected name=Steve, got %q", got)
		}
		_, _ = io.WriteString(w, `{"online":true,"match":{"max_players":32}}`)
	}, nil)

	value, err := client.FetchPlayerStatus(context.Background(), " Steve ")
	if err != nil {
		t.Fatalf("fetch player status: %v", err)
	}
	record, ok := value.Record()
	if !ok {
		t.Fatalf("expected record, got %s", value.Kind())
	}
	if online, _ := record.Bool("online"); !online {
		t.Fatalf("expected online=true")
	}
	if alerter.count() != 0 {
		t.Fatalf("expected no alerts on success")
	}
}

func TestFetchPlayersBulk_TextBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if string(body) != "a,b,c" {
			t.Errorf("unexpected body %q", body)
		}
		if ct := r.Header.Get("Content-Type"); ct != string(ContentText) {
			t.Errorf("unexpected content type %q", ct)
		}
		_, _ = io.WriteString(w, `[{"uuid":"a"},{"uuid":"b"},"oops"]`)
	}, nil)

	value, err := client.FetchPlayersBulk(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("fetch bulk: %v", err)
	}
	records, skipped := value.Records()
	if len(records) != 2 || skipped != 1 {
		t.Fatalf("expected 2 records and 1 skipped, got %d and %d", len(records), skipped)
	}
}

func TestFetchPlayersBulk_JSONBody(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if string(body) != `["a","b"]` {
			t.Errorf("unexpected body %q", body)
		}
		if ct := r.Header.Get("Content-Type"); ct != string(ContentJSON) {
			t.Errorf("unexpected content type %q", ct)
		}
		_, _ = io.WriteString(w, `{"uuid":"a","kills":3}`)
	}, func(cfg *ClientConfig) { cfg.BulkMode = "json" })

	value, err := client.FetchPlayersBulk(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("fetch bulk: %v", err)
	}
	if value.Kind() != rawjson.KindRecord {
		t.Fatalf("expected single record, got %s", value.Kind())
	}
}

func TestClient_NonSuccessStatusIsNetworkError(t *testing.T) {
	t.Parallel()

	client, alerter := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, `{"error":"upstream"}`)
	}, nil)

	_, err := client.FetchCloudData(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.StatusCode != http.StatusBadGateway || netErr.Endpoint != EndpointCloudData {
		t.Fatalf("unexpected network error %+v", netErr)
	}
	if alerter.count() != 1 {
		t.Fatalf("expected one alert, got %d", alerter.count())
	}
}

func TestClient_NonJSONBodyIsNetworkError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>maintenance</html>")
	}, nil)

	_, err := client.FetchCloudData(context.Background())
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !errors.Is(err, errNotJSON) {
		t.Fatalf("expected not-json cause, got %v", err)
	}
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = io.WriteString(w, `{}`)
	}, func(cfg *ClientConfig) { cfg.Timeout = 50 * time.Millisecond })

	_, err := client.FetchCloudData(context.Background())
	if !IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestClient_CircuitBreakerRejectsAfterFailures(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, alerter := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		}
	})

	if _, err := client.FetchCloudData(context.Background()); err == nil {
		t.Fatalf("expected first call to fail")
	}
	_, err := client.FetchCloudData(context.Background())
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError wrapper, got %T", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one upstream hit, got %d", hits.Load())
	}
	if alerter.count() != 2 {
		t.Fatalf("expected an alert per failed call, got %d", alerter.count())
	}
}

func TestClient_NotFoundDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, func(cfg *ClientConfig) {
		cfg.CircuitBreaker = resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute}
	})

	for i := 0; i < 3; i++ {
		_, _ = client.FetchPlayerStatus(context.Background(), "ghost")
	}
	if hits.Load() != 3 {
		t.Fatalf("expected every call to reach upstream, got %d", hits.Load())
	}
}
