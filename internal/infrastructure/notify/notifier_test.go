package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blockfront-stats/tracker/internal/platform/logging"
	"github.com/bwmarrin/discordgo"
)

type chanSink struct {
	sent chan string
	err  error
}

func (s *chanSink) Send(_ context.Context, message string) error {
	s.sent <- message
	return s.err
}

type panicSink struct {
	called chan struct{}
}

func (s *panicSink) Send(context.Context, string) error {
	close(s.called)
	panic("sink exploded")
}

func waitMessage(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for notification")
		return ""
	}
}

func TestCooldown_AllowsOnePerWindow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cooldown := NewCooldown(time.Minute)
	cooldown.now = func() time.Time { return now }

	if !cooldown.Allow() {
		t.Fatalf("expected first alert to pass")
	}
	now = now.Add(59 * time.Second)
	if cooldown.Allow() {
		t.Fatalf("expected alert inside window to be suppressed")
	}
	now = now.Add(2 * time.Second)
	if !cooldown.Allow() {
		t.Fatalf("expected alert after window to pass")
	}
}

func TestNotifier_SuppressesDuringCooldown(t *testing.T) {
	t.Parallel()

	sink := &chanSink{sent: make(chan string, 4)}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cooldown := NewCooldown(time.Minute)
	cooldown.now = func() time.Time { return now }

	n, err := NewNotifier(sink, Config{Gate: cooldown, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	defer func() { _ = n.Close(time.Second) }()

	if !n.Notify(context.Background(), "first failure") {
		t.Fatalf("expected first notification to be queued")
	}
	if n.Notify(context.Background(), "second failure") {
		t.Fatalf("expected second notification to be suppressed")
	}
	if got := waitMessage(t, sink.sent); got != "first failure" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNotifier_DeliveryOutlivesCallerContext(t *testing.T) {
	t.Parallel()

	sink := &chanSink{sent: make(chan string, 1), err: errors.New("room gone")}
	n, err := NewNotifier(sink, Config{Gate: NewCooldown(time.Minute), Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}
	defer func() { _ = n.Close(time.Second) }()

	ctx, cancel := context.WithCancel(context.Background())
	n.Alert(ctx, "cycle failed")
	cancel()

	if got := waitMessage(t, sink.sent); got != "cycle failed" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestNotifier_SinkPanicIsContained(t *testing.T) {
	t.Parallel()

	sink := &panicSink{called: make(chan struct{})}
	n, err := NewNotifier(sink, Config{Gate: NewCooldown(time.Minute), Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("new notifier: %v", err)
	}

	n.Alert(context.Background(), "boom")
	select {
	case <-sink.called:
	case <-time.After(2 * time.Second):
		t.Fatalf("sink was never called")
	}
	if err := n.Close(2 * time.Second); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestNotifier_NilIsNoop(t *testing.T) {
	t.Parallel()

	var n *Notifier
	if n.Notify(context.Background(), "x") {
		t.Fatalf("nil notifier must not queue")
	}
}

func TestMatrixSink_PutsRoomMessage(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath, gotAuth, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotPath = r.Method + " " + r.URL.EscapedPath()
		gotAuth = r.Header.Get("Authorization")
		gotBody = string(body)
		mu.Unlock()
		_, _ = io.WriteString(w, `{"event_id":"$1"}`)
	}))
	defer server.Close()

	sink, err := NewMatrixSink(MatrixConfig{Homeserver: server.URL, RoomID: "!room:example.org", Token: "secret"})
	if err != nil {
		t.Fatalf("new matrix sink: %v", err)
	}
	sink.newTxnID = func() string { return "txn-1" }

	if err := sink.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("send: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "PUT /_matrix/client/v3/rooms/%21room:example.org/send/m.room.message/txn-1" {
		t.Fatalf("unexpected request %q", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if !strings.Contains(gotBody, `"msgtype":"m.text"`) || !strings.Contains(gotBody, `"body":"hello"`) {
		t.Fatalf("unexpected body %s", gotBody)
	}
}

func TestMatrixSink_ErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sink, err := NewMatrixSink(MatrixConfig{Homeserver: server.URL, RoomID: "!r", Token: "t"})
	if err != nil {
		t.Fatalf("new matrix sink: %v", err)
	}
	if err := sink.Send(context.Background(), "hello"); err == nil {
		t.Fatalf("expected error for forbidden status")
	}
}

type fakeWebhook struct {
	id, token string
	params    *discordgo.WebhookParams
}

func (f *fakeWebhook) WebhookExecute(webhookID, token string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.id, f.token, f.params = webhookID, token, data
	return nil, nil
}

func TestDiscordSink_ExecutesWebhook(t *testing.T) {
	t.Parallel()

	sink, err := NewDiscordSink(DiscordConfig{WebhookID: "123", WebhookToken: "abc"})
	if err != nil {
		t.Fatalf("new discord sink: %v", err)
	}
	fake := &fakeWebhook{}
	sink.session = fake

	if err := sink.Send(context.Background(), "stats poll failed"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if fake.id != "123" || fake.token != "abc" || fake.params.Content != "stats poll failed" {
		t.Fatalf("unexpected webhook call %+v", fake)
	}
}
