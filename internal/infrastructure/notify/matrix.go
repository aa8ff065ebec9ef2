package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

type MatrixConfig struct {
	HTTPClient *http.Client
	Homeserver string
	RoomID     string
	Token      string
}

// MatrixSink posts m.text messages to one room through the client-server API.
type MatrixSink struct {
	httpClient *http.Client
	homeserver string
	roomID     string
	token      string
	newTxnID   func() string
}

type matrixMessage struct {
	MsgType string `json:"msgtype"`
	Body    string `json:"body"`
}

func NewMatrixSink(cfg MatrixConfig) (*MatrixSink, error) {
	homeserver := strings.TrimRight(strings.TrimSpace(cfg.Homeserver), "/")
	if homeserver == "" {
		return nil, crerr.New("matrix homeserver is required")
	}
	if strings.TrimSpace(cfg.RoomID) == "" || strings.TrimSpace(cfg.Token) == "" {
		return nil, crerr.New("matrix room id and token are required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &MatrixSink{
		httpClient: httpClient,
		homeserver: homeserver,
		roomID:     strings.TrimSpace(cfg.RoomID),
		token:      strings.TrimSpace(cfg.Token),
		newTxnID:   uuid.NewString,
	}, nil
}

func (s *MatrixSink) Send(ctx context.Context, message string) error {
	body, err := sonic.Marshal(matrixMessage{MsgType: "m.text", Body: message})
	if err != nil {
		return crerr.Wrap(err, "marshal matrix message")
	}

	endpoint := s.homeserver + "/_matrix/client/v3/rooms/" + url.PathEscape(s.roomID) +
		"/send/m.room.message/" + url.PathEscape(s.newTxnID())
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "build matrix request")
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return crerr.Wrap(err, "send matrix message")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return crerr.Newf("matrix send failed status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return nil
}
