package blockfront

import (
	"context"
	"net/url"
	"strings"

	"github.com/blockfront-stats/tracker/internal/platform/rawjson"
	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
)

const (
	EndpointCloudData    = "/api/v1/cloud_data"
	EndpointPlayerStatus = "/api/v1/player_status"
	EndpointPlayersBulk  = "/api/v1/player_data/bulk"
)

func (c *Client) FetchCloudData(ctx context.Context) (rawjson.Value, error) {
	return c.Get(ctx, EndpointCloudData, nil)
}

func (c *Client) FetchPlayerStatus(ctx context.Context, name string) (rawjson.Value, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return rawjson.Value{}, crerr.New("player name is required")
	}
	return c.Get(ctx, EndpointPlayerStatus, url.Values{"name": []string{name}})
}

// FetchPlayersBulk requests the records of ids in one call. The upstream
// answers with a list, a single record, or occasionally an error string.
func (c *Client) FetchPlayersBulk(ctx context.Context, ids []string) (rawjson.Value, error) {
	if len(ids) == 0 {
		return rawjson.FromAny([]any{}), nil
	}

	if c.bulkJSON {
		body, err := sonic.Marshal(ids)
		if err != nil {
			return rawjson.Value{}, crerr.Wrap(err, "marshal bulk player ids")
		}
		return c.Post(ctx, EndpointPlayersBulk, body, ContentJSON)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i, id := range ids {
		if i > 0 {
			_ = buf.WriteByte(',')
		}
		_, _ = buf.WriteString(id)
	}
	return c.Post(ctx, EndpointPlayersBulk, buf.Bytes(), ContentText)
}
