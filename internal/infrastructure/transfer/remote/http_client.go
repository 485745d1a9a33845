package remotetransfer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"
)

type client struct {
	*http.Client
}

func newHTTPClient(requestTimeout time.Duration) *client {
	return &client{&http.Client{Timeout: requestTimeout}}
}

func (c *client) post(
	ctx context.Context, url string, body []byte, header map[string]string,
) (int, string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewReader(body),
	)
	if err != nil {
		return 0, "", err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	return c.doRequest(req)
}

func (c *client) doRequest(req *http.Request) (int, string, error) {
	rs, err := c.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return -1, "", err
	}
	return rs.StatusCode, string(bodyBytes), nil
}
