package feed

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// FetchTimeout is the total per-call HTTP timeout.
const FetchTimeout = 30 * time.Second

// ConnectTimeout bounds the TCP connect phase of a feed fetch.
const ConnectTimeout = 10 * time.Second

// ShutdownGrace is how long an in-flight fetch is given to finish on
// shutdown before it is abandoned.
const ShutdownGrace = 5 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: FetchTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{Timeout: ConnectTimeout}).DialContext,
		},
	}
}

func httpGet(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return body, nil
}
