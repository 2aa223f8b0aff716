package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxFetchSize bounds gateway downloads.
const maxFetchSize = 32 << 20

// httpFetcher is the production GatewayFetcher.
type httpFetcher struct {
	client *http.Client
	// limit overrides maxFetchSize when positive.
	limit int64
}

// Fetch performs a GET on url and returns the body. Non-2xx statuses and
// bodies over the limit are errors.
func (f httpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	client := f.client
	if client == nil {
		client = http.DefaultClient
	}
	zap.L().Debug("Getting gateway file", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("gateway returned %s for %s", resp.Status, url)
	}
	return readLimited(resp.Body, f.limit)
}

// readLimited reads r fully, failing with ErrContentTooLarge instead of
// truncating when it holds more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = maxFetchSize
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrContentTooLarge, limit)
	}
	return data, nil
}
