package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// kuboBackend implements IPFSBackend on the Kubo HTTP API.
type kuboBackend struct {
	api *rpc.HttpApi
}

func newKuboBackend(api *rpc.HttpApi) IPFSBackend {
	return &kuboBackend{api: api}
}

// Add uploads data with `ipfs add --cid-version=1 --pin` and returns the CID.
func (k *kuboBackend) Add(ctx context.Context, data []byte) (string, error) {
	if k.api == nil {
		return "", fmt.Errorf("ipfs client not configured")
	}

	resp, err := k.api.Request("add").
		Option("cid-version", 1).
		Option("pin", true).
		FileBody(bytes.NewReader(data)).
		Send(ctx)
	if err != nil {
		zap.L().Error("error uploading to ipfs", zap.Error(err))
		return "", err
	}
	defer func(resp *rpc.Response) {
		if err := resp.Close(); err != nil {
			zap.L().Error("error closing ipfs response", zap.Error(err))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs add command returned error", zap.Error(resp.Error))
		return "", resp.Error
	}

	body, err := io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs add response", zap.Error(err))
		return "", err
	}

	var addResp struct {
		Name string `json:"Name"`
		Hash string `json:"Hash"`
	}
	if err := json.Unmarshal(body, &addResp); err != nil {
		zap.L().Error("error unmarshaling ipfs add response", zap.Error(err))
		return "", err
	}

	c, err := cid.Decode(addResp.Hash)
	if err != nil {
		zap.L().Error("ipfs add returned an invalid cid", zap.String("hash", addResp.Hash), zap.Error(err))
		return "", fmt.Errorf("invalid cid from ipfs add: %w", err)
	}

	zap.L().Debug("Successfully uploaded to IPFS", zap.String("cid", c.String()))
	return c.String(), nil
}

// Cat reads the content addressed by hash with `ipfs cat`.
func (k *kuboBackend) Cat(ctx context.Context, hash string) ([]byte, error) {
	if k.api == nil {
		return nil, fmt.Errorf("ipfs client not configured")
	}

	c, err := cid.Parse(hash)
	if err != nil {
		zap.L().Error("error parsing the ipfs hash", zap.String("hash", hash), zap.Error(err))
		return nil, fmt.Errorf("invalid cid %q: %w", hash, err)
	}

	resp, err := k.api.Request("cat", c.String()).Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("hash", hash), zap.Error(err))
		return nil, err
	}
	defer func(resp *rpc.Response) {
		if err := resp.Close(); err != nil {
			zap.L().Error("error closing response in ipfs", zap.String("hash", hash), zap.Error(err))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("hash", hash), zap.Error(resp.Error))
		return nil, resp.Error
	}
	return readLimited(resp.Output, maxFetchSize)
}

// Version asks the daemon for its version; it doubles as a health check.
func (k *kuboBackend) Version(ctx context.Context) (string, error) {
	if k.api == nil {
		return "", fmt.Errorf("ipfs client not configured")
	}
	var out struct {
		Version string
	}
	if err := k.api.Request("version").Exec(ctx, &out); err != nil {
		return "", err
	}
	return out.Version, nil
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url. Per-request
// deadlines come from the caller's context.
func NewIPFSClient(url string) (*rpc.HttpApi, error) {
	httpClient := &http.Client{
		Timeout: 5 * time.Minute,
	}
	client, err := rpc.NewURLApiWithClient(url, httpClient)
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return client, nil
}
