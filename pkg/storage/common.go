package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// gatewayPathPrefix marks gateway URLs of the form <host>/ipfs/<cid>.
	gatewayPathPrefix = "/ipfs/"
)

// Storage is the interface the studio needs from a storage backend.
type Storage interface {
	ReadFile(ctx context.Context, uri string) ([]byte, error)
	UploadImage(ctx context.Context, name string, r io.Reader) (*Upload, error)
	Ping(ctx context.Context) (string, error)
}

var _ Storage = (*Client)(nil)

// IPFSBackend adds and reads content on an IPFS node.
type IPFSBackend interface {
	Add(ctx context.Context, data []byte) (string, error)
	Cat(ctx context.Context, cid string) ([]byte, error)
}

// GatewayFetcher fetches content over plain HTTP(S).
type GatewayFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client aggregates the configured storage backends.
type Client struct {
	// HttpApi is a connected Kubo HTTP API client used for IPFS reads and writes.
	*rpc.HttpApi
	// GatewayURL turns a CID into a public URL, e.g. https://ipfs.io/ipfs/.
	GatewayURL string

	ipfs    IPFSBackend
	gateway GatewayFetcher
}

// NewStorage constructs a storage client for the given Kubo API endpoint and
// public gateway. If the IPFS client fails to initialize, the error is logged
// and uploads will fail until a backend is available.
func NewStorage(ipfsURL, gatewayURL string) *Client {
	s := &Client{GatewayURL: gatewayURL, gateway: httpFetcher{}}
	api, err := NewIPFSClient(ipfsURL)
	if err != nil {
		zap.L().Error("IPFS client unavailable", zap.String("url", ipfsURL), zap.Error(err))
	}
	s.HttpApi = api
	s.ipfs = newKuboBackend(api)
	return s
}

// NewStorageWithBackends builds a client on explicit backends.
func NewStorageWithBackends(gatewayURL string, ipfs IPFSBackend, gateway GatewayFetcher) *Client {
	if ipfs == nil {
		ipfs = newKuboBackend(nil)
	}
	if gateway == nil {
		gateway = httpFetcher{}
	}
	return &Client{GatewayURL: gatewayURL, ipfs: ipfs, gateway: gateway}
}

// ErrContentTooLarge is returned when fetched content exceeds the read limit.
var ErrContentTooLarge = errors.New("content exceeds the read limit")

// ErrPingUnsupported is returned by Ping when the backend cannot report a
// version.
var ErrPingUnsupported = errors.New("ipfs backend does not support ping")

type versioner interface {
	Version(ctx context.Context) (string, error)
}

// Ping returns the IPFS node version.
func (s *Client) Ping(ctx context.Context) (string, error) {
	v, ok := s.backend().(versioner)
	if !ok {
		return "", ErrPingUnsupported
	}
	return v.Version(ctx)
}

// backend never mutates s, so a zero Client is safe for concurrent use.
func (s *Client) backend() IPFSBackend {
	if s.ipfs == nil {
		return newKuboBackend(s.HttpApi)
	}
	return s.ipfs
}

// ReadFile fetches content identified by uri. "http(s)://" URIs are fetched
// over HTTP; "ipfs://<cid>" and bare CIDs are read from the IPFS node.
func (s *Client) ReadFile(ctx context.Context, uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		gateway := s.gateway
		if gateway == nil {
			gateway = httpFetcher{}
		}
		return gateway.Fetch(ctx, uri)
	}
	hash := formatHash(uri)
	if hash == "" {
		return nil, fmt.Errorf("empty content identifier %q", uri)
	}
	return s.backend().Cat(ctx, hash)
}

// GatewayLink returns the public gateway URL for a CID.
func (s *Client) GatewayLink(cid string) string {
	base := s.GatewayURL
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + cid
}

var nonCIDChars = regexp.MustCompile("[^a-zA-Z0-9=]")

// formatHash strips the ipfs:// scheme and any gateway path, then removes
// every character except ASCII letters, digits and '='.
func formatHash(hash string) string {
	hash = strings.TrimPrefix(hash, IpfsPrefix)
	if i := strings.Index(hash, gatewayPathPrefix); i >= 0 {
		hash = hash[i+len(gatewayPathPrefix):]
	}
	if i := strings.IndexAny(hash, "/?#"); i >= 0 {
		hash = hash[:i]
	}
	return nonCIDChars.ReplaceAllString(hash, "")
}
