package sdk

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/suinft/nft-studio-go/pkg/config"
	"github.com/suinft/nft-studio-go/pkg/model"
	"github.com/suinft/nft-studio-go/pkg/storage"
)

type memIPFS struct {
	added [][]byte
}

func (m *memIPFS) Add(_ context.Context, data []byte) (string, error) {
	m.added = append(m.added, data)
	return "bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy", nil
}

func (m *memIPFS) Cat(context.Context, string) ([]byte, error) {
	if len(m.added) == 0 {
		return nil, errors.New("block not found")
	}
	return m.added[len(m.added)-1], nil
}

type staticFetcher []byte

func (f staticFetcher) Fetch(context.Context, string) ([]byte, error) {
	return f, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestNewCore(t *testing.T) {
	_, client := newNode(t)
	cfg := &config.Config{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	ipfs := &memIPFS{}
	core := NewCore(cfg, client, storage.NewStorageWithBackends(cfg.GatewayURL, ipfs, nil))

	if core.Chain() != client {
		t.Fatal("chain not wired")
	}
	if core.Session().Contract() != cfg.Contract {
		t.Fatalf("unexpected contract %+v", core.Session().Contract())
	}

	up, err := core.UploadImage(testCtx(t), "card.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if up.ContentType != "image/png" || len(ipfs.added) != 1 {
		t.Fatalf("unexpected upload %+v", up)
	}
	if !strings.HasPrefix(up.GatewayURL, "https://ipfs.io/ipfs/") {
		t.Fatalf("gateway link %s is not usable as an image URL", up.GatewayURL)
	}
}

func TestCoreWithoutStorage(t *testing.T) {
	_, client := newNode(t)
	cfg := &config.Config{}
	_ = cfg.Validate()
	core := NewCore(cfg, client, nil)
	if _, err := core.UploadImage(testCtx(t), "a.png", bytes.NewReader(pngHeader)); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
	if _, _, err := core.ReadImage(testCtx(t), "ipfs://bafy"); !errors.Is(err, ErrStorageNotConfigured) {
		t.Fatalf("expected ErrStorageNotConfigured, got %v", err)
	}
}

func TestCoreReadImage(t *testing.T) {
	_, client := newNode(t)
	cfg := &config.Config{}
	_ = cfg.Validate()
	ipfs := &memIPFS{}

	tests := []struct {
		name     string
		fetched  []byte
		uri      string
		wantType string
		wantErr  error
	}{
		{name: "ipfs", uri: "ipfs://bafkreigh2akiscaildcqabsyg3dfr6chu3fgpregiymsck7e7aqa4s52zy", wantType: "image/png"},
		{name: "http", fetched: pngHeader, uri: "https://x/a.png", wantType: "image/png"},
		{name: "html", fetched: []byte("<html><body>x</body></html>"), uri: "https://x/a.png", wantErr: model.ErrNotAnImage},
		{name: "blank", uri: "  ", wantErr: model.ErrImageRequired},
	}
	if _, err := ipfs.Add(testCtx(t), pngHeader); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			core := NewCore(cfg, client, storage.NewStorageWithBackends(cfg.GatewayURL, ipfs, staticFetcher(tc.fetched)))
			data, contentType, err := core.ReadImage(testCtx(t), tc.uri)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) || !model.IsValidation(err) {
					t.Fatalf("expected validation error %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadImage: %v", err)
			}
			if contentType != tc.wantType || !bytes.Equal(data, pngHeader) {
				t.Fatalf("unexpected image %q %q", contentType, data)
			}
		})
	}
}

func TestNewSDKRejectsInvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Contract.Package = "not-hex"
	cfg.Contract.Module = "m"
	cfg.Contract.Function = "f"
	if _, err := NewSDK(context.Background(), cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewSDKConnectsSigner(t *testing.T) {
	node, _ := newNode(t)
	srv := newHTTPNode(t, node)

	seed := bytes.Repeat([]byte{7}, 32)
	cfg := &config.Config{
		Network:    config.Localnet,
		RPCAddr:    srv,
		PrivateKey: hex.EncodeToString(seed),
	}
	t.Setenv(config.PrivateKeyEnv, "")
	core, err := NewSDK(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewSDK: %v", err)
	}
	defer core.Close()

	want := newSigner(t, 7).Address().String()
	if got := core.Session().Account(); got != want {
		t.Fatalf("expected account %s, got %s", want, got)
	}

	cfg.PrivateKey = "not a key"
	if _, err := NewSDK(context.Background(), cfg); err == nil {
		t.Fatal("expected invalid key error")
	}
}
