package sdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/config"
	"github.com/suinft/nft-studio-go/pkg/model"
	"github.com/suinft/nft-studio-go/pkg/storage"
)

// logLevel backs the global logger so SetDebug can change it at runtime.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// SetDebug switches the default logger between info and debug level.
func SetDebug(on bool) {
	if on {
		logLevel.SetLevel(zapcore.DebugLevel)
		return
	}
	logLevel.SetLevel(zapcore.InfoLevel)
}

// Core wires the fullnode client, IPFS storage and a Session from one
// configuration.
type Core struct {
	*config.Config
	chain   *blockchain.Client
	storage storage.Storage
	session *Session
}

// NewSDK validates cfg, dials the fullnode and prepares storage. When
// cfg.PrivateKey is set the key is parsed and connected to the session;
// a malformed key is an error.
func NewSDK(ctx context.Context, cfg *config.Config) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		zap.L().Error("Invalid config", zap.Error(err))
		return nil, err
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()
	SetDebug(cfg.Debug)

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Timeouts.Dial)
	defer cancel()
	chain, err := blockchain.Dial(dialCtx, cfg.RPCAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to fullnode: %w", err)
	}

	core := NewCore(cfg, chain, storage.NewStorage(cfg.IpfsURL, cfg.GatewayURL))

	if cfg.PrivateKey != "" {
		signer, err := blockchain.ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			chain.Close()
			return nil, fmt.Errorf("invalid private key: %w", err)
		}
		core.session.Connect(signer)
		zap.L().Debug("signer address", zap.String("addr", signer.Address().String()))
	} else {
		zap.L().Warn("no private key configured: minting disabled until a wallet is connected")
	}
	return core, nil
}

// NewCore assembles a Core from already constructed clients. cfg must be
// validated. store may be nil, which disables uploads and image reads.
func NewCore(cfg *config.Config, chain *blockchain.Client, store storage.Storage) *Core {
	session := NewSession(chain, SessionOptions{
		Contract:  cfg.Contract,
		GasBudget: cfg.GasBudget,
		Timeouts:  cfg.Timeouts,
		Explorer:  cfg.Network.ObjectURL,
	})
	return &Core{Config: cfg, chain: chain, storage: store, session: session}
}

// Session returns the operator session.
func (c *Core) Session() *Session {
	return c.session
}

// Chain returns the fullnode client.
func (c *Core) Chain() *blockchain.Client {
	return c.chain
}

// Storage returns the IPFS storage, or nil when none is configured.
func (c *Core) Storage() storage.Storage {
	return c.storage
}

// ErrStorageNotConfigured is returned by storage operations on a Core built
// without storage.
var ErrStorageNotConfigured = errors.New("storage not configured")

// UploadImage stores an image on IPFS within the configured upload timeout.
func (c *Core) UploadImage(ctx context.Context, name string, r io.Reader) (*storage.Upload, error) {
	if c.storage == nil {
		return nil, ErrStorageNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.WithDefaults().Upload)
	defer cancel()
	return c.storage.UploadImage(ctx, name, r)
}

// ReadImage loads the image behind uri, either an http(s) URL or an
// ipfs://<cid> reference, and returns it with its MIME type. Content that
// does not look like an image is rejected.
func (c *Core) ReadImage(ctx context.Context, uri string) ([]byte, string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, "", &model.ValidationError{Field: "uri", Err: model.ErrImageRequired}
	}
	if c.storage == nil {
		return nil, "", ErrStorageNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.Timeouts.WithDefaults().Upload)
	defer cancel()

	data, err := c.storage.ReadFile(ctx, uri)
	if err != nil {
		return nil, "", &model.QueryError{Op: "read image", Err: err}
	}
	contentType := storage.DetectImageType(path.Base(uri), data)
	if contentType == "" {
		zap.L().Debug("refusing to serve non-image content", zap.String("uri", uri))
		return nil, "", &model.ValidationError{Field: "uri", Err: model.ErrNotAnImage}
	}
	return data, contentType, nil
}

// Close shuts down the fullnode connection.
func (c *Core) Close() {
	if c.chain != nil {
		c.chain.Close()
	}
}
