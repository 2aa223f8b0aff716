package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/suinft/nft-studio-go/pkg/model"
)

// PrivateKeyEnv overrides Config.PrivateKey when set.
const PrivateKeyEnv = "NFT_STUDIO_PRIVATE_KEY"

// Config holds all settings required to initialize the chain, storage and
// studio clients. Use Validate to fill implicit defaults and to check for
// required fields.
type Config struct {
	// Network selects the target Sui network.
	Network Network `json:"network" yaml:"network" toml:"network"`
	// RPCAddr is the fullnode JSON-RPC URL. Defaults to the network's public fullnode.
	RPCAddr string `json:"rpc_addr" yaml:"rpc_addr" toml:"rpc_addr"`
	// PrivateKey is a bech32 "suiprivkey" string, a base64 Sui keystore entry
	// (flag || 32-byte seed) or a hex seed. Empty means no wallet is connected; read-only operations still work.
	PrivateKey string `json:"private_key" yaml:"private_key" toml:"private_key"`
	// IpfsURL is the HTTP API endpoint of the IPFS node used to add and read images.
	// Default: http://127.0.0.1:5001
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url" toml:"ipfs_url"`
	// GatewayURL turns a CID into a public http image URL.
	// Default: https://ipfs.io/ipfs/
	GatewayURL string `json:"gateway_url" yaml:"gateway_url" toml:"gateway_url"`
	// Contract is the initial mint contract triple.
	Contract model.ContractConfig `json:"contract" yaml:"contract" toml:"contract"`
	// GasBudget in MIST. Default: model.GasBudget.
	GasBudget uint64 `json:"gas_budget" yaml:"gas_budget" toml:"gas_budget"`
	// Listen is the address the HTTP API binds to. Default: localhost:8080
	Listen string `json:"listen" yaml:"listen" toml:"listen"`
	// AllowedOrigins lists browser origins accepted by the HTTP API.
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	// RatePerMinute limits HTTP API requests per client IP. Zero disables limiting.
	RatePerMinute int `json:"rate_per_minute" yaml:"rate_per_minute" toml:"rate_per_minute"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug" toml:"debug"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for
	// defaults. Config files spell them as duration strings; see LoadFile.
	Timeouts Timeouts `json:"-" yaml:"-" toml:"-"`
}

// Network describes a Sui network: its name, public fullnode and explorer base.
type Network struct {
	Name     string `json:"name" yaml:"name" toml:"name"`
	Fullnode string `json:"fullnode" yaml:"fullnode" toml:"fullnode"`
	Explorer string `json:"explorer" yaml:"explorer" toml:"explorer"`
}

// Testnet is the predefined Sui testnet.
var Testnet = Network{
	Name:     "testnet",
	Fullnode: "https://fullnode.testnet.sui.io:443",
	Explorer: "https://suiscan.xyz/testnet",
}

// Mainnet is the predefined Sui mainnet.
var Mainnet = Network{
	Name:     "mainnet",
	Fullnode: "https://fullnode.mainnet.sui.io:443",
	Explorer: "https://suiscan.xyz/mainnet",
}

// Devnet is the predefined Sui devnet.
var Devnet = Network{
	Name:     "devnet",
	Fullnode: "https://fullnode.devnet.sui.io:443",
	Explorer: "https://suiscan.xyz/devnet",
}

// Localnet targets a `sui start` node on the default port.
var Localnet = Network{
	Name:     "localnet",
	Fullnode: "http://127.0.0.1:9000",
}

// NetworkByName resolves a predefined network.
func NetworkByName(name string) (Network, bool) {
	for _, n := range []Network{Testnet, Mainnet, Devnet, Localnet} {
		if strings.EqualFold(n.Name, name) {
			return n, true
		}
	}
	return Network{}, false
}

// ObjectURL returns the explorer link for an object id, or "" when the
// network has no explorer.
func (n Network) ObjectURL(id string) string {
	if n.Explorer == "" {
		return ""
	}
	return strings.TrimRight(n.Explorer, "/") + "/object/" + id
}

// Timeouts controls operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration // fullnode dial
	ChainRead   time.Duration // owned objects, coins, gas price
	DryRun      time.Duration // gas estimation
	ChainSubmit time.Duration // sign and execute
	Upload      time.Duration // IPFS add
}

// Validate normalizes the configuration by applying implicit defaults for
// Network (defaults to Testnet), RPCAddr, IpfsURL, GatewayURL, Contract,
// GasBudget and Listen, and verifies the contract triple. A PrivateKey found
// in the NFT_STUDIO_PRIVATE_KEY environment variable takes precedence.
func (c *Config) Validate() error {
	if c.Network.Name == "" {
		c.Network = Testnet
	} else if known, ok := NetworkByName(c.Network.Name); ok {
		if c.Network.Fullnode == "" {
			c.Network.Fullnode = known.Fullnode
		}
		if c.Network.Explorer == "" {
			c.Network.Explorer = known.Explorer
		}
	}

	if c.RPCAddr == "" {
		c.RPCAddr = c.Network.Fullnode
	}

	if c.IpfsURL == "" {
		c.IpfsURL = "http://127.0.0.1:5001"
	}

	if c.GatewayURL == "" {
		c.GatewayURL = "https://ipfs.io/ipfs/"
	}
	if !strings.HasSuffix(c.GatewayURL, "/") {
		c.GatewayURL += "/"
	}

	if c.Contract == (model.ContractConfig{}) {
		c.Contract = model.DefaultContract()
	}

	if c.GasBudget == 0 {
		c.GasBudget = model.GasBudget
	}

	if c.Listen == "" {
		c.Listen = "localhost:8080"
	}

	if key := os.Getenv(PrivateKeyEnv); key != "" {
		c.PrivateKey = key
	}

	if c.RatePerMinute < 0 {
		return errors.New("rate_per_minute must not be negative")
	}

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}

	if err := c.Contract.Validate(); err != nil {
		return fmt.Errorf("invalid contract: %w", err)
	}

	return nil
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   20s
//	DryRun:      20s
//	ChainSubmit: 30s
//	Upload:      60s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 20 * time.Second
	}
	if tt.DryRun == 0 {
		tt.DryRun = 20 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 30 * time.Second
	}
	if tt.Upload == 0 {
		tt.Upload = 60 * time.Second
	}
	return tt
}
