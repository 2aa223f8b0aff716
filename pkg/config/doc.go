// Package config provides configuration management for the NFT studio.
//
// The Config structure controls the target Sui network, the fullnode RPC
// endpoint, the signer key, IPFS endpoints, the mint contract triple, the HTTP
// API surface and operation timeouts.
//
// # Basic Configuration
//
// The zero value is usable; Validate fills every default:
//
//	cfg := &config.Config{}
//	_ = cfg.Validate() // testnet fullnode, local IPFS, ipfs.io gateway
//
// # Network Selection
//
// Four predefined networks are available:
//
//	config.Testnet  - public testnet fullnode and suiscan explorer
//	config.Mainnet  - public mainnet fullnode
//	config.Devnet   - public devnet fullnode
//	config.Localnet - a `sui start` node on 127.0.0.1:9000
//
// A network named after one of these inherits its fullnode and explorer:
//
//	cfg := &config.Config{Network: config.Network{Name: "mainnet"}}
//
// # Signer
//
// PrivateKey accepts a bech32 "suiprivkey" string, a base64 keystore entry
// or a hex seed. The NFT_STUDIO_PRIVATE_KEY environment variable overrides
// it. Without a key the studio runs read-only until a wallet is connected.
//
// # Files
//
// LoadFile decodes YAML, TOML or JSON by extension. Timeouts are written as
// duration strings:
//
//	network:
//	  name: testnet
//	contract:
//	  package: "0x8a2c..."
//	  module: loyalty_card
//	  function: mint_loyalty
//	timeouts:
//	  chain_read: 20s
//	  dry_run: 20s
//
// # Timeouts
//
// Zero timeouts are replaced by Timeouts.WithDefaults: Dial 5s, ChainRead 20s,
// DryRun 20s, ChainSubmit 30s and Upload 60s.
package config
