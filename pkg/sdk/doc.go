// Package sdk provides the high-level entry point of the NFT studio.
//
// It combines the Sui fullnode client, IPFS storage and the studio pipeline:
// mint-capability discovery, ownership filtering, mint submission and gas
// estimation.
//
// # Quick Start
//
//	import (
//		"github.com/suinft/nft-studio-go/pkg/config"
//		"github.com/suinft/nft-studio-go/pkg/sdk"
//	)
//
//	func main() {
//		cfg := &config.Config{
//			Network:    config.Testnet,
//			PrivateKey: "suiprivkey1...",
//		}
//
//		studio, err := sdk.NewSDK(context.Background(), cfg)
//		if err != nil {
//			log.Fatal(err)
//		}
//		defer studio.Close()
//
//		session := studio.Session()
//		if err := session.Refresh(ctx); err != nil {
//			log.Fatal(err)
//		}
//		for _, nft := range session.State().NFTs {
//			fmt.Println(nft.Name)
//		}
//
//		res, err := session.Mint(ctx, "https://example.com/card.png")
//	}
//
// # Pipeline
//
//   - FindCapability / Resolver: the first owned object whose type contains
//     AdminCap, MintCap, mint_cap or the module name
//   - FilterOwned / Gallery: objects whose type is exactly
//     <package>::<module>::Loyalty or <package>::<module>::NFT, normalized
//     into DisplayNFT records
//   - Minter: validates input, builds a MoveCall with (sender, image URL),
//     signs it and submits it
//   - Estimator: dry-runs a call with (capability, sender, image, name,
//     description) and reports the cost in SUI
//
// # Session
//
// Session owns the account and contract and everything derived from them.
// Changing either bumps a generation counter; a refresh, mint or estimate
// that started under an older generation is discarded with ErrStaleResult
// instead of overwriting newer state.
//
// # Errors
//
// Validation problems are *model.ValidationError and happen before any
// network call. Read failures are *model.QueryError. Rejected or aborted
// transactions are *model.SubmissionError. Simulation failures and missing
// preconditions are reported as GasEstimate states, never as errors.
//
// # Logging
//
// The package installs a console zap logger at info level. SetDebug(true)
// (or config.Debug) enables debug output, including every fullnode call.
package sdk
