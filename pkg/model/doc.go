// Package model defines data structures representing Sui owned objects, the
// NFTs the studio displays, and the state values produced by its pipeline.
//
// # Owned Objects
//
// OwnedObject is the raw record returned by suix_getOwnedObjects:
//
//	type OwnedObject struct {
//		ObjectID string         // 0x-prefixed object id
//		Version  uint64         // sequence number
//		Digest   string         // base58 object digest
//		Type     string         // e.g. "0xabc::loyalty_card::Loyalty"
//		Owner    string         // owning address
//		Fields   map[string]any // decoded Move struct fields
//	}
//
// Records live for one query cycle and are never mutated.
//
// # Display NFTs
//
// DisplayNFT is the uniform projection rendered by galleries. ImageURL is nil
// when the object carries neither img_url nor image_url.
//
// # Contract Configuration
//
// ContractConfig is the package/module/function triple. It is passed by value
// to every query so that results can be tied to the configuration that
// produced them:
//
//	cfg := model.DefaultContract()
//	cfg.Function = "mint_nft"
//	fmt.Println(cfg.Target()) // 0xe44d...::loyalty_card::mint_nft
//
// # Capability State
//
// CapabilityState is either found (with the capability object id), absent
// (an informational reason; public-mint contracts have no capability), an
// error (the search failed), or unresolved (zero value).
//
// # Gas Estimates
//
// GasEstimate carries either a cost breakdown in SUI or a failure reason with
// a fallback flag. TotalCost always equals
// ComputationCost + StorageCost - StorageRebate for successful estimates.
//
// # Errors
//
// ValidationError, QueryError and SubmissionError classify failures. Use
// errors.Is with the Err* sentinels to find the specific validation rule:
//
//	if errors.Is(err, model.ErrImageNotHTTP) {
//		// ask for an http(s) image URL
//	}
package model
