// Package model defines the data structures shared by the studio: raw owned
// objects returned by a Sui fullnode, their normalized NFT projection, the
// mint-capability state, the user-editable contract triple, and gas estimates.
// These structs mirror the JSON documents served by the fullnode and by the
// studio HTTP API.
package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// GasBudget is the fixed gas budget attached to mint transactions, in MIST.
	GasBudget uint64 = 10_000_000
	// MistPerSui is the divisor used to convert MIST into SUI.
	MistPerSui int64 = 1_000_000_000
	// MaxUploadSize bounds image uploads (10 MiB).
	MaxUploadSize int64 = 10 << 20
	// ImageMIMEPrefix is the accepted MIME type prefix for uploads.
	ImageMIMEPrefix = "image/"
	// ImageURLPrefix is the prefix every mintable image reference must carry.
	ImageURLPrefix = "http"

	// DefaultPackage is the example loyalty package deployed on testnet.
	DefaultPackage = "0xe44dfbca16d4801977939518d43d64a1c6dc032c06ecf77f2b2df8d8dfe32880"
	// DefaultModule is the Move module holding the mint entry point.
	DefaultModule = "loyalty_card"
	// DefaultFunction is the mint entry point name.
	DefaultFunction = "mint_loyalty"
)

// FunctionPresets lists the quick-select mint function names, default first.
var FunctionPresets = []string{DefaultFunction, "mint", "mint_nft", "create_nft"}

// OwnedObject is one record returned by the "list objects owned by address"
// endpoint. Fields holds the decoded Move struct content and may be nil for
// objects without parsed content.
type OwnedObject struct {
	ObjectID string         `json:"object_id"`
	Version  uint64         `json:"version"`
	Digest   string         `json:"digest"`
	Type     string         `json:"type"`
	Owner    string         `json:"owner,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// Field returns the named content field rendered as a string. Missing, nil
// and empty values report ok == false.
func (o OwnedObject) Field(name string) (string, bool) {
	v, ok := o.Fields[name]
	if !ok || v == nil {
		return "", false
	}
	s, isStr := v.(string)
	if !isStr {
		s = fmt.Sprint(v)
	}
	if s == "" {
		return "", false
	}
	return s, true
}

// DisplayNFT is the normalized projection of an owned NFT object.
type DisplayNFT struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageURL    *string `json:"img_url"`
	ExplorerURL string  `json:"explorer_url,omitempty"`
}

// PreviewNFT is the unsigned draft shown before minting.
type PreviewNFT struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"img_url"`
}

// MintResult is returned after the wallet executed a mint transaction.
type MintResult struct {
	Digest string `json:"digest"`
	Status string `json:"status"`
}

// ContractConfig is the package/module/function triple that locates the mint
// entry point. It is a value type; every change produces a new value.
type ContractConfig struct {
	Package  string `json:"package" yaml:"package" toml:"package"`
	Module   string `json:"module" yaml:"module" toml:"module"`
	Function string `json:"function" yaml:"function" toml:"function"`
}

// DefaultContract returns the example loyalty-card contract.
func DefaultContract() ContractConfig {
	return ContractConfig{
		Package:  DefaultPackage,
		Module:   DefaultModule,
		Function: DefaultFunction,
	}
}

// Target returns the fully-qualified entry point <package>::<module>::<function>.
func (c ContractConfig) Target() string {
	return c.Package + "::" + c.Module + "::" + c.Function
}

// LoyaltyType is the fully-qualified Loyalty struct type for this contract.
func (c ContractConfig) LoyaltyType() string {
	return c.Package + "::" + c.Module + "::Loyalty"
}

// NFTType is the fully-qualified NFT struct type for this contract.
func (c ContractConfig) NFTType() string {
	return c.Package + "::" + c.Module + "::NFT"
}

// Validate checks that every part of the triple is present and the package
// looks like a hex object ID.
func (c ContractConfig) Validate() error {
	switch {
	case c.Package == "":
		return &ValidationError{Field: "package", Err: ErrPackageRequired}
	case !strings.HasPrefix(c.Package, "0x"):
		return &ValidationError{Field: "package", Err: ErrPackageNotHex}
	case c.Module == "":
		return &ValidationError{Field: "module", Err: ErrModuleRequired}
	case c.Function == "":
		return &ValidationError{Field: "function", Err: ErrFunctionRequired}
	}
	return nil
}

// CapabilityState is the outcome of a mint-capability search for one account.
// Exactly one of the following holds: Found with CapabilityID set; not found
// with an informational Reason; Err set when the search itself failed; or the
// zero value, meaning no search has completed yet.
type CapabilityState struct {
	Found        bool   `json:"found"`
	CapabilityID string `json:"capability_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Err          error  `json:"-"`

	// object is kept so the estimator can reference the capability as an
	// owned-object input without another query.
	object *OwnedObject
}

// NoCapabilityReason is reported when an account owns no capability object.
const NoCapabilityReason = "No admin capability found. Your contract allows public minting without admin rights."

// CapabilityFound reports the given object as the active capability.
func CapabilityFound(obj OwnedObject) CapabilityState {
	o := obj
	return CapabilityState{Found: true, CapabilityID: obj.ObjectID, object: &o}
}

// CapabilityAbsent reports the expected "public mint" state.
func CapabilityAbsent() CapabilityState {
	return CapabilityState{Reason: NoCapabilityReason}
}

// CapabilityUnknown is the state before any search, e.g. after disconnecting.
func CapabilityUnknown() CapabilityState {
	return CapabilityState{}
}

// CapabilityError reports a failed search.
func CapabilityError(err error) CapabilityState {
	return CapabilityState{Err: err, Reason: "Failed to search for mint capabilities: " + err.Error()}
}

// Resolved reports whether a search has completed (successfully or not).
func (s CapabilityState) Resolved() bool {
	return s.Found || s.Reason != "" || s.Err != nil
}

// Object returns the capability object when Found.
func (s CapabilityState) Object() (OwnedObject, bool) {
	if !s.Found || s.object == nil {
		return OwnedObject{}, false
	}
	return *s.object, true
}

// EstimateStatus is the terminal state of one gas estimation cycle.
type EstimateStatus string

const (
	EstimateIdle         EstimateStatus = "idle"
	EstimateRunning      EstimateStatus = "estimating"
	EstimateSucceeded    EstimateStatus = "succeeded"
	EstimateFailed       EstimateStatus = "failed"
	EstimatePrecondition EstimateStatus = "precondition"
)

// TypicalCostMessage is shown when an estimate falls back.
const TypicalCostMessage = "Typical NFT minting cost: ~0.001-0.005 SUI"

// GasEstimate is the result of one preview/estimate action. Amounts are in SUI.
type GasEstimate struct {
	Status          EstimateStatus  `json:"status"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	ComputationCost decimal.Decimal `json:"computation_cost"`
	StorageCost     decimal.Decimal `json:"storage_cost"`
	StorageRebate   decimal.Decimal `json:"storage_rebate"`
	Error           string          `json:"error,omitempty"`
	Fallback        bool            `json:"fallback"`
	FallbackMessage string          `json:"fallback_message,omitempty"`
}

// Succeeded reports whether the simulation produced a cost breakdown.
func (g GasEstimate) Succeeded() bool {
	return g.Status == EstimateSucceeded
}
