package sdk

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/config"
	"github.com/suinft/nft-studio-go/pkg/model"
)

// ErrStaleResult is returned when the account or contract changed while a
// request was in flight. The late result is discarded, not committed.
var ErrStaleResult = errors.New("result discarded: account or contract changed while the request was in flight")

// State is a point-in-time copy of a Session.
type State struct {
	Account    string                `json:"account,omitempty"`
	Contract   model.ContractConfig  `json:"contract"`
	Capability model.CapabilityState `json:"capability"`
	NFTs       []model.DisplayNFT    `json:"nfts"`
	Estimate   model.GasEstimate     `json:"estimate"`
	Error      string                `json:"error,omitempty"`
	Generation uint64                `json:"generation"`
}

// Session holds the studio's working state for one operator: the connected
// account, the contract triple, and everything derived from the pair.
//
// Network calls run without the lock held. Every method that changes the
// pair bumps the generation; results are committed only when the
// generation observed at the start of a request is still current.
type Session struct {
	resolver  *Resolver
	gallery   *Gallery
	minter    *Minter
	estimator *Estimator
	timeouts  config.Timeouts

	mu         sync.Mutex
	signer     blockchain.Signer
	contract   model.ContractConfig
	capability model.CapabilityState
	nfts       []model.DisplayNFT
	estimate   model.GasEstimate
	lastErr    string
	generation uint64
}

// SessionOptions configures NewSession.
type SessionOptions struct {
	Contract  model.ContractConfig
	GasBudget uint64
	Timeouts  config.Timeouts
	// Explorer turns object ids into explorer links; may be nil.
	Explorer func(id string) string
	// Duplicates is consulted before minting; nil disables the check.
	Duplicates DuplicateChecker
}

// NewSession builds a Session on chain. The contract defaults to
// model.DefaultContract when opts.Contract is the zero value.
func NewSession(chain Chain, opts SessionOptions) *Session {
	contract := opts.Contract
	if contract == (model.ContractConfig{}) {
		contract = model.DefaultContract()
	}
	return &Session{
		resolver:  NewResolver(chain),
		gallery:   NewGallery(chain, opts.Explorer),
		minter:    NewMinter(chain, opts.GasBudget, opts.Duplicates),
		estimator: NewEstimator(chain, opts.GasBudget),
		timeouts:  opts.Timeouts.WithDefaults(),
		contract:  contract,
		estimate:  model.GasEstimate{Status: model.EstimateIdle},
	}
}

// resetLocked invalidates derived state. Callers hold s.mu.
func (s *Session) resetLocked() {
	s.generation++
	s.capability = model.CapabilityUnknown()
	s.nfts = nil
	s.estimate = model.GasEstimate{Status: model.EstimateIdle}
	s.lastErr = ""
}

// Connect makes signer the active account.
func (s *Session) Connect(signer blockchain.Signer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signer = signer
	s.resetLocked()
	if signer != nil {
		zap.L().Info("wallet connected", zap.String("address", signer.Address().String()))
	}
}

// Disconnect clears the account. The capability state returns to unknown
// without a search.
func (s *Session) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signer = nil
	s.resetLocked()
	zap.L().Info("wallet disconnected")
}

// SetContract replaces the contract triple after validating it.
func (s *Session) SetContract(c model.ContractConfig) error {
	if err := c.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contract = c
	s.resetLocked()
	return nil
}

// ApplyContract replaces the contract triple and recomputes the capability
// and NFTs for the new pair. A query failure is recorded in the state and
// returned; the contract stays applied.
func (s *Session) ApplyContract(ctx context.Context, c model.ContractConfig) error {
	if err := s.SetContract(c); err != nil {
		return err
	}
	return s.recompute(ctx)
}

// SwitchAccount connects signer, or disconnects when it is nil, and
// recomputes the derived state for the new pair.
func (s *Session) SwitchAccount(ctx context.Context, signer blockchain.Signer) error {
	if signer == nil {
		s.Disconnect()
	} else {
		s.Connect(signer)
	}
	return s.recompute(ctx)
}

// recompute refreshes after a change to the pair. A stale result means a
// newer change owns the state, so it is not an error here.
func (s *Session) recompute(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleResult) {
		zap.L().Warn("recomputing derived state failed", zap.Error(err))
		return err
	}
	return nil
}

// SetFunction changes only the mint function name.
func (s *Session) SetFunction(name string) error {
	s.mu.Lock()
	c := s.contract
	s.mu.Unlock()
	c.Function = strings.TrimSpace(name)
	return s.SetContract(c)
}

// Contract returns the current contract triple.
func (s *Session) Contract() model.ContractConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contract
}

// Account returns the connected address, or "" when disconnected.
func (s *Session) Account() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signer == nil {
		return ""
	}
	return s.signer.Address().String()
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Contract:   s.contract,
		Capability: s.capability,
		NFTs:       append([]model.DisplayNFT(nil), s.nfts...),
		Estimate:   s.estimate,
		Error:      s.lastErr,
		Generation: s.generation,
	}
	if s.signer != nil {
		st.Account = s.signer.Address().String()
	}
	return st
}

type snapshot struct {
	generation uint64
	signer     blockchain.Signer
	contract   model.ContractConfig
	capability model.CapabilityState
}

func (s *Session) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		generation: s.generation,
		signer:     s.signer,
		contract:   s.contract,
		capability: s.capability,
	}
}

// Refresh re-runs the capability search and the NFT listing for the current
// pair. With no account connected it clears derived state and makes no call.
// A failed listing keeps the previously committed NFTs and records the error.
func (s *Session) Refresh(ctx context.Context) error {
	snap := s.snapshot()
	if snap.signer == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation != snap.generation {
			return ErrStaleResult
		}
		s.capability = model.CapabilityUnknown()
		s.nfts = nil
		return nil
	}
	owner := snap.signer.Address().String()

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.ChainRead)
	defer cancel()

	capability := s.resolver.Resolve(ctx, owner, snap.contract.Module)
	nfts, err := s.gallery.Fetch(ctx, owner, snap.contract)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != snap.generation {
		zap.L().Debug("discarding stale refresh", zap.Uint64("started", snap.generation), zap.Uint64("current", s.generation))
		return ErrStaleResult
	}
	s.capability = capability
	if err != nil {
		s.lastErr = err.Error()
		return err
	}
	s.nfts = nfts
	s.lastErr = ""
	return nil
}

// Mint submits a mint for imageURL with the current account and contract,
// then refreshes. If the pair changed during submission the transaction has
// still executed: its result is returned together with ErrStaleResult and no
// refresh is done.
func (s *Session) Mint(ctx context.Context, imageURL string) (*model.MintResult, error) {
	snap := s.snapshot()

	submitCtx, cancel := context.WithTimeout(ctx, s.timeouts.ChainSubmit)
	res, err := s.minter.Mint(submitCtx, snap.signer, snap.contract, imageURL)
	cancel()
	if err != nil {
		if !model.IsValidation(err) {
			s.recordError(snap.generation, err)
		}
		return nil, err
	}

	s.mu.Lock()
	stale := s.generation != snap.generation
	s.mu.Unlock()
	if stale {
		return res, ErrStaleResult
	}

	zap.L().Info("NFT minted successfully", zap.String("digest", res.Digest))
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleResult) {
		zap.L().Warn("refresh after mint failed", zap.Error(err))
	}
	return res, nil
}

func (s *Session) recordError(generation uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == generation {
		s.lastErr = err.Error()
	}
}

// Preview validates a draft. All three fields are required and the image
// must be an http(s) URL.
func (s *Session) Preview(name, description, imageURL string) (*model.PreviewNFT, error) {
	if name == "" || description == "" || imageURL == "" {
		return nil, &model.ValidationError{Field: "preview", Err: model.ErrPreviewIncomplete}
	}
	if !strings.HasPrefix(imageURL, model.ImageURLPrefix) {
		return nil, &model.ValidationError{Field: "img_url", Err: model.ErrImageNotHTTP}
	}
	return &model.PreviewNFT{Name: name, Description: description, ImageURL: imageURL}, nil
}

// EstimateGas runs one estimation cycle: Idle, Estimating, then a terminal
// state. The only error is ErrStaleResult.
func (s *Session) EstimateGas(ctx context.Context, in EstimateInput) (model.GasEstimate, error) {
	s.mu.Lock()
	snap := snapshot{generation: s.generation, signer: s.signer, contract: s.contract, capability: s.capability}
	s.estimate = model.GasEstimate{Status: model.EstimateRunning}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.timeouts.DryRun)
	defer cancel()
	est := s.estimator.Estimate(ctx, snap.signer, snap.capability, snap.contract, in)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != snap.generation {
		return est, ErrStaleResult
	}
	s.estimate = est
	return est, nil
}

// Estimate returns the latest estimation state.
func (s *Session) Estimate() model.GasEstimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.estimate
}
