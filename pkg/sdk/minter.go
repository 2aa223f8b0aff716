package sdk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/model"
)

// DuplicateChecker reports whether an image URL has already been minted.
type DuplicateChecker interface {
	IsMinted(ctx context.Context, contract model.ContractConfig, imageURL string) (bool, error)
}

// NoDuplicateCheck never reports a duplicate.
type NoDuplicateCheck struct{}

func (NoDuplicateCheck) IsMinted(context.Context, model.ContractConfig, string) (bool, error) {
	return false, nil
}

// Minter builds, signs and submits mint transactions.
type Minter struct {
	chain  ChainWriter
	budget uint64
	dup    DuplicateChecker
}

// NewMinter returns a Minter with the given gas budget (MIST). A zero budget
// means model.GasBudget; a nil checker means NoDuplicateCheck.
func NewMinter(chain ChainWriter, budget uint64, dup DuplicateChecker) *Minter {
	if budget == 0 {
		budget = model.GasBudget
	}
	if dup == nil {
		dup = NoDuplicateCheck{}
	}
	return &Minter{chain: chain, budget: budget, dup: dup}
}

// ValidateMint checks mint inputs in order: wallet, image present, http prefix.
func ValidateMint(signer blockchain.Signer, imageURL string) error {
	switch {
	case signer == nil:
		return &model.ValidationError{Field: "wallet", Err: model.ErrWalletNotConnected}
	case imageURL == "":
		return &model.ValidationError{Field: "img_url", Err: model.ErrImageRequired}
	case !strings.HasPrefix(imageURL, model.ImageURLPrefix):
		return &model.ValidationError{Field: "img_url", Err: model.ErrImageNotHTTP}
	}
	return nil
}

// Mint calls contract's mint entry point with (sender address, image URL).
// Validation failures return a ValidationError before any network call.
// Every later failure, including an aborted execution, is a SubmissionError
// carrying the underlying message verbatim. Nothing is retried.
func (m *Minter) Mint(ctx context.Context, signer blockchain.Signer, contract model.ContractConfig, imageURL string) (*model.MintResult, error) {
	if err := ValidateMint(signer, imageURL); err != nil {
		return nil, err
	}

	minted, err := m.dup.IsMinted(ctx, contract, imageURL)
	if err != nil {
		zap.L().Warn("duplicate check failed, continuing", zap.Error(err))
	} else if minted {
		return nil, &model.ValidationError{Field: "img_url", Err: model.ErrAlreadyMinted}
	}

	sender := signer.Address()
	txBytes, err := buildMoveCall(ctx, m.chain, sender, contract.Target(), m.budget, func(tx *blockchain.Transaction) []blockchain.Argument {
		return []blockchain.Argument{
			tx.PureAddress(sender),
			tx.PureString(imageURL),
		}
	})
	if err != nil {
		zap.L().Error("Minting failed", zap.String("stage", "build"), zap.Error(err))
		return nil, model.NewSubmissionError(err)
	}

	sig, err := signer.SignTransaction(txBytes)
	if err != nil {
		zap.L().Error("Minting failed", zap.String("stage", "sign"), zap.Error(err))
		return nil, model.NewSubmissionError(err)
	}

	zap.L().Info("Submitting mint transaction", zap.String("target", contract.Target()), zap.String("sender", sender.String()))
	resp, err := m.chain.ExecuteTransaction(ctx, txBytes, sig)
	if err != nil {
		zap.L().Error("Minting failed", zap.String("stage", "execute"), zap.Error(err))
		return nil, model.NewSubmissionError(err)
	}
	if !resp.Succeeded() {
		msg := "transaction failed"
		if resp.Effects != nil && resp.Effects.Status.Error != "" {
			msg = resp.Effects.Status.Error
		}
		zap.L().Error("Minting failed", zap.String("digest", resp.Digest), zap.String("status", msg))
		return nil, &model.SubmissionError{Digest: resp.Digest, Message: msg}
	}

	return &model.MintResult{Digest: resp.Digest, Status: blockchain.ExecutionSuccess}, nil
}
