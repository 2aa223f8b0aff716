package sdk

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/suinft/nft-studio-go/internal/testutil/suinode"
	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/config"
	"github.com/suinft/nft-studio-go/pkg/model"
)

func newSession(t *testing.T) (*suinode.Node, *Session) {
	t.Helper()
	node, client := newNode(t)
	s := NewSession(client, SessionOptions{Explorer: config.Testnet.ObjectURL})
	return node, s
}

// seed gives owner a capability, one loyalty card and one unrelated object.
func seed(node *suinode.Node, owner string) model.OwnedObject {
	capObj := node.AddObject(owner, model.OwnedObject{Type: contract.Package + "::loyalty_card::MintCap"})
	node.AddObject(owner, model.OwnedObject{Type: contract.LoyaltyType(), Fields: map[string]any{"name": "Card A", "img_url": "https://x/a.png"}})
	node.AddObject(owner, model.OwnedObject{Type: "0x2::coin::Coin<0x2::sui::SUI>"})
	return capObj
}

func TestSessionDefaults(t *testing.T) {
	_, s := newSession(t)
	st := s.State()
	if st.Contract != model.DefaultContract() {
		t.Fatalf("unexpected contract %+v", st.Contract)
	}
	if st.Account != "" || st.Capability.Resolved() || st.Estimate.Status != model.EstimateIdle {
		t.Fatalf("unexpected initial state %+v", st)
	}
}

func TestRefreshDisconnected(t *testing.T) {
	node, s := newSession(t)
	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if networkCalls(node) != 0 {
		t.Fatal("no query may run without an account")
	}
	if st := s.State(); st.Capability.Resolved() || len(st.NFTs) != 0 {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestRefreshConnected(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	capObj := seed(node, signer.Address().String())

	s.Connect(signer)
	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	st := s.State()
	if st.Account != signer.Address().String() {
		t.Fatalf("unexpected account %s", st.Account)
	}
	if !st.Capability.Found || st.Capability.CapabilityID != capObj.ObjectID {
		t.Fatalf("unexpected capability %+v", st.Capability)
	}
	if len(st.NFTs) != 1 || st.NFTs[0].Name != "Card A" {
		t.Fatalf("unexpected NFTs %+v", st.NFTs)
	}
	if st.NFTs[0].ExplorerURL != config.Testnet.ObjectURL(st.NFTs[0].ID) {
		t.Fatalf("unexpected explorer link %s", st.NFTs[0].ExplorerURL)
	}
}

func TestDisconnectResetsWithoutQuery(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	seed(node, signer.Address().String())
	s.Connect(signer)
	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	before := node.Calls("suix_getOwnedObjects")

	s.Disconnect()
	st := s.State()
	if st.Account != "" || st.Capability.Resolved() || st.NFTs != nil {
		t.Fatalf("state not reset: %+v", st)
	}
	if node.Calls("suix_getOwnedObjects") != before {
		t.Fatal("disconnect must not query")
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	seed(node, signer.Address().String())
	s.Connect(signer)

	other := model.ContractConfig{Package: "0xdef", Module: "badge", Function: "mint"}
	var switched atomic.Bool
	node.BeforeCall = func(method string) {
		if method == "suix_getOwnedObjects" && switched.CompareAndSwap(false, true) {
			if err := s.SetContract(other); err != nil {
				t.Errorf("SetContract: %v", err)
			}
		}
	}

	err := s.Refresh(testCtx(t))
	if !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	st := s.State()
	if st.Contract != other {
		t.Fatalf("contract change lost: %+v", st.Contract)
	}
	if st.Capability.Resolved() || len(st.NFTs) != 0 {
		t.Fatalf("stale result was committed: %+v", st)
	}

	node.BeforeCall = nil
	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if st := s.State(); len(st.NFTs) != 0 {
		t.Fatalf("new contract owns no NFTs, got %+v", st.NFTs)
	}
}

func TestApplyContractRecomputes(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	owner := signer.Address().String()
	badge := model.ContractConfig{Package: "0xdef", Module: "badge", Function: "mint"}
	capObj := node.AddObject(owner, model.OwnedObject{Type: "0xdef::badge::MintCap"})
	node.AddObject(owner, model.OwnedObject{Type: badge.LoyaltyType(), Fields: map[string]any{"name": "Badge"}})
	s.Connect(signer)

	if err := s.ApplyContract(testCtx(t), badge); err != nil {
		t.Fatalf("ApplyContract: %v", err)
	}
	st := s.State()
	if st.Contract != badge {
		t.Fatalf("contract not applied: %+v", st.Contract)
	}
	if !st.Capability.Found || st.Capability.CapabilityID != capObj.ObjectID {
		t.Fatalf("capability not recomputed: %+v", st.Capability)
	}
	if len(st.NFTs) != 1 || st.NFTs[0].Name != "Badge" {
		t.Fatalf("NFTs not recomputed: %+v", st.NFTs)
	}

	before := node.Calls("suix_getOwnedObjects")
	if err := s.ApplyContract(testCtx(t), model.ContractConfig{Package: "def"}); !errors.Is(err, model.ErrPackageNotHex) {
		t.Fatalf("expected ErrPackageNotHex, got %v", err)
	}
	if node.Calls("suix_getOwnedObjects") != before || s.Contract() != badge {
		t.Fatal("an invalid contract must neither apply nor query")
	}
}

func TestApplyContractQueryError(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	s.Connect(signer)
	node.Lock()
	node.ObjectsErr = errors.New("fullnode unavailable")
	node.Unlock()

	badge := model.ContractConfig{Package: "0xdef", Module: "badge", Function: "mint"}
	err := s.ApplyContract(testCtx(t), badge)
	if err == nil || !strings.Contains(err.Error(), "fullnode unavailable") {
		t.Fatalf("expected query error, got %v", err)
	}
	st := s.State()
	if st.Contract != badge || st.Error == "" {
		t.Fatalf("contract must stay applied with the error recorded: %+v", st)
	}
}

func TestApplyContractSupersededIsNotAnError(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	seed(node, signer.Address().String())
	s.Connect(signer)

	latest := model.ContractConfig{Package: "0xfeed", Module: "pass", Function: "mint"}
	var switched atomic.Bool
	node.BeforeCall = func(method string) {
		if method == "suix_getOwnedObjects" && switched.CompareAndSwap(false, true) {
			if err := s.SetContract(latest); err != nil {
				t.Errorf("SetContract: %v", err)
			}
		}
	}
	if err := s.ApplyContract(testCtx(t), model.ContractConfig{Package: "0xdef", Module: "badge", Function: "mint"}); err != nil {
		t.Fatalf("superseded recomputation must not fail: %v", err)
	}
	if st := s.State(); st.Contract != latest || st.Capability.Resolved() {
		t.Fatalf("newer change lost or stale result committed: %+v", st)
	}
}

func TestSwitchAccountRecomputes(t *testing.T) {
	node, s := newSession(t)
	first, second := newSigner(t, 1), newSigner(t, 2)
	seed(node, first.Address().String())

	if err := s.SwitchAccount(testCtx(t), first); err != nil {
		t.Fatalf("SwitchAccount: %v", err)
	}
	if st := s.State(); !st.Capability.Found || len(st.NFTs) != 1 {
		t.Fatalf("first account not recomputed: %+v", st)
	}

	if err := s.SwitchAccount(testCtx(t), second); err != nil {
		t.Fatalf("SwitchAccount: %v", err)
	}
	st := s.State()
	if st.Account != second.Address().String() || !st.Capability.Resolved() || st.Capability.Found || len(st.NFTs) != 0 {
		t.Fatalf("second account not recomputed: %+v", st)
	}

	before := node.Calls("suix_getOwnedObjects")
	if err := s.SwitchAccount(testCtx(t), nil); err != nil {
		t.Fatalf("SwitchAccount(nil): %v", err)
	}
	if st := s.State(); st.Account != "" || st.Capability.Resolved() || st.NFTs != nil {
		t.Fatalf("disconnect did not reset: %+v", st)
	}
	if node.Calls("suix_getOwnedObjects") != before {
		t.Fatal("disconnect must not query")
	}
}

func TestRefreshErrorKeepsPreviousNFTs(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	seed(node, signer.Address().String())
	s.Connect(signer)
	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	node.Lock()
	node.ObjectsErr = errors.New("fullnode unavailable")
	node.Unlock()

	err := s.Refresh(testCtx(t))
	var qe *model.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("expected QueryError, got %v", err)
	}
	st := s.State()
	if len(st.NFTs) != 1 {
		t.Fatalf("previous NFTs must be kept, got %+v", st.NFTs)
	}
	if st.Error == "" {
		t.Fatal("error message must be recorded")
	}
	if st.Capability.Err == nil {
		t.Fatal("capability search error must be recorded")
	}
}

func TestSessionMintRefreshes(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	owner := signer.Address().String()
	seed(node, owner)
	node.AddCoin(owner, 20_000_000)
	node.OnExecute = func(sender string, _ []byte) {
		node.AddObject(sender, model.OwnedObject{Type: contract.LoyaltyType(), Fields: map[string]any{"name": "Minted"}})
	}

	s.Connect(signer)
	res, err := s.Mint(testCtx(t), "https://x/new.png")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if res.Digest == "" {
		t.Fatal("missing digest")
	}
	st := s.State()
	if len(st.NFTs) != 2 || st.NFTs[1].Name != "Minted" {
		t.Fatalf("gallery not refreshed after mint: %+v", st.NFTs)
	}
}

func TestSessionMintStale(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	owner := signer.Address().String()
	seed(node, owner)
	node.AddCoin(owner, 20_000_000)
	s.Connect(signer)

	other := model.ContractConfig{Package: "0xdef", Module: "badge", Function: "mint"}
	node.BeforeCall = func(method string) {
		if method == "sui_executeTransactionBlock" {
			if err := s.SetContract(other); err != nil {
				t.Errorf("SetContract: %v", err)
			}
		}
	}
	before := node.Calls("suix_getOwnedObjects")

	res, err := s.Mint(testCtx(t), "https://x/new.png")
	if !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	if res == nil || res.Digest == "" {
		t.Fatalf("executed transaction must still be reported, got %+v", res)
	}
	if len(node.Executed()) != 1 {
		t.Fatalf("expected one executed transaction, got %d", len(node.Executed()))
	}
	if node.Calls("suix_getOwnedObjects") != before {
		t.Fatal("a stale mint must not refresh")
	}
	if st := s.State(); st.Contract != other || st.Capability.Resolved() || st.NFTs != nil {
		t.Fatalf("stale mint touched the new pair's state: %+v", st)
	}
}

func TestSessionMintWithoutWallet(t *testing.T) {
	node, s := newSession(t)
	_, err := s.Mint(testCtx(t), "https://x/new.png")
	if !errors.Is(err, model.ErrWalletNotConnected) {
		t.Fatalf("expected ErrWalletNotConnected, got %v", err)
	}
	if networkCalls(node) != 0 {
		t.Fatal("no network call expected")
	}
}

func TestSessionMintFailureRecorded(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 1)
	node.AddCoin(signer.Address().String(), 20_000_000)
	node.ExecuteErr = errors.New("User rejected the request")
	s.Connect(signer)

	_, err := s.Mint(testCtx(t), "https://x/new.png")
	var se *model.SubmissionError
	if !errors.As(err, &se) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	got := s.State().Error
	if !strings.HasPrefix(got, "Minting failed: ") || !strings.Contains(got, "User rejected the request") {
		t.Fatalf("unexpected recorded error %q", got)
	}
}

func TestSessionEstimateStates(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 3)
	owner := signer.Address().String()
	seed(node, owner)
	node.AddCoin(owner, 20_000_000)

	got, err := s.EstimateGas(testCtx(t), EstimateInput{})
	if err != nil || got.Status != model.EstimatePrecondition || got.Error != ReasonWalletNotConnected {
		t.Fatalf("unexpected estimate %+v (%v)", got, err)
	}

	s.Connect(signer)
	if s.Estimate().Status != model.EstimateIdle {
		t.Fatal("connect must reset the estimate to idle")
	}
	got, _ = s.EstimateGas(testCtx(t), EstimateInput{})
	if got.Error != ReasonNoCapability {
		t.Fatalf("capability not resolved yet, got %+v", got)
	}

	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	var observed model.EstimateStatus
	node.BeforeCall = func(method string) {
		if method == "sui_dryRunTransactionBlock" {
			observed = s.Estimate().Status
		}
	}
	got, err = s.EstimateGas(testCtx(t), EstimateInput{Name: "Gold"})
	if err != nil || !got.Succeeded() {
		t.Fatalf("unexpected estimate %+v (%v)", got, err)
	}
	if observed != model.EstimateRunning {
		t.Fatalf("expected estimating state during the dry run, saw %q", observed)
	}
	if s.Estimate().Status != model.EstimateSucceeded {
		t.Fatal("terminal state not committed")
	}
}

func TestSessionEstimateStale(t *testing.T) {
	node, s := newSession(t)
	signer := newSigner(t, 3)
	owner := signer.Address().String()
	seed(node, owner)
	node.AddCoin(owner, 20_000_000)
	s.Connect(signer)
	if err := s.Refresh(testCtx(t)); err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	node.BeforeCall = func(method string) {
		if method == "sui_dryRunTransactionBlock" {
			s.Disconnect()
		}
	}
	if _, err := s.EstimateGas(testCtx(t), EstimateInput{}); !errors.Is(err, ErrStaleResult) {
		t.Fatalf("expected ErrStaleResult, got %v", err)
	}
	if s.Estimate().Status != model.EstimateIdle {
		t.Fatalf("stale estimate committed: %+v", s.Estimate())
	}
}

func TestSetFunction(t *testing.T) {
	_, s := newSession(t)
	before := s.State().Generation
	if err := s.SetFunction("mint_nft"); err != nil {
		t.Fatalf("SetFunction: %v", err)
	}
	if got := s.Contract().Function; got != "mint_nft" {
		t.Fatalf("unexpected function %s", got)
	}
	if s.State().Generation == before {
		t.Fatal("function change must invalidate in-flight results")
	}
	if err := s.SetFunction(" "); !errors.Is(err, model.ErrFunctionRequired) {
		t.Fatalf("expected ErrFunctionRequired, got %v", err)
	}
	if err := s.SetContract(model.ContractConfig{Package: "abc", Module: "m", Function: "f"}); !errors.Is(err, model.ErrPackageNotHex) {
		t.Fatalf("expected ErrPackageNotHex, got %v", err)
	}
}

func TestPreview(t *testing.T) {
	_, s := newSession(t)
	p, err := s.Preview("Gold", "VIP", "https://x/a.png")
	if err != nil || p.Name != "Gold" || p.ImageURL != "https://x/a.png" {
		t.Fatalf("unexpected preview %+v (%v)", p, err)
	}
	if _, err := s.Preview("", "VIP", "https://x/a.png"); !errors.Is(err, model.ErrPreviewIncomplete) {
		t.Fatalf("expected ErrPreviewIncomplete, got %v", err)
	}
	if _, err := s.Preview("Gold", "VIP", "ipfs://bafy"); !errors.Is(err, model.ErrImageNotHTTP) {
		t.Fatalf("expected ErrImageNotHTTP, got %v", err)
	}
}

var _ Chain = (*blockchain.Client)(nil)
