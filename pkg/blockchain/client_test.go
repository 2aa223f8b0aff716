package blockchain_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/suinft/nft-studio-go/internal/testutil/suinode"
	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/model"
)

const owner = "0x5"

func newNode(t *testing.T) (*suinode.Node, *blockchain.Client) {
	t.Helper()
	node := suinode.New()
	client := node.Dial()
	t.Cleanup(func() {
		client.Close()
		node.Close()
	})
	return node, client
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return c
}

func TestGetOwnedObjectsPaginates(t *testing.T) {
	node, client := newNode(t)
	node.PageSize = 2
	for i := 0; i < 5; i++ {
		node.AddObject(owner, model.OwnedObject{
			Type:   "0x2::m::Thing",
			Fields: map[string]any{"name": "n", "index": i},
		})
	}
	node.AddObject("0x6", model.OwnedObject{Type: "0x2::m::Other"})

	objs, err := client.GetOwnedObjects(ctx(t), owner)
	if err != nil {
		t.Fatalf("GetOwnedObjects: %v", err)
	}
	if len(objs) != 5 {
		t.Fatalf("expected 5 objects, got %d", len(objs))
	}
	if calls := node.Calls("suix_getOwnedObjects"); calls != 3 {
		t.Fatalf("expected 3 pages, got %d", calls)
	}
	first := objs[0]
	if first.Type != "0x2::m::Thing" || first.Version == 0 || first.Digest == "" {
		t.Fatalf("unexpected object %+v", first)
	}
	if first.Owner != blockchain.NormalizeAddress(owner) {
		t.Fatalf("unexpected owner %s", first.Owner)
	}
	if v, ok := first.Field("name"); !ok || v != "n" {
		t.Fatalf("unexpected name field %q", v)
	}
	if v, _ := objs[4].Field("index"); v != "4" {
		t.Fatalf("unexpected index field %q", v)
	}
}

func TestGetOwnedObjectsEmpty(t *testing.T) {
	_, client := newNode(t)
	objs, err := client.GetOwnedObjects(ctx(t), owner)
	if err != nil {
		t.Fatalf("GetOwnedObjects: %v", err)
	}
	if len(objs) != 0 {
		t.Fatalf("expected no objects, got %d", len(objs))
	}
}

func TestGetOwnedObjectsError(t *testing.T) {
	node, client := newNode(t)
	node.ObjectsErr = errors.New("node unavailable")
	_, err := client.GetOwnedObjects(ctx(t), owner)
	if err == nil || !strings.Contains(err.Error(), "node unavailable") {
		t.Fatalf("expected node error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "suix_getOwnedObjects") {
		t.Fatalf("error should name the method: %v", err)
	}
}

func TestCoinsAndGasSelection(t *testing.T) {
	node, client := newNode(t)
	node.PageSize = 1
	node.AddCoin(owner, 4_000_000)
	node.AddCoin(owner, 4_000_000)
	node.AddCoin(owner, 4_000_000)

	coins, err := client.GetCoins(ctx(t), owner)
	if err != nil {
		t.Fatalf("GetCoins: %v", err)
	}
	if len(coins) != 3 {
		t.Fatalf("expected 3 coins, got %d", len(coins))
	}

	refs, err := blockchain.SelectGasCoins(coins, model.GasBudget)
	if err != nil {
		t.Fatalf("SelectGasCoins: %v", err)
	}
	if len(refs) != 3 {
		t.Fatalf("expected all 3 coins to be selected, got %d", len(refs))
	}

	refs, err = blockchain.SelectGasCoins(coins, 5_000_000)
	if err != nil || len(refs) != 2 {
		t.Fatalf("expected 2 coins, got %d (%v)", len(refs), err)
	}

	if _, err := blockchain.SelectGasCoins(coins[:1], model.GasBudget); !errors.Is(err, blockchain.ErrInsufficientGas) {
		t.Fatalf("expected ErrInsufficientGas, got %v", err)
	}
	if _, err := blockchain.SelectGasCoins(nil, model.GasBudget); !errors.Is(err, blockchain.ErrInsufficientGas) {
		t.Fatalf("expected ErrInsufficientGas for no coins, got %v", err)
	}
}

func TestGetReferenceGasPrice(t *testing.T) {
	node, client := newNode(t)
	node.GasPrice = 750
	price, err := client.GetReferenceGasPrice(ctx(t))
	if err != nil {
		t.Fatalf("GetReferenceGasPrice: %v", err)
	}
	if price != 750 {
		t.Fatalf("got %d", price)
	}
}

func buildTx(t *testing.T, node *suinode.Node, signer blockchain.Signer) []byte {
	t.Helper()
	coin := node.AddCoin(signer.Address().String(), 50_000_000)
	ref, err := coin.Ref()
	if err != nil {
		t.Fatalf("Ref: %v", err)
	}
	tx := blockchain.NewTransaction()
	if _, err := tx.MoveCall(model.DefaultContract().Target(), tx.PureAddress(signer.Address()), tx.PureString("https://x/img.png")); err != nil {
		t.Fatalf("MoveCall: %v", err)
	}
	tx.SetSender(signer.Address())
	tx.SetGasPrice(suinode.DefaultGasPrice)
	tx.SetGasBudget(model.GasBudget)
	tx.SetGasPayment([]blockchain.ObjectRef{ref})
	txBytes, err := tx.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return txBytes
}

func TestDryRunTransaction(t *testing.T) {
	node, client := newNode(t)
	signer, _ := blockchain.NewEd25519Signer(make([]byte, 32))
	txBytes := buildTx(t, node, signer)

	resp, err := client.DryRunTransaction(ctx(t), txBytes)
	if err != nil {
		t.Fatalf("DryRunTransaction: %v", err)
	}
	if resp.Effects.Status.Status != blockchain.ExecutionSuccess {
		t.Fatalf("unexpected status %+v", resp.Effects.Status)
	}
	if resp.Effects.GasUsed.Total() != 3_000_000 {
		t.Fatalf("unexpected total %d", resp.Effects.GasUsed.Total())
	}
	runs := node.DryRuns()
	if len(runs) != 1 || string(runs[0]) != string(txBytes) {
		t.Fatal("node did not receive the built bytes")
	}

	node.DryRunEffects = &blockchain.TransactionEffects{
		Status: blockchain.ExecutionStatus{Status: "failure", Error: "MoveAbort(1)"},
	}
	resp, err = client.DryRunTransaction(ctx(t), txBytes)
	if err != nil {
		t.Fatalf("DryRunTransaction: %v", err)
	}
	if resp.Effects.Status.Error != "MoveAbort(1)" {
		t.Fatalf("unexpected status %+v", resp.Effects.Status)
	}
}

func TestExecuteTransaction(t *testing.T) {
	node, client := newNode(t)
	signer, _ := blockchain.NewEd25519Signer(make([]byte, 32))
	txBytes := buildTx(t, node, signer)

	var executedBy string
	node.OnExecute = func(sender string, _ []byte) { executedBy = sender }

	sig, err := signer.SignTransaction(txBytes)
	if err != nil {
		t.Fatalf("SignTransaction: %v", err)
	}
	resp, err := client.ExecuteTransaction(ctx(t), txBytes, sig)
	if err != nil {
		t.Fatalf("ExecuteTransaction: %v", err)
	}
	if !resp.Succeeded() || resp.Digest == "" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if executedBy != signer.Address().String() {
		t.Fatalf("executed by %s", executedBy)
	}

	if _, err := client.ExecuteTransaction(ctx(t), txBytes, ""); err == nil {
		t.Fatal("expected error for unsigned transaction")
	}

	other, _ := blockchain.NewEd25519Signer(make([]byte, 32))
	badSig, _ := other.SignTransaction([]byte{1})
	if _, err := client.ExecuteTransaction(ctx(t), txBytes, badSig); err == nil {
		t.Fatal("expected signature rejection")
	}
}

func TestExecuteTransactionRejected(t *testing.T) {
	node, client := newNode(t)
	signer, _ := blockchain.NewEd25519Signer(make([]byte, 32))
	txBytes := buildTx(t, node, signer)
	node.ExecuteErr = errors.New("User rejected the request")

	sig, _ := signer.SignTransaction(txBytes)
	_, err := client.ExecuteTransaction(ctx(t), txBytes, sig)
	if err == nil || !strings.Contains(err.Error(), "User rejected the request") {
		t.Fatalf("expected rejection, got %v", err)
	}
	if len(node.Executed()) != 0 {
		t.Fatal("rejected transaction must not be recorded")
	}
}

func TestClientNotConfigured(t *testing.T) {
	var c *blockchain.Client
	if _, err := c.GetReferenceGasPrice(context.Background()); err == nil {
		t.Fatal("expected error from nil client")
	}
}
