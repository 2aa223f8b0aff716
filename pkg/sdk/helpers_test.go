package sdk

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/suinft/nft-studio-go/internal/testutil/suinode"
	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/model"
)

var contract = model.DefaultContract()

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

func newSigner(t *testing.T, b byte) *blockchain.Ed25519Signer {
	t.Helper()
	s, err := blockchain.NewEd25519Signer(bytes.Repeat([]byte{b}, 32))
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}
	return s
}

func testCtx(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// networkCalls sums every method the fake node served.
func networkCalls(node *suinode.Node) int {
	total := 0
	for _, m := range []string{
		"suix_getOwnedObjects",
		"suix_getCoins",
		"suix_getReferenceGasPrice",
		"sui_dryRunTransactionBlock",
		"sui_executeTransactionBlock",
	} {
		total += node.Calls(m)
	}
	return total
}

type readerFunc func(ctx context.Context, owner string) ([]model.OwnedObject, error)

func (f readerFunc) GetOwnedObjects(ctx context.Context, owner string) ([]model.OwnedObject, error) {
	return f(ctx, owner)
}

func staticReader(objs ...model.OwnedObject) readerFunc {
	return func(context.Context, string) ([]model.OwnedObject, error) {
		return objs, nil
	}
}

// newHTTPNode serves node over HTTP and returns its URL.
func newHTTPNode(t *testing.T, node *suinode.Node) string {
	t.Helper()
	srv := httptest.NewServer(node.Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}
