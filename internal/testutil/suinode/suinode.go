// Package suinode runs an in-memory Sui fullnode for tests. It serves the
// JSON-RPC methods the studio uses through the go-ethereum rpc server, so
// clients can connect in-process or over httptest.
package suinode

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/crypto/blake2b"

	"github.com/suinft/nft-studio-go/pkg/blockchain"
	"github.com/suinft/nft-studio-go/pkg/model"
)

// DefaultGasPrice is the reference gas price served unless overridden.
const DefaultGasPrice = 1000

// DefaultGasUsed is the dry-run breakdown served unless overridden:
// 0.001 + 0.0025 - 0.0005 = 0.003 SUI.
var DefaultGasUsed = blockchain.GasCostSummary{
	ComputationCost: 1_000_000,
	StorageCost:     2_500_000,
	StorageRebate:   500_000,
}

// Node is a fake fullnode. Exported fields may be changed between calls;
// use Lock/Unlock when a request may be in flight.
type Node struct {
	mu sync.Mutex

	objects map[string][]model.OwnedObject
	coins   map[string][]blockchain.Coin
	seq     uint64

	// PageSize bounds every paginated response. Zero honours the client limit.
	PageSize int
	GasPrice uint64

	// Failure injection. A non-nil error fails the method with its message.
	ObjectsErr  error
	CoinsErr    error
	GasPriceErr error
	DryRunErr   error
	ExecuteErr  error

	// DryRunEffects overrides the simulated effects.
	DryRunEffects *blockchain.TransactionEffects
	// ExecuteFailure makes executed transactions abort with this message.
	ExecuteFailure string

	// BeforeCall runs synchronously before each method is served.
	BeforeCall func(method string)
	// OnExecute runs after a transaction signed by sender was accepted.
	OnExecute func(sender string, txBytes []byte)

	calls    map[string]int
	dryRuns  [][]byte
	executed [][]byte

	server *rpc.Server
}

// New starts a fake node with no objects or coins.
func New() *Node {
	n := &Node{
		objects:  make(map[string][]model.OwnedObject),
		coins:    make(map[string][]blockchain.Coin),
		calls:    make(map[string]int),
		GasPrice: DefaultGasPrice,
		server:   rpc.NewServer(),
	}
	svc := &service{node: n}
	if err := n.server.RegisterName("suix", svc); err != nil {
		panic(err)
	}
	if err := n.server.RegisterName("sui", svc); err != nil {
		panic(err)
	}
	return n
}

// Dial returns a client connected in-process.
func (n *Node) Dial() *blockchain.Client {
	return blockchain.NewClient(rpc.DialInProc(n.server))
}

// Handler exposes the node over HTTP, e.g. with httptest.NewServer.
func (n *Node) Handler() http.Handler {
	return n.server
}

// Close stops the server.
func (n *Node) Close() {
	n.server.Stop()
}

func (n *Node) Lock()   { n.mu.Lock() }
func (n *Node) Unlock() { n.mu.Unlock() }

// ObjectID returns a deterministic, canonical object id for i.
func ObjectID(i uint64) string {
	var a blockchain.Address
	binary.BigEndian.PutUint64(a[24:], i)
	a[0] = 0xa0
	return a.String()
}

func (n *Node) nextRef() (string, string) {
	n.seq++
	var d [blockchain.DigestLength]byte
	binary.BigEndian.PutUint64(d[:], n.seq)
	d[31] = 0x01
	return ObjectID(n.seq), blockchain.EncodeDigest(d[:])
}

// AddObject gives owner an object of the given type. Empty ObjectID, Digest
// and Version are filled in. It returns the stored object.
func (n *Node) AddObject(owner string, obj model.OwnedObject) model.OwnedObject {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, digest := n.nextRef()
	if obj.ObjectID == "" {
		obj.ObjectID = id
	}
	if obj.Digest == "" {
		obj.Digest = digest
	}
	if obj.Version == 0 {
		obj.Version = n.seq
	}
	obj.Owner = blockchain.NormalizeAddress(owner)
	key := obj.Owner
	n.objects[key] = append(n.objects[key], obj)
	return obj
}

// AddCoin gives owner a SUI coin with the given balance in MIST.
func (n *Node) AddCoin(owner string, balance uint64) blockchain.Coin {
	n.mu.Lock()
	defer n.mu.Unlock()
	id, digest := n.nextRef()
	coin := blockchain.Coin{
		CoinType:     blockchain.SuiCoinType,
		CoinObjectID: id,
		Version:      blockchain.StringUint64(n.seq),
		Digest:       digest,
		Balance:      blockchain.StringUint64(balance),
	}
	key := blockchain.NormalizeAddress(owner)
	n.coins[key] = append(n.coins[key], coin)
	return coin
}

// Calls returns how often method (e.g. "suix_getOwnedObjects") was served.
func (n *Node) Calls(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls[method]
}

// DryRuns returns the transaction bytes of every simulation, oldest first.
func (n *Node) DryRuns() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]byte(nil), n.dryRuns...)
}

// Executed returns the transaction bytes of every accepted execution.
func (n *Node) Executed() [][]byte {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]byte(nil), n.executed...)
}

// enter records the call, runs BeforeCall outside the lock and returns the
// injected error, if any.
func (n *Node) enter(method string, injected func() error) error {
	n.mu.Lock()
	n.calls[method]++
	hook := n.BeforeCall
	n.mu.Unlock()
	if hook != nil {
		hook(method)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return injected()
}

func (n *Node) pageBounds(cursor *string, limit *int, total int) (int, int, error) {
	start := 0
	if cursor != nil {
		v, err := strconv.Atoi(*cursor)
		if err != nil || v < 0 || v > total {
			return 0, 0, fmt.Errorf("invalid cursor %q", *cursor)
		}
		start = v
	}
	size := total - start
	if limit != nil && *limit > 0 && *limit < size {
		size = *limit
	}
	if n.PageSize > 0 && n.PageSize < size {
		size = n.PageSize
	}
	return start, start + size, nil
}

type service struct {
	node *Node
}

func (s *service) GetOwnedObjects(ctx context.Context, owner string, query *blockchain.ObjectQuery, cursor *string, limit *int) (*blockchain.ObjectPage, error) {
	n := s.node
	if err := n.enter("suix_getOwnedObjects", func() error { return n.ObjectsErr }); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	all := n.objects[blockchain.NormalizeAddress(owner)]
	start, end, err := n.pageBounds(cursor, limit, len(all))
	if err != nil {
		return nil, err
	}
	page := &blockchain.ObjectPage{Data: []blockchain.ObjectResponse{}}
	for _, obj := range all[start:end] {
		page.Data = append(page.Data, blockchain.ObjectResponse{Data: toWire(obj)})
	}
	if end < len(all) {
		next := strconv.Itoa(end)
		page.NextCursor = &next
		page.HasNextPage = true
	}
	return page, nil
}

func toWire(obj model.OwnedObject) *blockchain.ObjectData {
	d := &blockchain.ObjectData{
		ObjectID: obj.ObjectID,
		Version:  blockchain.StringUint64(obj.Version),
		Digest:   obj.Digest,
		Type:     obj.Type,
		Owner:    &blockchain.ObjectOwner{AddressOwner: obj.Owner},
	}
	if obj.Fields != nil {
		d.Content = &blockchain.MoveContent{DataType: "moveObject", Type: obj.Type, Fields: obj.Fields}
	}
	return d
}

func (s *service) GetCoins(ctx context.Context, owner string, coinType *string, cursor *string, limit *int) (*blockchain.CoinPage, error) {
	n := s.node
	if err := n.enter("suix_getCoins", func() error { return n.CoinsErr }); err != nil {
		return nil, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()

	if coinType != nil && *coinType != blockchain.SuiCoinType {
		return &blockchain.CoinPage{Data: []blockchain.Coin{}}, nil
	}
	all := n.coins[blockchain.NormalizeAddress(owner)]
	start, end, err := n.pageBounds(cursor, limit, len(all))
	if err != nil {
		return nil, err
	}
	page := &blockchain.CoinPage{Data: append([]blockchain.Coin{}, all[start:end]...)}
	if end < len(all) {
		next := strconv.Itoa(end)
		page.NextCursor = &next
		page.HasNextPage = true
	}
	return page, nil
}

func (s *service) GetReferenceGasPrice(ctx context.Context) (string, error) {
	n := s.node
	if err := n.enter("suix_getReferenceGasPrice", func() error { return n.GasPriceErr }); err != nil {
		return "", err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return strconv.FormatUint(n.GasPrice, 10), nil
}

func (s *service) DryRunTransactionBlock(ctx context.Context, txBytes string) (*blockchain.DryRunResponse, error) {
	n := s.node
	if err := n.enter("sui_dryRunTransactionBlock", func() error { return n.DryRunErr }); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid tx bytes: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.dryRuns = append(n.dryRuns, raw)
	if n.DryRunEffects != nil {
		return &blockchain.DryRunResponse{Effects: *n.DryRunEffects}, nil
	}
	return &blockchain.DryRunResponse{Effects: blockchain.TransactionEffects{
		Status:  blockchain.ExecutionStatus{Status: blockchain.ExecutionSuccess},
		GasUsed: DefaultGasUsed,
	}}, nil
}

func (s *service) ExecuteTransactionBlock(ctx context.Context, txBytes string, signatures []string, options *blockchain.ExecuteOptions, requestType *string) (*blockchain.ExecuteResponse, error) {
	n := s.node
	if err := n.enter("sui_executeTransactionBlock", func() error { return n.ExecuteErr }); err != nil {
		return nil, err
	}
	raw, err := base64.StdEncoding.DecodeString(txBytes)
	if err != nil {
		return nil, fmt.Errorf("invalid tx bytes: %w", err)
	}
	if len(signatures) != 1 {
		return nil, errors.New("expected exactly one signature")
	}
	sender, err := blockchain.VerifyTransactionSignature(raw, signatures[0])
	if err != nil {
		return nil, err
	}

	digest := blake2b.Sum256(raw)
	resp := &blockchain.ExecuteResponse{
		Digest: blockchain.EncodeDigest(digest[:]),
		Effects: &blockchain.TransactionEffects{
			Status:  blockchain.ExecutionStatus{Status: blockchain.ExecutionSuccess},
			GasUsed: DefaultGasUsed,
		},
	}

	n.mu.Lock()
	if n.ExecuteFailure != "" {
		resp.Effects.Status = blockchain.ExecutionStatus{Status: "failure", Error: n.ExecuteFailure}
		n.mu.Unlock()
		return resp, nil
	}
	n.executed = append(n.executed, raw)
	hook := n.OnExecute
	n.mu.Unlock()

	if hook != nil {
		hook(sender.String(), raw)
	}
	return resp, nil
}
