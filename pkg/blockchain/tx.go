package blockchain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/suinft/nft-studio-go/pkg/model"
)

// ObjectRef identifies a specific version of an owned object.
type ObjectRef struct {
	ObjectID Address
	Version  uint64
	Digest   [DigestLength]byte
}

// NewObjectRef builds a reference from fullnode representations: hex ID and
// base58 digest.
func NewObjectRef(id string, version uint64, digest string) (ObjectRef, error) {
	var ref ObjectRef
	addr, err := ParseAddress(id)
	if err != nil {
		return ref, err
	}
	d, err := ParseDigest(digest)
	if err != nil {
		return ref, err
	}
	ref.ObjectID = addr
	ref.Version = version
	copy(ref.Digest[:], d)
	return ref, nil
}

// ObjectRefFromOwned builds a reference from a listed owned object.
func ObjectRefFromOwned(o model.OwnedObject) (ObjectRef, error) {
	return NewObjectRef(o.ObjectID, o.Version, o.Digest)
}

type argumentKind uint8

const (
	argGasCoin argumentKind = iota
	argInput
	argResult
)

// Argument refers to a transaction input, a command result, or the gas coin.
type Argument struct {
	kind  argumentKind
	index uint16
}

// GasCoin is the argument referring to the transaction's gas coin.
func GasCoin() Argument { return Argument{kind: argGasCoin} }

func (a Argument) encode(w *bcsWriter) {
	w.tag(int(a.kind))
	if a.kind != argGasCoin {
		w.u16(a.index)
	}
}

type callArg struct {
	pure   []byte
	object *ObjectRef
}

type moveCall struct {
	pkg      Address
	module   string
	function string
	args     []Argument
}

// Transaction accumulates a programmable transaction made of Move calls and
// serializes it into TransactionData bytes ready for dry-run or signing.
type Transaction struct {
	inputs   []callArg
	commands []moveCall

	sender    *Address
	gasPrice  uint64
	gasBudget uint64
	payment   []ObjectRef
}

// NewTransaction returns an empty transaction.
func NewTransaction() *Transaction {
	return &Transaction{}
}

func (tx *Transaction) addInput(in callArg) Argument {
	tx.inputs = append(tx.inputs, in)
	return Argument{kind: argInput, index: uint16(len(tx.inputs) - 1)}
}

// PureString adds a Move String input.
func (tx *Transaction) PureString(s string) Argument {
	return tx.addInput(callArg{pure: EncodePureString(s)})
}

// PureAddress adds a Move address input.
func (tx *Transaction) PureAddress(a Address) Argument {
	return tx.addInput(callArg{pure: EncodePureAddress(a)})
}

// Object adds an owned or immutable object input.
func (tx *Transaction) Object(ref ObjectRef) Argument {
	r := ref
	return tx.addInput(callArg{object: &r})
}

// MoveCall appends a call to target ("<package>::<module>::<function>") and
// returns the argument referring to its result.
func (tx *Transaction) MoveCall(target string, args ...Argument) (Argument, error) {
	pkg, module, function, err := ParseTarget(target)
	if err != nil {
		return Argument{}, err
	}
	tx.commands = append(tx.commands, moveCall{
		pkg:      pkg,
		module:   module,
		function: function,
		args:     append([]Argument(nil), args...),
	})
	return Argument{kind: argResult, index: uint16(len(tx.commands) - 1)}, nil
}

// SetSender sets the sender; it also owns the gas payment.
func (tx *Transaction) SetSender(a Address) { tx.sender = &a }

// SetGasPrice sets the gas price in MIST per unit.
func (tx *Transaction) SetGasPrice(p uint64) { tx.gasPrice = p }

// SetGasBudget sets the gas budget in MIST.
func (tx *Transaction) SetGasBudget(b uint64) { tx.gasBudget = b }

// SetGasPayment sets the coins used to pay gas.
func (tx *Transaction) SetGasPayment(refs []ObjectRef) {
	tx.payment = append([]ObjectRef(nil), refs...)
}

// Build serializes TransactionData::V1 with no expiration.
func (tx *Transaction) Build() ([]byte, error) {
	switch {
	case tx.sender == nil:
		return nil, errors.New("transaction sender not set")
	case len(tx.commands) == 0:
		return nil, errors.New("transaction has no commands")
	case len(tx.payment) == 0:
		return nil, errors.New("transaction gas payment not set")
	case tx.gasBudget == 0:
		return nil, errors.New("transaction gas budget not set")
	}

	var w bcsWriter
	w.tag(0) // TransactionData::V1

	w.tag(0) // TransactionKind::ProgrammableTransaction
	w.uleb128(uint64(len(tx.inputs)))
	for _, in := range tx.inputs {
		if in.object != nil {
			w.tag(1) // CallArg::Object
			w.tag(0) // ObjectArg::ImmOrOwnedObject
			w.objectRef(*in.object)
			continue
		}
		w.tag(0) // CallArg::Pure
		w.bytes(in.pure)
	}
	w.uleb128(uint64(len(tx.commands)))
	for _, c := range tx.commands {
		w.tag(0) // Command::MoveCall
		w.address(c.pkg)
		w.str(c.module)
		w.str(c.function)
		w.uleb128(0) // type arguments
		w.uleb128(uint64(len(c.args)))
		for _, a := range c.args {
			a.encode(&w)
		}
	}

	w.address(*tx.sender)

	w.uleb128(uint64(len(tx.payment)))
	for _, ref := range tx.payment {
		w.objectRef(ref)
	}
	w.address(*tx.sender)
	w.u64(tx.gasPrice)
	w.u64(tx.gasBudget)

	w.tag(0) // TransactionExpiration::None

	return w.Bytes(), nil
}

// ParseTarget splits "<package>::<module>::<function>" and validates each part.
func ParseTarget(target string) (pkg Address, module, function string, err error) {
	parts := strings.Split(target, "::")
	if len(parts) != 3 {
		return pkg, "", "", fmt.Errorf("invalid move call target %q: want <package>::<module>::<function>", target)
	}
	pkg, err = ParseAddress(parts[0])
	if err != nil {
		return pkg, "", "", fmt.Errorf("invalid move call target %q: %w", target, err)
	}
	if !isMoveIdentifier(parts[1]) {
		return pkg, "", "", fmt.Errorf("invalid module name %q", parts[1])
	}
	if !isMoveIdentifier(parts[2]) {
		return pkg, "", "", fmt.Errorf("invalid function name %q", parts[2])
	}
	return pkg, parts[1], parts[2], nil
}

// isMoveIdentifier matches [A-Za-z][A-Za-z0-9_]* or _[A-Za-z0-9_]+.
func isMoveIdentifier(s string) bool {
	if s == "" || s == "_" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
