// Package blockchain provides low-level Sui fullnode interaction for the studio.
//
// This package contains a JSON-RPC client and the transaction plumbing needed
// to mint NFTs through a Move entry point:
//   - Owned-object listing with cursor pagination
//   - SUI coin listing, gas coin selection and reference gas price
//   - Dry-run simulation and signed execution
//   - BCS serialization of programmable transactions
//   - Ed25519 signing in the Sui serialized-signature format
//
// # Transport
//
// Client speaks Sui JSON-RPC over http(s) or websockets through the generic
// go-ethereum rpc client. Any *rpc.Client works, including in-process ones:
//
//	client, err := blockchain.Dial(ctx, "https://fullnode.testnet.sui.io:443")
//	objects, err := client.GetOwnedObjects(ctx, owner)
//
// # Building Transactions
//
//	tx := blockchain.NewTransaction()
//	_, err := tx.MoveCall(target,
//		tx.Object(capRef),
//		tx.PureAddress(sender),
//		tx.PureString(imageURL),
//	)
//	tx.SetSender(sender)
//	tx.SetGasPrice(price)
//	tx.SetGasBudget(model.GasBudget)
//	tx.SetGasPayment(coins)
//	txBytes, err := tx.Build()
//
// # Signing
//
// Keys are accepted as bech32 "suiprivkey1...", base64 keystore entries or hex
// seeds:
//
//	signer, err := blockchain.ParsePrivateKey(key)
//	sig, err := signer.SignTransaction(txBytes)
//	resp, err := client.ExecuteTransaction(ctx, txBytes, sig)
//
// # Amounts
//
// Gas amounts travel as decimal strings of MIST. MistToSui converts them to
// SUI with exact precision (1 SUI = 10^9 MIST).
package blockchain
