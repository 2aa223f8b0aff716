// Package storage uploads NFT images to IPFS and reads them back.
//
// Images are added through a Kubo HTTP API node and referenced two ways: the
// content URI ipfs://<cid> and a public gateway link <gateway><cid>. Only the
// gateway link starts with http, so it is the one handed to the mint call.
//
// # Uploading
//
//	client := storage.NewStorage("http://127.0.0.1:5001", "https://ipfs.io/ipfs/")
//	up, err := client.UploadImage(ctx, "card.png", file)
//	// up.URI        == "ipfs://bafy..."
//	// up.GatewayURL == "https://ipfs.io/ipfs/bafy..."
//
// Uploads larger than 10 MiB or whose content is not an image are rejected
// with a model.ValidationError before anything is sent to the node.
//
// # Reading
//
// ReadFile accepts ipfs:// URIs, bare CIDs and http(s) URLs:
//
//	data, err := client.ReadFile(ctx, "ipfs://bafy...")
//	data, err := client.ReadFile(ctx, "https://ipfs.io/ipfs/bafy...")
//
// # Testing
//
// NewStorageWithBackends accepts any IPFSBackend and GatewayFetcher, so tests
// can run without a daemon.
package storage
