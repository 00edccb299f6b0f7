// Package storage reads and writes off-chain license metadata documents on
// decentralized storage.
//
// When the SDK runs with MetadataStorage set to "ipfs", minting uploads the
// canonical metadata JSON to IPFS and embeds an ipfs://<cid> URI on-chain
// instead of the document itself. Reads resolve those URIs back into raw
// JSON for the license facade to decode.
//
// # Backends
//
// Writes always go through a Kubo HTTP API node (Config.IpfsURL). Reads
// prefer the same node and fall back to a public HTTP gateway
// (Config.GatewayURL) when the node is unreachable:
//
//	client := storage.NewClient(
//		"http://localhost:5001",
//		"https://ipfs.io/ipfs/",
//	)
//
//	uri, err := client.UploadJSON(ctx, metadata)   // "ipfs://Qm..."
//	raw, err := client.ReadDocument(ctx, uri)
//
// Both CIDv0 ("Qm...") and CIDv1 ("bafy...") identifiers are accepted, with
// or without the ipfs:// scheme.
//
// # Error Handling
//
// All failures are reported through the errs taxonomy: unreachable backends
// map to NetworkError (retryable), malformed CIDs to InvalidMetadata, and a
// missing upload node to InvalidConfig.
//
// # See Also
//
//   - config package for storage configuration
//   - model package for the metadata document structure
//   - license package for automatic URI resolution during reads
package storage
