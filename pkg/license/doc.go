// Package license is the contract facade: one method per logical license
// operation against the externally-deployed license contract.
//
// Mutating methods (Deploy, Mint, BatchMint, Transfer, Revoke, GrantRole,
// RevokeRole, Pause, Unpause) build an operation descriptor and delegate to
// the executor package, which owns gas resolution, retries, timeouts and
// confirmation waiting. The facade itself carries no retry or error policy.
//
// Read-only methods (VerifyLicense, GetLicenseMetadata, GetLicenseInfo,
// GetContractInfo, IsPaused, IsRevoked, HasRole) query the backend directly
// under a per-read deadline. Reads are idempotent; a caller that needs retry
// behavior can simply call again.
//
// # Usage
//
//	client := license.NewClient(exec, backend, license.Options{
//		Address: contractAddr,
//	})
//
//	outcome, err := client.Mint(ctx, recipient, "7", &model.LicenseMetadata{
//		Software: "photon-editor",
//		Version:  "2.1.0",
//		Features: []string{"export"},
//	})
//
//	valid, err := client.VerifyLicense(ctx, "7")
//
// Token ids are decimal strings end to end so values above 2^53 survive
// every boundary.
//
// # Metadata Modes
//
// With no storage backend configured, metadata is embedded on-chain as
// canonical JSON. With an IPFS storage backend, Mint uploads the document
// and embeds an ipfs:// URI instead; reads resolve the URI transparently.
//
// # Domain Errors
//
// Well-known revert reasons are refined into license-domain kinds at this
// layer: nonexistent-token reverts become LicenseNotFound, revocation
// reverts LicenseRevoked, AccessControl reverts InsufficientPermissions.
// Everything else keeps the kind assigned by the errs normalizer.
package license
