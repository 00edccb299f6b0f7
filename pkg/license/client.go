package license

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/errs"
	"github.com/licensekit/license-sdk-go/pkg/executor"
	"github.com/licensekit/license-sdk-go/pkg/model"
	"github.com/licensekit/license-sdk-go/pkg/storage"
)

// Contract method names, matching the license contract ABI.
const (
	methodMint       = "mintLicense"
	methodBatchMint  = "batchMintLicenses"
	methodTransfer   = "transferLicense"
	methodRevoke     = "revokeLicense"
	methodGrantRole  = "grantRole"
	methodRevokeRole = "revokeRole"
	methodHasRole    = "hasRole"
	methodPause      = "pause"
	methodUnpause    = "unpause"
	methodPaused     = "paused"
	methodOwnerOf    = "ownerOf"
	methodIsValid    = "isLicenseValid"
	methodIsRevoked  = "isLicenseRevoked"
	methodMetadata   = "licenseMetadata"
	methodName       = "name"
	methodSymbol     = "symbol"
	methodSupply     = "totalSupply"
)

// Options configures a license Client.
type Options struct {
	// Address is the deployed license contract. May be zero when the client
	// is used for Deploy only.
	Address common.Address
	// Storage, when non-nil, switches metadata to off-chain mode: mint
	// uploads the document and embeds its URI, reads resolve URIs back.
	Storage storage.Storage
	// ReadTimeout bounds each read-only contract query.
	ReadTimeout time.Duration
}

// Client is the license contract facade. Every mutating method builds one
// operation descriptor and delegates to the executor; the client holds no
// retry or confirmation logic of its own. Read-only methods query the
// backend directly since reads are idempotent.
type Client struct {
	exec        *executor.Executor
	backend     executor.Backend
	store       storage.Storage
	address     common.Address
	readTimeout time.Duration
}

// NewClient constructs a facade over exec and backend.
func NewClient(exec *executor.Executor, backend executor.Backend, opts Options) *Client {
	return &Client{
		exec:        exec,
		backend:     backend,
		store:       opts.Storage,
		address:     opts.Address,
		readTimeout: opts.ReadTimeout,
	}
}

// Address returns the contract address the client operates on.
func (c *Client) Address() common.Address {
	return c.address
}

// Deploy broadcasts a contract creation transaction for the given deployment
// variant and waits for confirmation. The returned outcome carries the new
// contract address; the client itself is not rebound to it.
func (c *Client) Deploy(ctx context.Context, spec *model.DeploymentSpec) (*executor.TransactionOutcome, error) {
	if spec == nil {
		return nil, errs.New(errs.ValidationError, "deployment spec is required")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:     executor.OpDeploy,
		Bytecode: spec.Bytecode,
		Args:     spec.ConstructorArgs(),
	})
	if err != nil {
		return nil, mapLicenseError(err, "")
	}
	zap.L().Info("license contract deployed",
		zap.String("variant", string(spec.Variant)),
		zap.String("address", outcome.ContractAddress.Hex()),
		zap.String("tx", outcome.Hash))
	return outcome, nil
}

// Mint issues one license token to the recipient. In off-chain metadata mode
// the document is uploaded first and its URI is embedded instead.
func (c *Client) Mint(ctx context.Context, to common.Address, tokenID string, md *model.LicenseMetadata) (*executor.TransactionOutcome, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	blob, err := c.metadataArgument(ctx, md)
	if err != nil {
		return nil, err
	}

	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpMint,
		Target: c.address,
		Method: methodMint,
		Args:   []any{to, id, blob},
	})
	return outcome, mapLicenseError(err, tokenID)
}

// BatchMint issues several licenses in one atomic transaction. Either every
// entry is minted or none is.
func (c *Client) BatchMint(ctx context.Context, reqs []model.MintRequest) (*executor.TransactionOutcome, error) {
	if len(reqs) == 0 {
		return nil, errs.New(errs.ValidationError, "batch mint requires at least one entry")
	}

	recipients := make([]common.Address, 0, len(reqs))
	tokenIDs := make([]*big.Int, 0, len(reqs))
	blobs := make([]string, 0, len(reqs))
	for i, req := range reqs {
		id, err := model.ParseTokenID(req.TokenID)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidTokenId, fmt.Sprintf("batch entry %d", i), err)
		}
		blob, err := c.metadataArgument(ctx, req.Metadata)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, req.To)
		tokenIDs = append(tokenIDs, id)
		blobs = append(blobs, blob)
	}

	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpBatchMint,
		Target: c.address,
		Method: methodBatchMint,
		Args:   []any{recipients, tokenIDs, blobs},
	})
	return outcome, mapLicenseError(err, "")
}

// Transfer moves a license token between holders.
func (c *Client) Transfer(ctx context.Context, from, to common.Address, tokenID string) (*executor.TransactionOutcome, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpTransfer,
		Target: c.address,
		Method: methodTransfer,
		Args:   []any{from, to, id},
	})
	return outcome, mapLicenseError(err, tokenID)
}

// Revoke permanently invalidates a license token.
func (c *Client) Revoke(ctx context.Context, tokenID string) (*executor.TransactionOutcome, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpRevoke,
		Target: c.address,
		Method: methodRevoke,
		Args:   []any{id},
	})
	return outcome, mapLicenseError(err, tokenID)
}

// GrantRole grants an AccessControl role to an account.
func (c *Client) GrantRole(ctx context.Context, role model.Role, account common.Address) (*executor.TransactionOutcome, error) {
	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpGrantRole,
		Target: c.address,
		Method: methodGrantRole,
		Args:   []any{[32]byte(role), account},
	})
	return outcome, mapLicenseError(err, "")
}

// RevokeRole removes an AccessControl role from an account.
func (c *Client) RevokeRole(ctx context.Context, role model.Role, account common.Address) (*executor.TransactionOutcome, error) {
	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpRevokeRole,
		Target: c.address,
		Method: methodRevokeRole,
		Args:   []any{[32]byte(role), account},
	})
	return outcome, mapLicenseError(err, "")
}

// Pause halts all mint and transfer activity on the contract.
func (c *Client) Pause(ctx context.Context) (*executor.TransactionOutcome, error) {
	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpPause,
		Target: c.address,
		Method: methodPause,
	})
	return outcome, mapLicenseError(err, "")
}

// Unpause resumes contract activity.
func (c *Client) Unpause(ctx context.Context) (*executor.TransactionOutcome, error) {
	outcome, err := c.exec.Execute(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpUnpause,
		Target: c.address,
		Method: methodUnpause,
	})
	return outcome, mapLicenseError(err, "")
}

// EstimateMintGas dry-runs a mint and reports the gas computation without
// broadcasting anything.
func (c *Client) EstimateMintGas(ctx context.Context, to common.Address, tokenID string, md *model.LicenseMetadata) (*executor.GasEstimate, error) {
	id, err := model.ParseTokenID(tokenID)
	if err != nil {
		return nil, err
	}
	blob, err := c.metadataArgument(ctx, md)
	if err != nil {
		return nil, err
	}
	estimate, err := c.exec.Estimate(ctx, &executor.OperationDescriptor{
		Kind:   executor.OpEstimateGas,
		Target: c.address,
		Method: methodMint,
		Args:   []any{to, id, blob},
	})
	return estimate, mapLicenseError(err, tokenID)
}

// metadataArgument validates md and produces the string embedded on-chain:
// the canonical JSON document in inline mode, or an ipfs:// URI in off-chain
// mode.
func (c *Client) metadataArgument(ctx context.Context, md *model.LicenseMetadata) (string, error) {
	if md == nil {
		return "", errs.New(errs.InvalidMetadata, "license metadata is required")
	}
	if err := md.Validate(); err != nil {
		return "", err
	}
	if c.store == nil {
		return md.Encode()
	}
	uri, err := c.store.UploadJSON(ctx, md)
	if err != nil {
		return "", err
	}
	zap.L().Debug("metadata document uploaded", zap.String("uri", uri))
	return uri, nil
}
