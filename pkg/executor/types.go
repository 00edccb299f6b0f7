package executor

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// OpKind names the logical operation a descriptor performs.
type OpKind string

const (
	OpDeploy      OpKind = "Deploy"
	OpMint        OpKind = "Mint"
	OpBatchMint   OpKind = "BatchMint"
	OpTransfer    OpKind = "Transfer"
	OpRevoke      OpKind = "Revoke"
	OpGrantRole   OpKind = "GrantRole"
	OpRevokeRole  OpKind = "RevokeRole"
	OpPause       OpKind = "Pause"
	OpUnpause     OpKind = "Unpause"
	OpEstimateGas OpKind = "EstimateGas"
)

// GasParams carries explicit gas settings for one transaction. A zero Limit
// or nil Price means "resolve from configuration or estimation".
type GasParams struct {
	Limit uint64
	Price *big.Int
}

// FeeData mirrors the node's fee suggestion for the next block.
type FeeData struct {
	GasPrice             *big.Int
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
}

// OperationDescriptor describes one logical blockchain call. Descriptors are
// built fresh per call by the contract facade, never mutated, and consumed
// exactly once by the Executor.
type OperationDescriptor struct {
	Kind   OpKind
	Target common.Address
	// Method is the contract function name; empty for Deploy.
	Method string
	Args   []any
	// Bytecode is the compiled contract, set for Deploy only.
	Bytecode []byte
	// GasOverride, when non-nil, wins over configured defaults and
	// estimation.
	GasOverride *GasParams
	// Value is the native currency amount attached to the transaction.
	Value *big.Int
}

// validate rejects descriptors that cannot be submitted. Batch descriptors
// must carry three parallel sequences (recipients, token ids, metadata
// blobs) of equal, non-zero length.
func (d *OperationDescriptor) validate() error {
	if d == nil {
		return errs.New(errs.ValidationError, "operation descriptor is required")
	}

	if d.Kind == OpDeploy {
		if len(d.Bytecode) == 0 {
			return errs.New(errs.ValidationError, "deploy descriptor requires bytecode")
		}
		return nil
	}

	if d.Target == (common.Address{}) {
		return errs.New(errs.InvalidContractAddress, "descriptor target address is required")
	}
	if d.Method == "" {
		return errs.New(errs.ValidationError, "descriptor method is required")
	}

	if d.Kind == OpBatchMint {
		return d.validateBatch()
	}
	return nil
}

func (d *OperationDescriptor) validateBatch() error {
	if len(d.Args) != 3 {
		return errs.New(errs.ValidationError, "batch mint requires recipients, token ids and metadata sequences")
	}
	recipients, ok := d.Args[0].([]common.Address)
	if !ok {
		return errs.New(errs.ValidationError, "batch mint recipients must be addresses")
	}
	tokenIDs, ok := d.Args[1].([]*big.Int)
	if !ok {
		return errs.New(errs.ValidationError, "batch mint token ids must be integers")
	}
	blobs, ok := d.Args[2].([]string)
	if !ok {
		return errs.New(errs.ValidationError, "batch mint metadata must be strings")
	}
	if len(recipients) == 0 {
		return errs.New(errs.ValidationError, "batch mint requires at least one entry")
	}
	if len(tokenIDs) != len(recipients) || len(blobs) != len(recipients) {
		return errs.Newf(errs.ValidationError, "batch mint sequences must have equal length: %d recipients, %d token ids, %d metadata",
			len(recipients), len(tokenIDs), len(blobs))
	}
	return nil
}

// Status is the terminal state of an executed transaction. Pending is an
// input state only: blocking calls never return it.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusFailed    Status = "Failed"
)

// TransactionOutcome reports one mined-and-confirmed transaction. GasUsed is
// a base-unit decimal string; every numeric on-chain quantity crosses the
// SDK boundary as text to avoid precision loss above 2^53.
type TransactionOutcome struct {
	Hash        string
	BlockNumber uint64
	GasUsed     string
	Status      Status
	// ContractAddress is set for Deploy outcomes only.
	ContractAddress common.Address
}

// GasEstimate reports a dry-run gas computation. All numeric fields are
// base-unit decimal strings; optional EIP-1559 fields are empty when the
// node reports no fee-market data.
type GasEstimate struct {
	GasLimit             string
	GasPrice             string
	MaxFeePerGas         string
	MaxPriorityFeePerGas string
	TotalCost            string
}

// Backend is the signing-and-broadcast capability the Executor drives. It is
// implemented by blockchain.EVMClient and stubbed in tests. Nonce sequencing
// and signing are the backend's responsibility; the Executor treats each
// submitted transaction as having a unique, correctly-ordered nonce.
type Backend interface {
	// Submit signs and broadcasts one contract call, returning its hash.
	Submit(ctx context.Context, target common.Address, method string, gas GasParams, value *big.Int, args ...any) (common.Hash, error)
	// DeployContract signs and broadcasts a contract creation transaction.
	DeployContract(ctx context.Context, bytecode []byte, gas GasParams, args ...any) (common.Hash, error)
	// StaticCall performs a read-only contract call, unpacking results into out.
	StaticCall(ctx context.Context, target common.Address, method string, out *[]any, args ...any) error
	// EstimateGas performs a node-side dry run of the described call.
	EstimateGas(ctx context.Context, target common.Address, method string, bytecode []byte, value *big.Int, args ...any) (uint64, error)
	// FeeData queries current network fee suggestions.
	FeeData(ctx context.Context) (*FeeData, error)
	// TransactionReceipt returns the receipt for hash, or ethereum.NotFound
	// while the transaction is unmined.
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	// BlockNumber returns the current head block number.
	BlockNumber(ctx context.Context) (uint64, error)
}
