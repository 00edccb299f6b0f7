// Package executor turns logical license operations into correctly
// configured on-chain transactions. It resolves gas parameters, submits
// through the signing backend, waits for the configured confirmation depth,
// retries transient broadcast failures with exponential backoff, enforces an
// overall deadline, and normalizes every terminal failure into the closed
// error taxonomy.
package executor

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/config"
	"github.com/licensekit/license-sdk-go/pkg/errs"
	"github.com/licensekit/license-sdk-go/pkg/retry"
)

// receiptPollInterval is the initial backoff for receipt polling; it doubles
// up to receiptPollMax while the transaction is unmined.
const (
	receiptPollInterval = time.Second
	receiptPollMax      = 15 * time.Second
	confirmPollInterval = 2 * time.Second
)

// Options configures an Executor. Zero values fall back to the config
// package defaults.
type Options struct {
	// Confirmations is the block depth required before reporting Confirmed.
	Confirmations uint64
	// GasLimit, when non-zero, skips node-side estimation.
	GasLimit uint64
	// GasPrice, when non-nil, skips the node's fee suggestion.
	GasPrice *big.Int
	// Retry bounds resubmission of transient broadcast failures.
	Retry retry.Policy
	// Timeouts are the per-phase deadlines.
	Timeouts config.Timeouts
}

// Executor is the transaction orchestrator. It is safe for concurrent use:
// all fields are read-only after construction and each call is independent.
type Executor struct {
	backend       Backend
	confirmations uint64
	gasLimit      uint64
	gasPrice      *big.Int
	retry         retry.Policy
	timeouts      config.Timeouts
}

// New constructs an Executor over the given backend.
func New(backend Backend, opts Options) *Executor {
	if opts.Confirmations == 0 {
		opts.Confirmations = 1
	}
	return &Executor{
		backend:       backend,
		confirmations: opts.Confirmations,
		gasLimit:      opts.GasLimit,
		gasPrice:      opts.GasPrice,
		retry:         opts.Retry.WithDefaults(),
		timeouts:      opts.Timeouts.WithDefaults(),
	}
}

// Execute submits the described operation and blocks until the configured
// confirmation depth has been observed, returning a Confirmed outcome or a
// normalized failure.
//
// The submission step is retried on transient failures; confirmation waiting
// is not. A broadcast transaction that outlives the deadline must be
// re-queried by hash (idempotent), never resubmitted, so a timeout during
// confirmation surfaces as TimeoutError with the hash already logged.
func (e *Executor) Execute(ctx context.Context, desc *OperationDescriptor) (*TransactionOutcome, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}

	outcome, err := retry.WithTimeout(ctx, e.timeouts.Overall, func(ctx context.Context) (*TransactionOutcome, error) {
		gas, err := e.resolveGas(ctx, desc)
		if err != nil {
			return nil, err
		}

		hash, err := retry.DoValue(ctx, e.retry, func(ctx context.Context) (common.Hash, error) {
			h, submitErr := e.submit(ctx, desc, gas)
			if submitErr != nil {
				return common.Hash{}, errs.Normalize(submitErr)
			}
			return h, nil
		})
		if err != nil {
			return nil, err
		}

		zap.L().Debug("transaction submitted",
			zap.String("kind", string(desc.Kind)),
			zap.String("hash", hash.Hex()))

		receipt, err := e.awaitConfirmed(ctx, hash)
		if err != nil {
			return nil, err
		}

		return &TransactionOutcome{
			Hash:            hash.Hex(),
			BlockNumber:     receipt.BlockNumber.Uint64(),
			GasUsed:         new(big.Int).SetUint64(receipt.GasUsed).String(),
			Status:          StatusConfirmed,
			ContractAddress: receipt.ContractAddress,
		}, nil
	})
	if err != nil {
		norm := errs.Normalize(err)
		zap.L().Error("operation failed",
			zap.String("kind", string(desc.Kind)),
			zap.String("errorKind", string(norm.Kind)),
			zap.String("errorGroup", norm.Kind.Group()),
			zap.Error(err))
		return nil, norm
	}
	return outcome, nil
}

// Estimate performs a dry-run gas computation for the described operation
// against current network fee data. It never submits a transaction.
func (e *Executor) Estimate(ctx context.Context, desc *OperationDescriptor) (*GasEstimate, error) {
	if err := desc.validate(); err != nil {
		return nil, err
	}

	cctx, cancel := context.WithTimeout(ctx, e.timeouts.ChainRead)
	defer cancel()

	limit, err := e.backend.EstimateGas(cctx, desc.Target, desc.Method, desc.Bytecode, desc.Value, desc.Args...)
	if err != nil {
		norm := errs.Normalize(err)
		if norm.Kind == errs.UnknownError {
			return nil, errs.Wrap(errs.GasEstimationFailed, "gas estimation failed", err)
		}
		return nil, norm
	}

	fees, err := e.backend.FeeData(cctx)
	if err != nil {
		return nil, errs.Normalize(err)
	}

	price := fees.GasPrice
	if e.gasPrice != nil {
		price = e.gasPrice
	}
	if price == nil && fees.MaxFeePerGas != nil {
		price = fees.MaxFeePerGas
	}
	if price == nil {
		return nil, errs.New(errs.GasEstimationFailed, "node reported no fee data")
	}

	est := &GasEstimate{
		GasLimit:  new(big.Int).SetUint64(limit).String(),
		GasPrice:  price.String(),
		TotalCost: new(big.Int).Mul(new(big.Int).SetUint64(limit), price).String(),
	}
	if fees.MaxFeePerGas != nil {
		est.MaxFeePerGas = fees.MaxFeePerGas.String()
	}
	if fees.MaxPriorityFeePerGas != nil {
		est.MaxPriorityFeePerGas = fees.MaxPriorityFeePerGas.String()
	}
	return est, nil
}

// resolveGas picks gas parameters in priority order: per-call override,
// configured default, fresh node-side estimate.
func (e *Executor) resolveGas(ctx context.Context, desc *OperationDescriptor) (GasParams, error) {
	if desc.GasOverride != nil {
		return *desc.GasOverride, nil
	}

	gas := GasParams{Limit: e.gasLimit, Price: e.gasPrice}
	if gas.Limit != 0 {
		return gas, nil
	}

	cctx, cancel := context.WithTimeout(ctx, e.timeouts.ChainRead)
	defer cancel()

	limit, err := e.backend.EstimateGas(cctx, desc.Target, desc.Method, desc.Bytecode, desc.Value, desc.Args...)
	if err != nil {
		norm := errs.Normalize(err)
		if norm.Kind == errs.UnknownError {
			return GasParams{}, errs.Wrap(errs.GasEstimationFailed, "gas estimation failed", err)
		}
		return GasParams{}, norm
	}
	gas.Limit = limit
	return gas, nil
}

// submit broadcasts one attempt under the per-submission deadline.
func (e *Executor) submit(ctx context.Context, desc *OperationDescriptor, gas GasParams) (common.Hash, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeouts.ChainSubmit)
	defer cancel()

	if desc.Kind == OpDeploy {
		return e.backend.DeployContract(cctx, desc.Bytecode, gas, desc.Args...)
	}
	return e.backend.Submit(cctx, desc.Target, desc.Method, gas, desc.Value, desc.Args...)
}

// awaitConfirmed polls for the transaction receipt with exponential backoff
// and then waits until the configured number of confirmations has been
// observed on top of its block. A receipt with failed status yields
// TransactionReverted. This phase is never retried: the transaction is
// already broadcast and resubmission would not be idempotent.
func (e *Executor) awaitConfirmed(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeouts.ReceiptWait)
	defer cancel()

	receipt, err := e.waitForReceipt(cctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, errs.Newf(errs.TransactionReverted, "transaction %s reverted in block %d", hash.Hex(), receipt.BlockNumber.Uint64())
	}

	target := receipt.BlockNumber.Uint64() + e.confirmations - 1
	for {
		head, err := e.backend.BlockNumber(ctx)
		if err != nil {
			return nil, errs.Normalize(err)
		}
		if head >= target {
			return receipt, nil
		}
		zap.L().Debug("waiting for confirmations",
			zap.String("hash", hash.Hex()),
			zap.Uint64("head", head),
			zap.Uint64("target", target))
		select {
		case <-time.After(confirmPollInterval):
		case <-ctx.Done():
			return nil, errs.Wrap(errs.TimeoutError, "confirmation wait interrupted", ctx.Err())
		}
	}
}

// waitForReceipt polls TransactionReceipt until the transaction is mined,
// backing off exponentially while the node reports it as not found.
func (e *Executor) waitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	backoff := receiptPollInterval
	for {
		receipt, err := e.backend.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, errs.Wrap(errs.TimeoutError, "receipt wait interrupted", ctx.Err())
			}
			if backoff < receiptPollMax {
				backoff *= 2
			}
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, errs.Wrap(errs.TimeoutError, "receipt wait interrupted", err)
		default:
			return nil, errs.Normalize(err)
		}
	}
}
