package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/errs"
	"github.com/licensekit/license-sdk-go/pkg/executor"
)

// EVMClient implements executor.Backend. Nonce sequencing and signing are
// handled here (through bind), so each submitted transaction carries a
// unique, correctly-ordered nonce even under concurrent calls.
var _ executor.Backend = (*EVMClient)(nil)

// Submit signs and broadcasts one contract call and returns its hash. It
// does not wait for the transaction to be mined.
func (evm *EVMClient) Submit(ctx context.Context, target common.Address, method string, gas executor.GasParams, value *big.Int, args ...any) (common.Hash, error) {
	opts, err := evm.transactOpts(ctx, gas.Limit, gas.Price, value)
	if err != nil {
		return common.Hash{}, err
	}

	contract := bind.NewBoundContract(target, evm.abi, evm.Client, evm.Client, evm.Client)
	tx, err := contract.Transact(opts, method, args...)
	if err != nil {
		zap.L().Error("transaction submit failed",
			zap.String("method", method),
			zap.String("target", target.Hex()),
			zap.Error(err))
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// DeployContract signs and broadcasts a contract-creation transaction. The
// constructor argument list is derived from the Go values, so deployment
// variants with different constructors share this path.
func (evm *EVMClient) DeployContract(ctx context.Context, bytecode []byte, gas executor.GasParams, args ...any) (common.Hash, error) {
	opts, err := evm.transactOpts(ctx, gas.Limit, gas.Price, nil)
	if err != nil {
		return common.Hash{}, err
	}

	arguments, values, err := constructorArguments(args)
	if err != nil {
		return common.Hash{}, err
	}
	ctorABI := abi.ABI{
		Constructor: abi.NewMethod("", "", abi.Constructor, "", false, false, arguments, nil),
	}

	addr, tx, _, err := bind.DeployContract(opts, ctorABI, bytecode, evm.Client, values...)
	if err != nil {
		zap.L().Error("contract deployment failed", zap.Error(err))
		return common.Hash{}, err
	}
	zap.L().Debug("deployment submitted",
		zap.String("hash", tx.Hash().Hex()),
		zap.String("address", addr.Hex()))
	return tx.Hash(), nil
}

// StaticCall performs a read-only contract call, unpacking results into out.
func (evm *EVMClient) StaticCall(ctx context.Context, target common.Address, method string, out *[]any, args ...any) error {
	contract := bind.NewBoundContract(target, evm.abi, evm.Client, evm.Client, evm.Client)
	return contract.Call(&bind.CallOpts{Context: ctx, From: evm.from}, out, method, args...)
}

// EstimateGas performs a node-side dry run. For deployments (non-empty
// bytecode) the call message has no recipient.
func (evm *EVMClient) EstimateGas(ctx context.Context, target common.Address, method string, bytecode []byte, value *big.Int, args ...any) (uint64, error) {
	msg := ethereum.CallMsg{From: evm.from, Value: value}

	if len(bytecode) > 0 {
		data, err := packDeployData(bytecode, args)
		if err != nil {
			return 0, err
		}
		msg.Data = data
	} else {
		data, err := evm.packCallData(method, args...)
		if err != nil {
			return 0, err
		}
		msg.To = &target
		msg.Data = data
	}

	return evm.Client.EstimateGas(ctx, msg)
}

// FeeData queries the node's current fee suggestions. On fee-market (EIP-1559)
// chains MaxFeePerGas is derived as 2*baseFee + tip, the headroom ethclient
// itself applies; on legacy chains both fee-market fields are nil.
func (evm *EVMClient) FeeData(ctx context.Context) (*executor.FeeData, error) {
	gasPrice, err := evm.Client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	fees := &executor.FeeData{GasPrice: gasPrice}

	head, err := evm.Client.HeaderByNumber(ctx, nil)
	if err != nil {
		zap.L().Debug("failed to read head for fee data", zap.Error(err))
		return fees, nil
	}
	if head.BaseFee == nil {
		return fees, nil
	}

	tip, err := evm.Client.SuggestGasTipCap(ctx)
	if err != nil {
		zap.L().Debug("node reported no tip suggestion", zap.Error(err))
		return fees, nil
	}
	fees.MaxPriorityFeePerGas = tip
	fees.MaxFeePerGas = new(big.Int).Add(
		new(big.Int).Mul(head.BaseFee, big.NewInt(2)),
		tip,
	)
	return fees, nil
}

// TransactionReceipt returns the receipt for hash; go-ethereum reports
// ethereum.NotFound while the transaction is unmined.
func (evm *EVMClient) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	return evm.Client.TransactionReceipt(ctx, hash)
}

// BlockNumber returns the current head block number.
func (evm *EVMClient) BlockNumber(ctx context.Context) (uint64, error) {
	return evm.Client.BlockNumber(ctx)
}

// ContractDeployed reports whether code exists at the given address. It is
// used to distinguish a wrong address from a missing deployment.
func (evm *EVMClient) ContractDeployed(ctx context.Context, address common.Address) (bool, error) {
	code, err := evm.Client.CodeAt(ctx, address, nil)
	if err != nil {
		return false, errs.Normalize(err)
	}
	return len(code) > 0, nil
}
