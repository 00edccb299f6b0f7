// Package blockchain provides the Ethereum-facing capability the SDK drives:
// an ethclient-backed implementation of the executor's signing-and-broadcast
// backend, ABI packing for the external license contract, and key/address
// and unit-conversion utilities.
package blockchain

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// EVMClient holds a connected ethclient.Client, the parsed license contract
// ABI and, when a private key was supplied, a transactor for signed
// operations. All fields are read-only after Dial, so one client is safely
// shared across concurrent calls.
type EVMClient struct {
	Client  *ethclient.Client
	abi     abi.ABI
	signer  *bind.TransactOpts
	from    common.Address
	chainID *big.Int
}

// Dial connects to an Ethereum endpoint and prepares the license contract
// ABI. privateKeyHex may be empty for read-only use; signed operations then
// fail with Unauthorized.
func Dial(ctx context.Context, endpoint, privateKeyHex string, chainID int64) (*EVMClient, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		zap.L().Error("failed to dial RPC endpoint", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, errs.Normalize(err)
	}

	parsed, err := abi.JSON(strings.NewReader(licenseContractABI))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, "parse license contract ABI", err)
	}

	evm := &EVMClient{
		Client:  client,
		abi:     parsed,
		chainID: big.NewInt(chainID),
	}

	if privateKeyHex != "" {
		address, key, err := ParsePrivateKeyECDSA(privateKeyHex)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidConfig, "parse private key", err)
		}
		signer, err := bind.NewKeyedTransactorWithChainID(key, evm.chainID)
		if err != nil {
			zap.L().Error("failed to create transactor", zap.Error(err))
			return nil, errs.Wrap(errs.InvalidConfig, "create transactor", err)
		}
		evm.signer = signer
		evm.from = address
	}

	return evm, nil
}

// From returns the signer address, or the zero address in read-only mode.
func (evm *EVMClient) From() common.Address {
	return evm.from
}

// ChainID returns the chain the client signs for.
func (evm *EVMClient) ChainID() *big.Int {
	return new(big.Int).Set(evm.chainID)
}

// Close shuts down the underlying RPC connection.
func (evm *EVMClient) Close() {
	evm.Client.Close()
}

// transactOpts returns a per-call copy of the signer options bound to ctx
// and the given gas parameters. A zero gas limit defers to node-side
// estimation inside bind.
func (evm *EVMClient) transactOpts(ctx context.Context, limit uint64, price, value *big.Int) (*bind.TransactOpts, error) {
	if evm.signer == nil {
		return nil, errs.New(errs.Unauthorized, "private key required for signed operations")
	}
	opts := *evm.signer
	opts.Context = ctx
	opts.GasLimit = limit
	opts.GasPrice = price
	opts.Value = value
	return &opts, nil
}
