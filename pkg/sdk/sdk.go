package sdk

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/licensekit/license-sdk-go/pkg/blockchain"
	"github.com/licensekit/license-sdk-go/pkg/config"
	"github.com/licensekit/license-sdk-go/pkg/errs"
	"github.com/licensekit/license-sdk-go/pkg/executor"
	"github.com/licensekit/license-sdk-go/pkg/license"
	"github.com/licensekit/license-sdk-go/pkg/retry"
	"github.com/licensekit/license-sdk-go/pkg/storage"
)

// SDK is the public interface of a constructed SDK instance.
type SDK interface {
	// License returns the contract facade bound to the configured contract.
	License() *license.Client
	// Network returns the resolved network profile.
	Network() config.NetworkProfile
	// Close releases the underlying RPC connection.
	Close()
}

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(zap.InfoLevel),
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// Core is the concrete SDK implementation.
type Core struct {
	cfg     *config.Config
	profile config.NetworkProfile
	evm     *blockchain.EVMClient
	lic     *license.Client
}

var _ SDK = (*Core)(nil)

// NewSDK validates the configuration, resolves the target network, connects
// the EVM client and wires the executor and license facade. It never
// terminates the process; every failure is returned as a kinded error.
func NewSDK(cfg *config.Config) (*Core, error) {
	if cfg == nil {
		return nil, errs.New(errs.InvalidConfig, "configuration is required")
	}

	profile, err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	var gasPrice *big.Int
	if cfg.GasPrice != "" {
		gasPrice = new(big.Int)
		if _, ok := gasPrice.SetString(cfg.GasPrice, 10); !ok {
			return nil, errs.Newf(errs.InvalidConfig, "gas_price %q is not a decimal integer", cfg.GasPrice)
		}
	}

	var contractAddr common.Address
	if cfg.ContractAddress != "" {
		contractAddr, err = blockchain.ParseAddress(cfg.ContractAddress)
		if err != nil {
			return nil, err
		}
	}

	dialCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Dial)
	defer cancel()

	evm, err := blockchain.Dial(dialCtx, profile.RPCEndpoint, cfg.PrivateKey, profile.ChainID)
	if err != nil {
		return nil, err
	}

	if contractAddr != (common.Address{}) {
		if err := checkDeployed(evm, contractAddr, cfg.Timeouts.ChainRead); err != nil {
			evm.Close()
			return nil, err
		}
	}


	var store storage.Storage
	if cfg.MetadataStorage == config.MetadataIPFS {
		store = storage.NewClient(cfg.IpfsURL, cfg.GatewayURL)
	}

	exec := executor.New(evm, executor.Options{
		Confirmations: cfg.Confirmations,
		GasLimit:      cfg.GasLimit,
		GasPrice:      gasPrice,
		Retry:         retry.Policy(cfg.Retry),
		Timeouts:      cfg.Timeouts,
	})

	lic := license.NewClient(exec, evm, license.Options{
		Address:     contractAddr,
		Storage:     store,
		ReadTimeout: cfg.Timeouts.ChainRead,
	})

	if cfg.Debug {
		zap.L().Debug("sdk initialized",
			zap.String("network", profile.Name),
			zap.Int64("chainId", profile.ChainID),
			zap.String("signer", evm.From().Hex()),
			zap.String("contract", contractAddr.Hex()))
	}

	return &Core{
		cfg:     cfg,
		profile: profile,
		evm:     evm,
		lic:     lic,
	}, nil
}

// checkDeployed verifies there is contract code at addr. An unreachable node
// only logs a warning so offline construction still works; a reachable node
// reporting no code is a hard error.
func checkDeployed(evm *blockchain.EVMClient, addr common.Address, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	deployed, err := evm.ContractDeployed(ctx, addr)
	if err != nil {
		zap.L().Warn("could not verify contract deployment", zap.String("address", addr.Hex()), zap.Error(err))
		return nil
	}
	if !deployed {
		return errs.Newf(errs.ContractNotDeployed, "no contract code at %s", addr.Hex())
	}
	return nil
}

// License returns the contract facade.
func (c *Core) License() *license.Client {
	return c.lic
}

// Network returns the resolved network profile.
func (c *Core) Network() config.NetworkProfile {
	return c.profile
}

// EVM exposes the underlying client for custom chain operations.
func (c *Core) EVM() *blockchain.EVMClient {
	return c.evm
}

// Close releases the underlying RPC connection.
func (c *Core) Close() {
	c.evm.Close()
}
