// Package config defines the runtime configuration for the SDK: target
// network selection, RPC endpoint, signing key, contract address, gas
// defaults, retry and timeout knobs, and metadata storage mode. It also
// provides validation, defaulting and YAML file loading helpers.
package config

import (
	"os"
	"time"

	"github.com/licensekit/license-sdk-go/pkg/errs"
	"gopkg.in/yaml.v3"
)

// Metadata storage modes. Inline embeds the canonical metadata JSON directly
// in the contract's metadata field; IPFS uploads the document and embeds an
// ipfs:// URI instead.
const (
	MetadataInline = "inline"
	MetadataIPFS   = "ipfs"
)

// Config holds all settings required to construct the SDK. Use Validate to
// fill implicit defaults and to check required fields.
type Config struct {
	// Network selects the target chain by identifier (e.g. "mainnet",
	// "sepolia", "polygon", or "custom").
	Network string `json:"network" yaml:"network"`
	// RPCEndpoint overrides the network's default RPC endpoint. Required
	// when Network is "custom".
	RPCEndpoint string `json:"rpc_endpoint" yaml:"rpc_endpoint"`
	// ChainID is required when Network is "custom"; ignored otherwise.
	ChainID int64 `json:"chain_id" yaml:"chain_id"`
	// PrivateKey is the hex-encoded ECDSA private key used for signed
	// operations (optional for read-only use).
	PrivateKey string `json:"private_key" yaml:"private_key"`
	// ContractAddress is the deployed license contract. Optional when the
	// SDK is used to deploy a new contract first.
	ContractAddress string `json:"contract_address" yaml:"contract_address"`
	// Confirmations is the block depth required before a transaction is
	// reported as Confirmed. Minimum and default is 1.
	Confirmations uint64 `json:"confirmations" yaml:"confirmations"`
	// GasLimit, when non-zero, is used for all transactions instead of
	// node-side estimation.
	GasLimit uint64 `json:"gas_limit" yaml:"gas_limit"`
	// GasPrice, when non-empty, is a base-unit decimal string used instead
	// of the node's fee suggestion.
	GasPrice string `json:"gas_price" yaml:"gas_price"`
	// MetadataStorage selects where license metadata documents live:
	// MetadataInline (default) or MetadataIPFS.
	MetadataStorage string `json:"metadata_storage" yaml:"metadata_storage"`
	// IpfsURL is the HTTP API endpoint of the IPFS node used when
	// MetadataStorage is "ipfs".
	IpfsURL string `json:"ipfs_url" yaml:"ipfs_url"`
	// GatewayURL is an HTTP gateway used as a read fallback for ipfs:// URIs.
	GatewayURL string `json:"gateway_url" yaml:"gateway_url"`
	// Debug enables verbose logging.
	Debug bool `json:"debug" yaml:"debug"`
	// Retry bounds resubmission of transient broadcast failures.
	Retry Retry `json:"retry" yaml:"retry"`
	// Timeouts configures per-operation deadlines. See Timeouts.WithDefaults.
	Timeouts Timeouts `json:"timeouts" yaml:"timeouts"`
}

// Retry bounds the retry loop applied to transient failures.
type Retry struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay"`
}

// WithDefaults returns a copy of r with zero values replaced by defaults
// (3 attempts, 500ms).
func (r Retry) WithDefaults() Retry {
	rr := r
	if rr.MaxAttempts == 0 {
		rr.MaxAttempts = 3
	}
	if rr.BaseDelay == 0 {
		rr.BaseDelay = 500 * time.Millisecond
	}
	return rr
}

// Timeouts controls SDK operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	Dial        time.Duration `json:"dial" yaml:"dial"`                 // RPC dial/connect
	ChainRead   time.Duration `json:"chain_read" yaml:"chain_read"`     // eth_call, queries
	ChainSubmit time.Duration `json:"chain_submit" yaml:"chain_submit"` // send tx
	ReceiptWait time.Duration `json:"receipt_wait" yaml:"receipt_wait"` // wait for receipt
	Overall     time.Duration `json:"overall" yaml:"overall"`           // whole submit-and-confirm sequence
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Dial:        5s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	Overall:     180s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Dial == 0 {
		tt.Dial = 5 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.Overall == 0 {
		tt.Overall = 180 * time.Second
	}
	return tt
}

// Validate normalizes the configuration by applying implicit defaults
// (network "sepolia", inline metadata, minimum confirmation depth of 1,
// retry and timeout defaults) and verifies required fields. It resolves the
// network identifier and returns the resulting profile.
func (c *Config) Validate() (NetworkProfile, error) {
	if c.Network == "" {
		c.Network = "sepolia"
	}

	if c.MetadataStorage == "" {
		c.MetadataStorage = MetadataInline
	}
	if c.MetadataStorage != MetadataInline && c.MetadataStorage != MetadataIPFS {
		return NetworkProfile{}, errs.Newf(errs.InvalidConfig, "unknown metadata storage mode %q", c.MetadataStorage)
	}
	if c.MetadataStorage == MetadataIPFS && c.IpfsURL == "" {
		return NetworkProfile{}, errs.New(errs.InvalidConfig, "ipfs metadata storage requires ipfs_url")
	}

	if c.Confirmations == 0 {
		c.Confirmations = 1
	}

	c.Retry = c.Retry.WithDefaults()
	c.Timeouts = c.Timeouts.WithDefaults()

	profile, err := ResolveNetwork(c.Network, c.RPCEndpoint, c.ChainID)
	if err != nil {
		return NetworkProfile{}, err
	}
	return profile, nil
}

// Load reads a YAML configuration file. The result is not validated; call
// Validate before use.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, "read config file", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, "parse config file", err)
	}
	return &cfg, nil
}
