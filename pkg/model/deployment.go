package model

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// DeployVariant selects the deployment recipe. The variants share one
// execution path and differ only in constructor arguments.
type DeployVariant string

const (
	// DeployStandard deploys the plain license contract.
	DeployStandard DeployVariant = "standard"
	// DeployMultiSig deploys the variant requiring multi-signature approval
	// for privileged operations.
	DeployMultiSig DeployVariant = "multisig"
	// DeployUpgradeable deploys the proxy-backed upgradeable variant.
	DeployUpgradeable DeployVariant = "upgradeable"
)

// DeploymentSpec describes one contract deployment. Bytecode is the compiled
// contract artifact, supplied by the caller; the SDK never embeds or
// verifies contract code.
type DeploymentSpec struct {
	Variant  DeployVariant
	Bytecode []byte
	// Name and Symbol are the token collection identifiers passed to the
	// constructor.
	Name   string
	Symbol string
	// Signers and Threshold apply to the multisig variant only.
	Signers   []common.Address
	Threshold uint64
	// ProxyAdmin applies to the upgradeable variant only.
	ProxyAdmin common.Address
}

// Validate checks the required fields for the selected variant.
func (s *DeploymentSpec) Validate() error {
	if s == nil {
		return errs.New(errs.ValidationError, "deployment spec is required")
	}
	if len(s.Bytecode) == 0 {
		return errs.New(errs.ValidationError, "deployment bytecode is required")
	}
	if s.Name == "" || s.Symbol == "" {
		return errs.New(errs.ValidationError, "deployment name and symbol are required")
	}

	switch s.Variant {
	case DeployStandard:
		return nil
	case DeployMultiSig:
		if len(s.Signers) == 0 {
			return errs.New(errs.ValidationError, "multisig deployment requires signers")
		}
		if s.Threshold == 0 || s.Threshold > uint64(len(s.Signers)) {
			return errs.Newf(errs.ValidationError, "multisig threshold %d out of range for %d signers", s.Threshold, len(s.Signers))
		}
		return nil
	case DeployUpgradeable:
		if s.ProxyAdmin == (common.Address{}) {
			return errs.New(errs.ValidationError, "upgradeable deployment requires a proxy admin")
		}
		return nil
	default:
		return errs.Newf(errs.ValidationError, "unknown deployment variant %q", s.Variant)
	}
}

// ConstructorArgs returns the ABI arguments for the variant's constructor,
// in the order the contract expects them.
func (s *DeploymentSpec) ConstructorArgs() []any {
	switch s.Variant {
	case DeployMultiSig:
		return []any{s.Name, s.Symbol, s.Signers, s.Threshold}
	case DeployUpgradeable:
		return []any{s.Name, s.Symbol, s.ProxyAdmin}
	default:
		return []any{s.Name, s.Symbol}
	}
}
