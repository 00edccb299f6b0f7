package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// Role identifies a named permission grant recognized by the license
// contract. Values are the keccak256 hashes of the role names, matching the
// OpenZeppelin AccessControl convention the contract uses.
type Role [32]byte

var (
	// RoleAdmin is the AccessControl default admin role (all-zero bytes32).
	RoleAdmin = Role{}
	// RoleMinter may mint new license tokens.
	RoleMinter = roleHash("MINTER_ROLE")
	// RoleRevoker may revoke issued licenses.
	RoleRevoker = roleHash("REVOKER_ROLE")
	// RolePauser may pause and unpause the contract.
	RolePauser = roleHash("PAUSER_ROLE")
)

func roleHash(name string) Role {
	return Role(crypto.Keccak256Hash([]byte(name)))
}

// LicenseInfo aggregates the read-side view of one license token. The
// contract does not record a creation timestamp, so none is reported here;
// fabricating one from wall-clock time would vary per query.
type LicenseInfo struct {
	TokenID  string
	Owner    common.Address
	Metadata *LicenseMetadata
	Valid    bool
}

// ContractInfo describes the deployed license contract.
type ContractInfo struct {
	Address common.Address
	Name    string
	Symbol  string
	// TotalSupply is a base-unit decimal string.
	TotalSupply string
	Paused      bool
}

// MintRequest is one entry of a batch mint: recipient, token id (decimal
// string) and metadata.
type MintRequest struct {
	To       common.Address
	TokenID  string
	Metadata *LicenseMetadata
}

// ParseTokenID parses a decimal string token id into a *big.Int. Token ids
// cross the SDK boundary as text to stay exact above 2^53.
func ParseTokenID(s string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(s, 10)
	if !ok || id.Sign() < 0 {
		return nil, errs.Newf(errs.InvalidTokenId, "invalid token id %q", s)
	}
	return id, nil
}
