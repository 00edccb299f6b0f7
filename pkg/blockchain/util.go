package blockchain

import (
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// weiPerEther is 10^18 as a decimal, used for unit conversions.
var weiPerEther = decimal.New(1, 18)

// ParsePrivateKeyECDSA parses a hex-encoded ECDSA private key (with or
// without 0x prefix) and returns the corresponding Ethereum address together
// with the private key object.
func ParsePrivateKeyECDSA(privateKey string) (common.Address, *ecdsa.PrivateKey, error) {
	privateKey = strings.TrimPrefix(privateKey, "0x")

	privateKeyECDSA, err := crypto.HexToECDSA(privateKey)
	if err != nil {
		return common.Address{}, nil, err
	}

	publicKey := privateKeyECDSA.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return common.Address{}, nil, errors.New("failed to get public key")
	}

	address := crypto.PubkeyToAddress(*publicKeyECDSA)
	return address, privateKeyECDSA, nil
}

// GetAddressFromPrivateKeyECDSA derives the Ethereum address from the given
// ECDSA private key. It returns nil if the key is nil or its public part
// cannot be asserted to *ecdsa.PublicKey.
func GetAddressFromPrivateKeyECDSA(privateKeyECDSA *ecdsa.PrivateKey) *common.Address {
	if privateKeyECDSA == nil {
		return nil
	}
	publicKey := privateKeyECDSA.Public()
	publicKeyECDSA, ok := publicKey.(*ecdsa.PublicKey)
	if !ok {
		return nil
	}
	addr := crypto.PubkeyToAddress(*publicKeyECDSA)
	return &addr
}

// ParseAddress validates and parses a hex contract or account address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, errs.Newf(errs.InvalidAddress, "invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// WeiToEther converts a wei amount (base units, 18 decimals) into ether as a
// decimal.Decimal with 18 digits of precision.
//
// Supported input types: string, *big.Int, int. Any other type results in
// decimal.Zero.
func WeiToEther(ivalue any) decimal.Decimal {
	value := new(big.Int)
	switch v := ivalue.(type) {
	case string:
		value.SetString(v, 10)
	case *big.Int:
		value = v
	case int:
		value.SetInt64(int64(v))
	default:
		return decimal.Zero
	}
	num, err := decimal.NewFromString(value.String())
	if err != nil {
		return decimal.Zero
	}
	return num.DivRound(weiPerEther, 18)
}

// EtherToWei converts an ether amount into wei as a *big.Int.
//
// Supported input types: string, float64, int64, decimal.Decimal. Any other
// type results in an error.
func EtherToWei(iamount any) (*big.Int, error) {
	var amount decimal.Decimal
	switch v := iamount.(type) {
	case string:
		var err error
		amount, err = decimal.NewFromString(v)
		if err != nil {
			return nil, errs.Wrap(errs.ValidationError, "parse ether amount", err)
		}
	case float64:
		amount = decimal.NewFromFloat(v)
	case int64:
		amount = decimal.NewFromInt(v)
	case decimal.Decimal:
		amount = v
	default:
		return nil, errs.Newf(errs.ValidationError, "unsupported ether amount type %T", iamount)
	}

	wei := new(big.Int)
	wei.SetString(amount.Mul(weiPerEther).Truncate(0).String(), 10)
	return wei, nil
}
