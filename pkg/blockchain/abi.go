package blockchain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// licenseContractABI is the interface of the externally-deployed license
// contract. The SDK holds only this boundary description; the bytecode is a
// caller-supplied artifact.
const licenseContractABI = `[
	{"type":"constructor","inputs":[{"name":"name_","type":"string"},{"name":"symbol_","type":"string"}]},
	{"type":"function","name":"mintLicense","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"},{"name":"metadata","type":"string"}],"outputs":[]},
	{"type":"function","name":"batchMintLicenses","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address[]"},{"name":"tokenIds","type":"uint256[]"},{"name":"metadata","type":"string[]"}],"outputs":[]},
	{"type":"function","name":"transferLicense","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"revokeLicense","stateMutability":"nonpayable","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"grantRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"revokeRole","stateMutability":"nonpayable","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[]},
	{"type":"function","name":"hasRole","stateMutability":"view","inputs":[{"name":"role","type":"bytes32"},{"name":"account","type":"address"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"pause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"unpause","stateMutability":"nonpayable","inputs":[],"outputs":[]},
	{"type":"function","name":"paused","stateMutability":"view","inputs":[],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"ownerOf","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"type":"address"}]},
	{"type":"function","name":"isLicenseValid","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"isLicenseRevoked","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"type":"bool"}]},
	{"type":"function","name":"licenseMetadata","stateMutability":"view","inputs":[{"name":"tokenId","type":"uint256"}],"outputs":[{"type":"string"}]},
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"type":"string"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"type":"uint256"}]}
]`

// constructorArguments derives an ABI argument list from the Go values of a
// deployment's constructor args, so that the three contract variants (whose
// constructors differ only in trailing parameters) share one deploy path.
// It returns the argument list together with the values normalized for abi
// packing (uint64 widened to *big.Int).
func constructorArguments(args []any) (abi.Arguments, []any, error) {
	arguments := make(abi.Arguments, 0, len(args))
	values := make([]any, 0, len(args))

	for i, arg := range args {
		var typeName string
		value := arg
		switch v := arg.(type) {
		case string:
			typeName = "string"
		case common.Address:
			typeName = "address"
		case []common.Address:
			typeName = "address[]"
		case *big.Int:
			typeName = "uint256"
		case uint64:
			typeName = "uint256"
			value = new(big.Int).SetUint64(v)
		case [32]byte:
			typeName = "bytes32"
		case bool:
			typeName = "bool"
		default:
			return nil, nil, errs.Newf(errs.ValidationError, "unsupported constructor argument %d of type %T", i, arg)
		}

		abiType, err := abi.NewType(typeName, "", nil)
		if err != nil {
			return nil, nil, errs.Wrap(errs.ValidationError, "build constructor argument type", err)
		}
		arguments = append(arguments, abi.Argument{Type: abiType})
		values = append(values, value)
	}
	return arguments, values, nil
}

// packDeployData appends ABI-encoded constructor arguments to the contract
// bytecode, yielding the data payload of a contract-creation transaction.
func packDeployData(bytecode []byte, args []any) ([]byte, error) {
	if len(args) == 0 {
		return bytecode, nil
	}
	arguments, values, err := constructorArguments(args)
	if err != nil {
		return nil, err
	}
	packed, err := arguments.Pack(values...)
	if err != nil {
		return nil, errs.Wrap(errs.ValidationError, "pack constructor arguments", err)
	}
	return append(append([]byte{}, bytecode...), packed...), nil
}

// packCallData ABI-encodes a method call against the license contract
// interface.
func (evm *EVMClient) packCallData(method string, args ...any) ([]byte, error) {
	data, err := evm.abi.Pack(method, args...)
	if err != nil {
		return nil, errs.Wrap(errs.ValidationError, "pack call arguments", err)
	}
	return data, nil
}
