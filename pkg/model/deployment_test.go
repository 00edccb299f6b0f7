package model

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/licensekit/license-sdk-go/pkg/errs"
)

var testBytecode = []byte{0x60, 0x80, 0x60, 0x40}

func TestDeploymentSpecValidate(t *testing.T) {
	signer := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	tests := []struct {
		name    string
		spec    *DeploymentSpec
		wantErr bool
	}{
		{
			name: "standard ok",
			spec: &DeploymentSpec{Variant: DeployStandard, Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC"},
		},
		{
			name:    "missing bytecode",
			spec:    &DeploymentSpec{Variant: DeployStandard, Name: "Licenses", Symbol: "LIC"},
			wantErr: true,
		},
		{
			name:    "missing name",
			spec:    &DeploymentSpec{Variant: DeployStandard, Bytecode: testBytecode, Symbol: "LIC"},
			wantErr: true,
		},
		{
			name: "multisig ok",
			spec: &DeploymentSpec{
				Variant: DeployMultiSig, Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC",
				Signers: []common.Address{signer}, Threshold: 1,
			},
		},
		{
			name: "multisig no signers",
			spec: &DeploymentSpec{
				Variant: DeployMultiSig, Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC",
				Threshold: 1,
			},
			wantErr: true,
		},
		{
			name: "multisig threshold too high",
			spec: &DeploymentSpec{
				Variant: DeployMultiSig, Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC",
				Signers: []common.Address{signer}, Threshold: 2,
			},
			wantErr: true,
		},
		{
			name: "upgradeable ok",
			spec: &DeploymentSpec{
				Variant: DeployUpgradeable, Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC",
				ProxyAdmin: signer,
			},
		},
		{
			name: "upgradeable zero admin",
			spec: &DeploymentSpec{
				Variant: DeployUpgradeable, Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC",
			},
			wantErr: true,
		},
		{
			name:    "unknown variant",
			spec:    &DeploymentSpec{Variant: "quantum", Bytecode: testBytecode, Name: "Licenses", Symbol: "LIC"},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.wantErr {
				if errs.KindOf(err) != errs.ValidationError {
					t.Fatalf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConstructorArgsPerVariant(t *testing.T) {
	signer := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	std := &DeploymentSpec{Variant: DeployStandard, Name: "L", Symbol: "S"}
	if got := std.ConstructorArgs(); len(got) != 2 {
		t.Fatalf("standard args = %d, want 2", len(got))
	}

	ms := &DeploymentSpec{Variant: DeployMultiSig, Name: "L", Symbol: "S", Signers: []common.Address{signer}, Threshold: 1}
	if got := ms.ConstructorArgs(); len(got) != 4 {
		t.Fatalf("multisig args = %d, want 4", len(got))
	}

	up := &DeploymentSpec{Variant: DeployUpgradeable, Name: "L", Symbol: "S", ProxyAdmin: signer}
	if got := up.ConstructorArgs(); len(got) != 3 {
		t.Fatalf("upgradeable args = %d, want 3", len(got))
	}
}

func TestRoleHashesDistinct(t *testing.T) {
	roles := map[Role]string{
		RoleAdmin:   "admin",
		RoleMinter:  "minter",
		RoleRevoker: "revoker",
		RolePauser:  "pauser",
	}
	if len(roles) != 4 {
		t.Fatal("role hashes collide")
	}
	if RoleAdmin != (Role{}) {
		t.Fatal("admin role must be the zero bytes32")
	}
}
