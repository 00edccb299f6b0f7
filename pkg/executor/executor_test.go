package executor

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/licensekit/license-sdk-go/pkg/config"
	"github.com/licensekit/license-sdk-go/pkg/errs"
	"github.com/licensekit/license-sdk-go/pkg/retry"
)

var (
	contractAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	recipient    = common.HexToAddress("0x00000000000000000000000000000000000ABCD1")
	testHash     = common.HexToHash("0x11deadbeef0000000000000000000000000000000000000000000000000000ff")
)

// stubBackend is an in-memory Backend with programmable behavior per call.
type stubBackend struct {
	mu sync.Mutex

	submitErr    error
	submitErrs   []error // consumed one per Submit call before submitErr
	submitCalls  int
	estimateGas  uint64
	estimateErr  error
	feeData      *FeeData
	feeErr       error
	receipt      *types.Receipt
	receiptErr   error
	pendingPolls int // number of NotFound responses before the receipt appears
	head         uint64
	headErr      error
}

func newStubBackend() *stubBackend {
	return &stubBackend{
		estimateGas: 72000,
		feeData:     &FeeData{GasPrice: big.NewInt(2_000_000_000)},
		receipt: &types.Receipt{
			Status:      types.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(100),
			GasUsed:     51234,
		},
		head: 200,
	}
}

func (s *stubBackend) Submit(ctx context.Context, target common.Address, method string, gas GasParams, value *big.Int, args ...any) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitCalls++
	if len(s.submitErrs) > 0 {
		err := s.submitErrs[0]
		s.submitErrs = s.submitErrs[1:]
		if err != nil {
			return common.Hash{}, err
		}
		return testHash, nil
	}
	if s.submitErr != nil {
		return common.Hash{}, s.submitErr
	}
	return testHash, nil
}

func (s *stubBackend) DeployContract(ctx context.Context, bytecode []byte, gas GasParams, args ...any) (common.Hash, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitCalls++
	if s.submitErr != nil {
		return common.Hash{}, s.submitErr
	}
	return testHash, nil
}

func (s *stubBackend) StaticCall(ctx context.Context, target common.Address, method string, out *[]any, args ...any) error {
	return nil
}

func (s *stubBackend) EstimateGas(ctx context.Context, target common.Address, method string, bytecode []byte, value *big.Int, args ...any) (uint64, error) {
	if s.estimateErr != nil {
		return 0, s.estimateErr
	}
	return s.estimateGas, nil
}

func (s *stubBackend) FeeData(ctx context.Context) (*FeeData, error) {
	if s.feeErr != nil {
		return nil, s.feeErr
	}
	return s.feeData, nil
}

func (s *stubBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingPolls > 0 {
		s.pendingPolls--
		return nil, ethereum.NotFound
	}
	if s.receiptErr != nil {
		return nil, s.receiptErr
	}
	return s.receipt, nil
}

func (s *stubBackend) BlockNumber(ctx context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.headErr != nil {
		return 0, s.headErr
	}
	return s.head, nil
}

func fastOptions() Options {
	return Options{
		Confirmations: 1,
		Retry:         retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		Timeouts: config.Timeouts{
			ChainRead:   time.Second,
			ChainSubmit: time.Second,
			ReceiptWait: 2 * time.Second,
			Overall:     5 * time.Second,
		},
	}
}

func mintDescriptor() *OperationDescriptor {
	return &OperationDescriptor{
		Kind:   OpMint,
		Target: contractAddr,
		Method: "mintLicense",
		Args:   []any{recipient, big.NewInt(1), `{"software":"App","version":"1.0.0","features":["basic"]}`},
	}
}

func TestExecuteMintConfirmed(t *testing.T) {
	backend := newStubBackend()
	exec := New(backend, fastOptions())

	outcome, err := exec.Execute(context.Background(), mintDescriptor())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.Status != StatusConfirmed {
		t.Fatalf("status = %s, want Confirmed", outcome.Status)
	}
	if outcome.BlockNumber != 100 {
		t.Fatalf("block = %d, want 100", outcome.BlockNumber)
	}
	if outcome.Hash != testHash.Hex() {
		t.Fatalf("hash = %s", outcome.Hash)
	}
	if outcome.GasUsed != "51234" {
		t.Fatalf("gasUsed = %q, want \"51234\"", outcome.GasUsed)
	}
}

func TestExecuteInsufficientFunds(t *testing.T) {
	backend := newStubBackend()
	backend.submitErr = &rpcStubError{code: -32000, msg: "insufficient funds for gas * price + value"}
	exec := New(backend, fastOptions())

	_, err := exec.Execute(context.Background(), mintDescriptor())
	if errs.KindOf(err) != errs.InsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", err)
	}
	if backend.submitCalls != 1 {
		t.Fatalf("non-retryable failure resubmitted %d times", backend.submitCalls)
	}
}

func TestExecuteBatchRevertNoPartialOutcome(t *testing.T) {
	backend := newStubBackend()
	backend.receipt = &types.Receipt{
		Status:      types.ReceiptStatusFailed,
		BlockNumber: big.NewInt(101),
		GasUsed:     400000,
	}
	exec := New(backend, fastOptions())

	desc := &OperationDescriptor{
		Kind:   OpBatchMint,
		Target: contractAddr,
		Method: "batchMintLicenses",
		Args: []any{
			[]common.Address{recipient, recipient, recipient},
			[]*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)},
			[]string{"{}", "{}", "{}"},
		},
	}

	outcome, err := exec.Execute(context.Background(), desc)
	if errs.KindOf(err) != errs.TransactionReverted {
		t.Fatalf("expected TransactionReverted, got %v", err)
	}
	if outcome != nil {
		t.Fatalf("partial outcome returned: %+v", outcome)
	}
}

func TestExecuteRetriesTransientBroadcastFailures(t *testing.T) {
	backend := newStubBackend()
	backend.submitErrs = []error{
		&rpcStubError{code: -32603, msg: "internal error"},
		&rpcStubError{code: -32603, msg: "internal error"},
		nil,
	}
	exec := New(backend, fastOptions())

	outcome, err := exec.Execute(context.Background(), mintDescriptor())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if backend.submitCalls != 3 {
		t.Fatalf("expected 3 submit attempts, got %d", backend.submitCalls)
	}
	if outcome.Status != StatusConfirmed {
		t.Fatalf("status = %s", outcome.Status)
	}
}

func TestExecuteWaitsForConfirmationDepth(t *testing.T) {
	backend := newStubBackend()
	backend.head = 100 // receipt at 100, need head >= 102 for 3 confirmations
	opts := fastOptions()
	opts.Confirmations = 3
	exec := New(backend, opts)

	go func() {
		time.Sleep(50 * time.Millisecond)
		backend.mu.Lock()
		backend.head = 102
		backend.mu.Unlock()
	}()

	outcome, err := exec.Execute(context.Background(), mintDescriptor())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.Status != StatusConfirmed {
		t.Fatalf("status = %s", outcome.Status)
	}
}

func TestExecuteReceiptDelay(t *testing.T) {
	backend := newStubBackend()
	backend.pendingPolls = 1
	exec := New(backend, fastOptions())

	outcome, err := exec.Execute(context.Background(), mintDescriptor())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.BlockNumber != 100 {
		t.Fatalf("block = %d", outcome.BlockNumber)
	}
}

func TestExecuteOverallTimeout(t *testing.T) {
	backend := newStubBackend()
	backend.pendingPolls = 1 << 30 // never mined
	opts := fastOptions()
	opts.Timeouts.Overall = 100 * time.Millisecond
	exec := New(backend, opts)

	_, err := exec.Execute(context.Background(), mintDescriptor())
	if errs.KindOf(err) != errs.TimeoutError {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
}

func TestExecuteGasOverrideSkipsEstimation(t *testing.T) {
	backend := newStubBackend()
	backend.estimateErr = &rpcStubError{code: -32000, msg: "gas estimation failed"}
	exec := New(backend, fastOptions())

	desc := mintDescriptor()
	desc.GasOverride = &GasParams{Limit: 100000, Price: big.NewInt(1_000_000_000)}

	if _, err := exec.Execute(context.Background(), desc); err != nil {
		t.Fatalf("override should bypass estimation, got %v", err)
	}
}

func TestExecuteGasEstimationFailure(t *testing.T) {
	backend := newStubBackend()
	backend.estimateErr = &rpcStubError{code: -32000, msg: "gas required exceeds allowance (123)"}
	exec := New(backend, fastOptions())

	_, err := exec.Execute(context.Background(), mintDescriptor())
	if errs.KindOf(err) != errs.GasEstimationFailed {
		t.Fatalf("expected GasEstimationFailed, got %v", err)
	}
}

func TestExecuteRejectsInvalidDescriptors(t *testing.T) {
	exec := New(newStubBackend(), fastOptions())

	tests := []struct {
		name string
		desc *OperationDescriptor
		want errs.Kind
	}{
		{"nil descriptor", nil, errs.ValidationError},
		{"missing target", &OperationDescriptor{Kind: OpMint, Method: "mintLicense"}, errs.InvalidContractAddress},
		{"missing method", &OperationDescriptor{Kind: OpMint, Target: contractAddr}, errs.ValidationError},
		{"deploy without bytecode", &OperationDescriptor{Kind: OpDeploy}, errs.ValidationError},
		{
			"batch length mismatch",
			&OperationDescriptor{
				Kind: OpBatchMint, Target: contractAddr, Method: "batchMintLicenses",
				Args: []any{
					[]common.Address{recipient, recipient},
					[]*big.Int{big.NewInt(1)},
					[]string{"{}", "{}"},
				},
			},
			errs.ValidationError,
		},
		{
			"empty batch",
			&OperationDescriptor{
				Kind: OpBatchMint, Target: contractAddr, Method: "batchMintLicenses",
				Args: []any{[]common.Address{}, []*big.Int{}, []string{}},
			},
			errs.ValidationError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := exec.Execute(context.Background(), tc.desc); errs.KindOf(err) != tc.want {
				t.Fatalf("expected %s, got %v", tc.want, err)
			}
		})
	}
}

func TestExecuteDeployReturnsContractAddress(t *testing.T) {
	backend := newStubBackend()
	backend.receipt.ContractAddress = contractAddr
	exec := New(backend, fastOptions())

	outcome, err := exec.Execute(context.Background(), &OperationDescriptor{
		Kind:     OpDeploy,
		Bytecode: []byte{0x60, 0x80},
		Args:     []any{"Licenses", "LIC"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if outcome.ContractAddress != contractAddr {
		t.Fatalf("contract address = %s", outcome.ContractAddress.Hex())
	}
}

func TestEstimate(t *testing.T) {
	backend := newStubBackend()
	backend.feeData = &FeeData{
		GasPrice:             big.NewInt(2_000_000_000),
		MaxFeePerGas:         big.NewInt(3_000_000_000),
		MaxPriorityFeePerGas: big.NewInt(100_000_000),
	}
	exec := New(backend, fastOptions())

	est, err := exec.Estimate(context.Background(), mintDescriptor())
	if err != nil {
		t.Fatalf("Estimate: %v", err)
	}
	if est.GasLimit != "72000" {
		t.Fatalf("gasLimit = %q", est.GasLimit)
	}
	if est.GasPrice != "2000000000" {
		t.Fatalf("gasPrice = %q", est.GasPrice)
	}
	if est.TotalCost != "144000000000000" {
		t.Fatalf("totalCost = %q", est.TotalCost)
	}
	if est.MaxFeePerGas != "3000000000" || est.MaxPriorityFeePerGas != "100000000" {
		t.Fatalf("fee market fields: %+v", est)
	}
	if backend.submitCalls != 0 {
		t.Fatal("Estimate must never submit a transaction")
	}
}

func TestEstimateNormalizesFailures(t *testing.T) {
	backend := newStubBackend()
	backend.estimateErr = &rpcStubError{code: 3, msg: "execution reverted: not a minter"}
	exec := New(backend, fastOptions())

	_, err := exec.Estimate(context.Background(), mintDescriptor())
	if errs.KindOf(err) != errs.TransactionReverted {
		t.Fatalf("expected TransactionReverted, got %v", err)
	}
}

// rpcStubError mimics go-ethereum's JSON-RPC error type.
type rpcStubError struct {
	code int
	msg  string
}

func (e *rpcStubError) Error() string  { return e.msg }
func (e *rpcStubError) ErrorCode() int { return e.code }
