package errs

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// JSON-RPC error codes observed from EVM nodes. Codes in the -32xxx range
// are defined by the JSON-RPC 2.0 spec; 3 is the EVM revert code.
const (
	codeExecutionReverted = 3
	codeInvalidParams     = -32602
	codeInternalError     = -32603
	codeServerError       = -32000
)

// Normalize maps an arbitrary failure from the node, the RPC transport or
// the contract into the closed taxonomy. The mapping is deterministic and
// side-effect free; the original cause is always kept under Unwrap, never
// discarded. An error that already carries a Kind passes through unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var known *Error
	if errors.As(err, &known) {
		return known
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return Wrap(TimeoutError, "operation deadline exceeded", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(TimeoutError, "network operation timed out", err)
		}
		return Wrap(NetworkError, "network unreachable", err)
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if kind, msg, ok := classifyRPCCode(rpcErr.ErrorCode(), rpcErr.Error()); ok {
			return Wrap(kind, msg, err)
		}
	}

	if kind, msg, ok := classifyMessage(err.Error()); ok {
		return Wrap(kind, msg, err)
	}

	return Wrap(UnknownError, "unclassified failure", err)
}

// classifyRPCCode maps JSON-RPC error codes to kinds. Server errors (-32000)
// carry node-specific meanings in the message, so they fall through to the
// message classifier before being treated as generic RPC faults.
func classifyRPCCode(code int, message string) (Kind, string, bool) {
	switch code {
	case codeExecutionReverted:
		return TransactionReverted, "contract call reverted", true
	case codeInvalidParams:
		return ValidationError, "malformed RPC parameters", true
	case codeInternalError:
		return RpcError, "RPC internal fault", true
	case codeServerError:
		if kind, msg, ok := classifyMessage(message); ok {
			return kind, msg, true
		}
		return RpcError, "RPC server fault", true
	default:
		return UnknownError, "", false
	}
}

// classifyMessage matches node error text against known patterns. Geth,
// Erigon and most RPC providers agree on these phrasings, so substring
// matching on the lowercased message is the stable option short of typed
// errors, which the JSON-RPC transport does not provide.
func classifyMessage(message string) (Kind, string, bool) {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "insufficient funds"),
		strings.Contains(m, "insufficient balance"):
		return InsufficientFunds, "insufficient balance for transaction", true
	case strings.Contains(m, "execution reverted"),
		strings.Contains(m, "always failing transaction"),
		strings.Contains(m, "transaction reverted"):
		return TransactionReverted, "contract call reverted", true
	case strings.Contains(m, "gas required exceeds allowance"),
		strings.Contains(m, "intrinsic gas too low"),
		strings.Contains(m, "exceeds block gas limit"),
		strings.Contains(m, "gas estimation failed"):
		return GasEstimationFailed, "gas estimation failed", true
	case strings.Contains(m, "nonce too low"),
		strings.Contains(m, "replacement transaction underpriced"),
		strings.Contains(m, "already known"):
		return TransactionFailed, "transaction rejected by the node", true
	case strings.Contains(m, "invalid argument"),
		strings.Contains(m, "invalid params"):
		return ValidationError, "malformed RPC parameters", true
	case strings.Contains(m, "connection refused"),
		strings.Contains(m, "connection reset"),
		strings.Contains(m, "no such host"),
		strings.Contains(m, "network is unreachable"),
		strings.Contains(m, "broken pipe"):
		return NetworkError, "network unreachable", true
	case strings.Contains(m, "i/o timeout"),
		strings.Contains(m, "request timed out"):
		return TimeoutError, "network operation timed out", true
	default:
		return UnknownError, "", false
	}
}
