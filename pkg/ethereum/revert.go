package ethereum

import (
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const executionReverted = "execution reverted"

// revertReason extracts the Error(string) payload of a reverted call or gas
// estimation. ok is false when err is not a revert.
func revertReason(err error) (reason string, ok bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if hexData, isStr := dataErr.ErrorData().(string); isStr {
			if data, decErr := hexutil.Decode(hexData); decErr == nil {
				if unpacked, unpackErr := abi.UnpackRevert(data); unpackErr == nil {
					return unpacked, true
				}
			}
		}
	}

	msg := err.Error()
	idx := strings.Index(msg, executionReverted)
	if idx < 0 {
		return "", false
	}
	reason = strings.TrimPrefix(msg[idx+len(executionReverted):], ":")
	return strings.TrimSpace(reason), true
}
