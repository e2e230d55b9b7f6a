package common

import (
	"errors"

	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/ballot"
)

type Serverer interface {
	GetLedger() *ballot.Ledger
}

// Response for json API.
// errcode: The error code to return to client, see api/common/errcode
// reusltOrData: If the errcode is 0, then data is used as the 'result' of JsonRPC. Otherwise,
// as a extra error message to 'data' of JsonRPC.
func respPacking(code errcode.ErrCode, resultOrData interface{}) map[string]interface{} {
	resp := map[string]interface{}{
		"error":        code,
		"resultOrData": resultOrData,
	}
	return resp
}

func RespPacking(result interface{}, code errcode.ErrCode) map[string]interface{} {
	return respPacking(code, result)
}

func ResponsePack(code errcode.ErrCode) map[string]interface{} {
	resp := map[string]interface{}{
		"Action":  "",
		"Result":  "",
		"Error":   code,
		"Desc":    "",
		"Version": 1,
	}
	return resp
}

var ballotErrCodes = []struct {
	err  error
	code errcode.ErrCode
}{
	{ballot.ErrUnauthorized, errcode.ErrUnauthorized},
	{ballot.ErrAlreadyVoted, errcode.ErrAlreadyVoted},
	{ballot.ErrAlreadyEnfranchised, errcode.ErrAlreadyEnfranchised},
	{ballot.ErrBribeeAlreadyVoted, errcode.ErrBribeeAlreadyVoted},
	{ballot.ErrSelfDelegation, errcode.ErrSelfDelegation},
	{ballot.ErrDelegationLoop, errcode.ErrDelegationLoop},
	{ballot.ErrNoRight, errcode.ErrNoRight},
	{ballot.ErrBribeeIneligible, errcode.ErrBribeeIneligible},
	{ballot.ErrInvalidProposal, errcode.UNKNOWN_PROPOSAL},
	{ballot.ErrZeroBribe, errcode.ErrZeroBribe},
	{ballot.ErrBribeTooHigh, errcode.ErrBribeTooHigh},
	{ballot.ErrNoPendingWithdrawal, errcode.ErrNoPendingWithdrawal},
	{ballot.ErrInsufficientBalance, errcode.ErrInsufficientBalance},
	{ballot.ErrNoTargets, errcode.ErrNoTargets},
	{ballot.ErrEscrowCaller, errcode.ErrEscrowCaller},
	{ballot.ErrOperationNotFound, errcode.UNKNOWN_OPERATION},
}

// ErrCodeOf maps a ledger error to its API error code. Anything unknown is an
// INTERNAL_ERROR.
func ErrCodeOf(err error) errcode.ErrCode {
	if err == nil {
		return errcode.SUCCESS
	}
	for _, e := range ballotErrCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return errcode.INTERNAL_ERROR
}

func respError(err error) map[string]interface{} {
	return respPacking(ErrCodeOf(err), err.Error())
}
