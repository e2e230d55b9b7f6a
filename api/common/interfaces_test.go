package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/ballot"
	"github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/db"
	"github.com/nknorg/ballot/event"
	"github.com/nknorg/ballot/store"
	"github.com/stretchr/testify/require"
)

var (
	chairperson = common.BytesToUint160([]byte{0xc0})
	voterA      = common.BytesToUint160([]byte{0x01})
	voterB      = common.BytesToUint160([]byte{0x02})
)

type testServer struct {
	ledger *ballot.Ledger
}

func (s *testServer) GetLedger() *ballot.Ledger {
	return s.ledger
}

func newTestServer(t *testing.T) *testServer {
	st, err := db.NewMemLevelDBStore()
	require.Nil(t, err)

	allocations := map[common.Uint160]common.Fixed64{
		voterB: common.Fixed64(common.StorageFactor),
	}
	l, err := ballot.Deploy(store.NewLedgerStore(st), chairperson, []string{"first", "second", "third"}, allocations)
	require.Nil(t, err)
	l.SetEventQueue(event.NewEventQueue())
	t.Cleanup(func() { l.Close() })

	return &testServer{ledger: l}
}

func call(t *testing.T, s Serverer, method string, params map[string]interface{}) (errcode.ErrCode, interface{}) {
	h, ok := InitialAPIHandlers[method]
	require.True(t, ok, method)
	resp := h.Handler(s, params, context.Background())
	return resp["error"].(errcode.ErrCode), resp["resultOrData"]
}

func TestOperationHandlers(t *testing.T) {
	s := newTestServer(t)

	code, _ := call(t, s, "grantright", map[string]interface{}{
		"caller":  chairperson.String(),
		"targets": []interface{}{voterA.String()},
	})
	require.Equal(t, errcode.SUCCESS, code)

	code, _ = call(t, s, "bribe", map[string]interface{}{
		"caller":   voterB.String(),
		"bribee":   voterA.String(),
		"proposal": float64(1),
		"amount":   "0.005",
	})
	require.Equal(t, errcode.SUCCESS, code)

	code, result := call(t, s, "vote", map[string]interface{}{
		"caller":   voterA.String(),
		"proposal": float64(1),
	})
	require.Equal(t, errcode.SUCCESS, code)
	receipt := result.(*ballot.Receipt)
	require.Len(t, receipt.Events, 2)
	require.Equal(t, event.BribeTaken, receipt.Events[0].Type)
	require.Equal(t, event.WithdrawalAvailable, receipt.Events[1].Type)

	code, result = call(t, s, "getpendingwithdrawal", map[string]interface{}{"address": voterA.String()})
	require.Equal(t, errcode.SUCCESS, code)
	require.Equal(t, common.Fixed64(500000), result.(map[string]interface{})["amount"])

	code, result = call(t, s, "withdraw", map[string]interface{}{"caller": voterA.String()})
	require.Equal(t, errcode.SUCCESS, code)
	require.Equal(t, common.Fixed64(500000), result.(*ballot.Receipt).Transferred)

	code, result = call(t, s, "getwinningproposal", nil)
	require.Equal(t, errcode.SUCCESS, code)
	require.Equal(t, uint32(1), result)

	code, result = call(t, s, "getwinnername", nil)
	require.Equal(t, errcode.SUCCESS, code)
	require.Equal(t, "second", result.(store.ProposalName).String())

	code, result = call(t, s, "getheight", nil)
	require.Equal(t, errcode.SUCCESS, code)
	require.Equal(t, uint32(4), result)

	code, result = call(t, s, "getoperation", map[string]interface{}{"height": float64(3)})
	require.Equal(t, errcode.SUCCESS, code)
	require.Equal(t, ballot.OpVote, result.(*ballot.Receipt).Operation.Type)
}

func TestOperationHandlerErrors(t *testing.T) {
	s := newTestServer(t)

	code, data := call(t, s, "grantright", map[string]interface{}{
		"caller":  voterA.String(),
		"targets": []interface{}{voterB.String()},
	})
	require.Equal(t, errcode.ErrUnauthorized, code)
	require.Equal(t, ballot.ErrUnauthorized.Error(), data)

	code, _ = call(t, s, "vote", map[string]interface{}{
		"caller":   voterA.String(),
		"proposal": float64(7),
	})
	require.Equal(t, errcode.UNKNOWN_PROPOSAL, code)

	code, _ = call(t, s, "withdraw", map[string]interface{}{"caller": voterA.String()})
	require.Equal(t, errcode.ErrNoPendingWithdrawal, code)

	code, _ = call(t, s, "getoperation", map[string]interface{}{"height": float64(42)})
	require.Equal(t, errcode.UNKNOWN_OPERATION, code)
}

func TestInvalidParams(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		params map[string]interface{}
	}{
		{"vote", map[string]interface{}{"caller": voterA.String()}},
		{"vote", map[string]interface{}{"caller": "not an address", "proposal": float64(0)}},
		{"vote", map[string]interface{}{"caller": voterA.String(), "proposal": float64(-1)}},
		{"vote", map[string]interface{}{"caller": voterA.String(), "proposal": 0.5}},
		{"bribe", map[string]interface{}{"caller": voterB.String(), "bribee": voterA.String(), "proposal": float64(0), "amount": 0.005}},
		{"grantright", map[string]interface{}{"caller": chairperson.String(), "targets": voterA.String()}},
		{"getvoter", map[string]interface{}{}},
		{"setdebuginfo", map[string]interface{}{"level": "debug"}},
	}
	for _, tt := range tests {
		code, _ := call(t, s, tt.method, tt.params)
		require.Equal(t, errcode.INVALID_PARAMS, code, "%s %v", tt.method, tt.params)
	}
	require.Equal(t, uint32(0), s.GetLedger().Height())
}

func TestGetStandingsCache(t *testing.T) {
	s := newTestServer(t)

	code, result := call(t, s, "getstandings", nil)
	require.Equal(t, errcode.SUCCESS, code)
	require.Len(t, result.([]ballot.Standing), 3)

	key := []byte(fmt.Sprintf("standings:%d", s.GetLedger().Height()))
	cached, ok := rpcResultCache.Get(key)
	require.True(t, ok)
	require.Equal(t, result, cached)
}

func TestErrCodeOf(t *testing.T) {
	require.Equal(t, errcode.SUCCESS, ErrCodeOf(nil))
	require.Equal(t, errcode.ErrDelegationLoop, ErrCodeOf(fmt.Errorf("wrapped: %w", ballot.ErrDelegationLoop)))
	require.Equal(t, errcode.ErrInsufficientBalance, ErrCodeOf(store.ErrInsufficientBalance))
	require.Equal(t, errcode.INTERNAL_ERROR, ErrCodeOf(errors.New("disk on fire")))
}

func TestAccessControl(t *testing.T) {
	h := InitialAPIHandlers["setdebuginfo"]
	require.False(t, h.IsAccessableByJsonrpc())
	require.False(t, h.IsAccessableByWebsocket())

	h = InitialAPIHandlers["vote"]
	require.True(t, h.IsAccessableByJsonrpc())
	require.True(t, h.IsAccessableByWebsocket())
}

func TestOperationLimitByCaller(t *testing.T) {
	s := newTestServer(t)

	limit, burst := config.Parameters.OperationRateLimit, config.Parameters.OperationRateBurst
	config.Parameters.OperationRateLimit, config.Parameters.OperationRateBurst = 0.0001, 2
	defer func() {
		config.Parameters.OperationRateLimit, config.Parameters.OperationRateBurst = limit, burst
	}()

	flooder := common.BytesToUint160([]byte{0x0e})
	params := map[string]interface{}{"caller": flooder.String(), "proposal": float64(0)}
	for i := 0; i < 2; i++ {
		code, _ := call(t, s, "vote", params)
		require.Equal(t, errcode.ErrNoRight, code)
	}
	code, _ := call(t, s, "vote", params)
	require.Equal(t, errcode.SERVICE_CEILING, code)
	code, _ = call(t, s, "withdraw", map[string]interface{}{"caller": flooder.String()})
	require.Equal(t, errcode.SERVICE_CEILING, code)

	// other callers and queries are not affected
	code, _ = call(t, s, "withdraw", map[string]interface{}{"caller": common.BytesToUint160([]byte{0x0d}).String()})
	require.Equal(t, errcode.ErrNoPendingWithdrawal, code)
	code, _ = call(t, s, "getheight", map[string]interface{}{})
	require.Equal(t, errcode.SUCCESS, code)
}
