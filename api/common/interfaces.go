package common

import (
	"context"
	"fmt"

	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/api/ratelimiter"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/util/log"
)

const (
	BIT_JSONRPC   byte = 1
	BIT_WEBSOCKET byte = 2
)

type Handler func(Serverer, map[string]interface{}, context.Context) map[string]interface{}

type APIHandler struct {
	Handler    Handler
	AccessCtrl byte
}

// IsAccessableByJsonrpc return true if the handler is
// able to be invoked by jsonrpc
func (ah *APIHandler) IsAccessableByJsonrpc() bool {
	if ah.AccessCtrl&BIT_JSONRPC != BIT_JSONRPC {
		return false
	}

	return true
}

// IsAccessableByWebsocket return true if the handler is
// able to be invoked by websocket
func (ah *APIHandler) IsAccessableByWebsocket() bool {
	if ah.AccessCtrl&BIT_WEBSOCKET != BIT_WEBSOCKET {
		return false
	}

	return true
}

// limitByCaller rejects an operation once its caller has used up the per
// caller operation limit, whichever transport the calls came from.
func limitByCaller(h Handler) Handler {
	return func(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
		caller, _ := params["caller"].(string)
		limit := ratelimiter.Limit{Rate: config.Parameters.OperationRateLimit, Burst: int(config.Parameters.OperationRateBurst)}
		if len(caller) > 0 && !ratelimiter.Allow(ratelimiter.Operation, caller, limit) {
			log.Infof("Operation limit of %s reached", caller)
			return respPacking(errcode.SERVICE_CEILING, "too many operations from "+caller)
		}
		return h(s, params, ctx)
	}
}

// grantRight gives the right to vote to one or more voters
// params: {"caller":<address>, "targets":[<address>, ...]}
// return: {"resultOrData":<receipt>|<error data>, "error":<errcode>}
func grantRight(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 2 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 2")
	}

	caller, err := getAddressParam(params, "caller")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	targets, err := getAddressListParam(params, "targets")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	receipt, err := s.GetLedger().GrantRights(caller, targets...)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, receipt)
}

// delegate delegates the caller's vote to another voter
// params: {"caller":<address>, "to":<address>}
// return: {"resultOrData":<receipt>|<error data>, "error":<errcode>}
func delegate(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 2 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 2")
	}

	caller, err := getAddressParam(params, "caller")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	to, err := getAddressParam(params, "to")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	receipt, err := s.GetLedger().Delegate(caller, to)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, receipt)
}

// vote casts the caller's vote for a proposal
// params: {"caller":<address>, "proposal":<index>}
// return: {"resultOrData":<receipt>|<error data>, "error":<errcode>}
func vote(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 2 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 2")
	}

	caller, err := getAddressParam(params, "caller")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	index, err := getUint32Param(params, "proposal")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	receipt, err := s.GetLedger().Vote(caller, index)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, receipt)
}

// bribe escrows amount for bribee, paid out if bribee votes for proposal
// params: {"caller":<address>, "bribee":<address>, "proposal":<index>, "amount":<decimal string>}
// return: {"resultOrData":<receipt>|<error data>, "error":<errcode>}
func bribe(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 4 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 4")
	}

	caller, err := getAddressParam(params, "caller")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	bribee, err := getAddressParam(params, "bribee")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	index, err := getUint32Param(params, "proposal")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}
	amount, err := getFixed64Param(params, "amount")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	receipt, err := s.GetLedger().Bribe(caller, bribee, index, amount)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, receipt)
}

// withdraw pays out the caller's pending withdrawal
// params: {"caller":<address>}
// return: {"resultOrData":<receipt>|<error data>, "error":<errcode>}
func withdraw(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	caller, err := getAddressParam(params, "caller")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	receipt, err := s.GetLedger().Withdraw(caller)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, receipt)
}

// getChairperson gets the chairperson and escrow address
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getChairperson(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	ledger := s.GetLedger()
	ret := map[string]interface{}{
		"chairperson": ledger.Chairperson(),
		"escrow":      ledger.EscrowAddress(),
	}
	return respPacking(errcode.SUCCESS, ret)
}

// getProposal gets a proposal by index
// params: {"index":<index>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getProposal(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	index, err := getUint32Param(params, "index")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	proposal, err := s.GetLedger().Proposal(index)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, proposal)
}

// getProposals gets all proposals in index order
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getProposals(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	proposals, err := s.GetLedger().Proposals()
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, proposals)
}

// getVoter gets the voter record of an address
// params: {"address":<address>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getVoter(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	addr, err := getAddressParam(params, "address")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	voter, err := s.GetLedger().Voter(addr)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, voter)
}

// getVoters gets every non-default voter record
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getVoters(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	voters, err := s.GetLedger().Voters()
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, voters)
}

// getBribe gets the unsettled bribe recorded for a bribee
// params: {"address":<address>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getBribe(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	addr, err := getAddressParam(params, "address")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	bribe, err := s.GetLedger().GetBribe(addr)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, bribe)
}

// getPendingWithdrawal gets the amount an address can withdraw
// params: {"address":<address>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getPendingWithdrawal(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	addr, err := getAddressParam(params, "address")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	amount, err := s.GetLedger().PendingWithdrawal(addr)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, map[string]interface{}{"amount": amount})
}

// getWinningProposal gets the index of the winning proposal
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getWinningProposal(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	index, err := s.GetLedger().WinningProposal()
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, index)
}

// getWinnerName gets the name of the winning proposal
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getWinnerName(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	name, err := s.GetLedger().WinnerName()
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, name)
}

// getStandings gets proposals ordered from most to fewest votes
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getStandings(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	ledger := s.GetLedger()
	height := ledger.Height()
	cacheKey := []byte(fmt.Sprintf("standings:%d", height))
	if standings, ok := rpcResultCache.Get(cacheKey); ok {
		return respPacking(errcode.SUCCESS, standings)
	}

	standings, err := ledger.Standings()
	if err != nil {
		return respError(err)
	}

	// an operation committed in between would make the result newer than height
	if ledger.Height() == height {
		rpcResultCache.Set(cacheKey, standings)
	}
	return respPacking(errcode.SUCCESS, standings)
}

// getBalance gets the native value balance of an address
// params: {"address":<address>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getBalance(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	addr, err := getAddressParam(params, "address")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	balance, err := s.GetLedger().Balance(addr)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, map[string]interface{}{"amount": balance})
}

// getHeight gets the number of committed operations
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getHeight(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	return respPacking(errcode.SUCCESS, s.GetLedger().Height())
}

// getOperation gets the receipt committed at a height
// params: {"height":<height>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getOperation(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	height, err := getUint32Param(params, "height")
	if err != nil {
		return respPacking(errcode.INVALID_PARAMS, err.Error())
	}

	receipt, err := s.GetLedger().Operation(height)
	if err != nil {
		return respError(err)
	}
	return respPacking(errcode.SUCCESS, receipt)
}

// setDebugInfo sets log level
// params: {"level":<log leverl>}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func setDebugInfo(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	if len(params) < 1 {
		return respPacking(errcode.INVALID_PARAMS, "length of params is less than 1")
	}

	level, ok := params["level"].(float64)
	if !ok {
		return respPacking(errcode.INVALID_PARAMS, "level should be float64")
	}
	if err := log.Log.SetDebugLevel(int(level)); err != nil {
		return respPacking(errcode.INTERNAL_ERROR, err.Error())
	}

	return respPacking(errcode.SUCCESS, nil)
}

// getVersion gets version of this server
// params: {}
// return: {"resultOrData":<result>|<error data>, "error":<errcode>}
func getVersion(s Serverer, params map[string]interface{}, ctx context.Context) map[string]interface{} {
	return respPacking(errcode.SUCCESS, config.Version)
}

var InitialAPIHandlers = map[string]APIHandler{
	"grantright":           {Handler: limitByCaller(grantRight), AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"delegate":             {Handler: limitByCaller(delegate), AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"vote":                 {Handler: limitByCaller(vote), AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"bribe":                {Handler: limitByCaller(bribe), AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"withdraw":             {Handler: limitByCaller(withdraw), AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getchairperson":       {Handler: getChairperson, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getproposal":          {Handler: getProposal, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getproposals":         {Handler: getProposals, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getvoter":             {Handler: getVoter, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getvoters":            {Handler: getVoters, AccessCtrl: BIT_JSONRPC},
	"getbribe":             {Handler: getBribe, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getpendingwithdrawal": {Handler: getPendingWithdrawal, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getwinningproposal":   {Handler: getWinningProposal, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getwinnername":        {Handler: getWinnerName, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getstandings":         {Handler: getStandings, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getbalance":           {Handler: getBalance, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getheight":            {Handler: getHeight, AccessCtrl: BIT_JSONRPC | BIT_WEBSOCKET},
	"getoperation":         {Handler: getOperation, AccessCtrl: BIT_JSONRPC},
	"getversion":           {Handler: getVersion, AccessCtrl: BIT_JSONRPC},
	"setdebuginfo":         {Handler: setDebugInfo},
}
