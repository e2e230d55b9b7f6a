package websocket

import (
	"github.com/nknorg/ballot/api/common"
	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/api/websocket/server"
	"github.com/nknorg/ballot/ballot"
	. "github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/event"
	"github.com/nknorg/ballot/util/log"
)

var ws *server.WsServer

var (
	pushEventsFlag   bool = true
	pushReceiptsFlag bool = true
)

// NewServer creates the websocket server and forwards every operation
// committed on ledger that is published to queue.
func NewServer(ledger *ballot.Ledger, queue *event.EventQueue) *server.WsServer {
	ws = server.InitWsServer(ledger)
	queue.Subscribe(event.OperationApplied, SendReceipt2WSclient)
	return ws
}

// SendReceipt2WSclient pushes the events of a receipt in the order they were
// emitted, followed by the receipt itself.
func SendReceipt2WSclient(v interface{}) {
	receipt, ok := v.(*ballot.Receipt)
	if !ok {
		log.Error("Decode receipt failed")
		return
	}
	if pushEventsFlag {
		for i := range receipt.Events {
			PushEvent(&receipt.Events[i])
		}
	}
	if pushReceiptsFlag {
		PushReceipt(receipt)
	}
}

func GetWsPushEventsFlag() bool {
	return pushEventsFlag
}

func SetWsPushEventsFlag(b bool) {
	pushEventsFlag = b
}

func GetWsPushReceiptsFlag() bool {
	return pushReceiptsFlag
}

func SetWsPushReceiptsFlag(b bool) {
	pushReceiptsFlag = b
}

func PushEvent(e *ballot.Event) {
	if ws == nil {
		return
	}
	resp := common.ResponsePack(errcode.SUCCESS)
	resp["Action"] = e.Type.String()
	resp["Result"] = e
	ws.PushResult(resp, e.Bribee)
}

func PushReceipt(receipt *ballot.Receipt) {
	if ws == nil {
		return
	}
	resp := common.ResponsePack(errcode.SUCCESS)
	resp["Action"] = event.OperationApplied.String()
	resp["Result"] = receipt
	ws.PushResult(resp, receiptAddresses(receipt)...)
}

// receiptAddresses lists every address a receipt is about.
func receiptAddresses(receipt *ballot.Receipt) []Uint160 {
	var addrs []Uint160
	if receipt.Operation != nil {
		addrs = append(addrs, receipt.Operation.Caller)
		addrs = append(addrs, receipt.Operation.Targets...)
	}
	for _, e := range receipt.Events {
		addrs = append(addrs, e.Bribee)
	}
	return addrs
}

func GetServer() *server.WsServer {
	return ws
}
