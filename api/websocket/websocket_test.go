package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gorilla "github.com/gorilla/websocket"
	"github.com/nknorg/ballot/api/common/errcode"
	"github.com/nknorg/ballot/ballot"
	"github.com/nknorg/ballot/common"
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

type wsResponse struct {
	Action string
	Result interface{}
	Error  errcode.ErrCode
	Desc   string
}

func setup(t *testing.T) (*ballot.Ledger, *gorilla.Conn) {
	st, err := db.NewMemLevelDBStore()
	require.Nil(t, err)

	allocations := map[common.Uint160]common.Fixed64{voterB: common.Fixed64(common.StorageFactor)}
	l, err := ballot.Deploy(store.NewLedgerStore(st), chairperson, []string{"first", "second"}, allocations)
	require.Nil(t, err)
	t.Cleanup(func() { l.Close() })

	queue := event.NewEventQueue()
	l.SetEventQueue(queue)

	ts := httptest.NewServer(NewServer(l, queue))
	t.Cleanup(ts.Close)

	conn, _, err := gorilla.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	require.Nil(t, err)
	t.Cleanup(func() { conn.Close() })

	return l, conn
}

func request(t *testing.T, conn *gorilla.Conn, req map[string]interface{}) *wsResponse {
	require.Nil(t, conn.WriteJSON(req))
	return read(t, conn)
}

func read(t *testing.T, conn *gorilla.Conn) *wsResponse {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	resp := &wsResponse{}
	require.Nil(t, conn.ReadJSON(resp))
	return resp
}

func TestActions(t *testing.T) {
	_, conn := setup(t)

	resp := request(t, conn, map[string]interface{}{"Action": "getheight"})
	require.Equal(t, "getheight", resp.Action)
	require.Equal(t, errcode.SUCCESS, resp.Error)
	require.Equal(t, float64(0), resp.Result)

	resp = request(t, conn, map[string]interface{}{"Action": "getsessioncount"})
	require.Equal(t, float64(1), resp.Result)

	resp = request(t, conn, map[string]interface{}{"Action": "getvoters"})
	require.Equal(t, errcode.INVALID_METHOD, resp.Error)

	resp = request(t, conn, map[string]interface{}{
		"Action":   "vote",
		"caller":   voterA.String(),
		"proposal": 0,
	})
	require.Equal(t, errcode.ErrNoRight, resp.Error)
	require.Equal(t, errcode.ErrMessage[errcode.ErrNoRight], resp.Desc)

	resp = request(t, conn, map[string]interface{}{"Action": "watch", "Addr": "nope"})
	require.Equal(t, errcode.INVALID_PARAMS, resp.Error)
}

func TestPushSettlement(t *testing.T) {
	l, conn := setup(t)

	resp := request(t, conn, map[string]interface{}{"Action": "watch", "Addr": voterA.String()})
	require.Equal(t, errcode.SUCCESS, resp.Error)

	_, err := l.GrantRight(chairperson, voterA)
	require.Nil(t, err)
	resp = read(t, conn)
	require.Equal(t, "OperationApplied", resp.Action)

	_, err = l.Bribe(voterB, voterA, 1, common.Fixed64(1000000))
	require.Nil(t, err)
	resp = read(t, conn)
	require.Equal(t, "OperationApplied", resp.Action)

	_, err = l.Vote(voterA, 1)
	require.Nil(t, err)

	resp = read(t, conn)
	require.Equal(t, "BribeTaken", resp.Action)
	require.Equal(t, voterA.String(), resp.Result.(map[string]interface{})["bribee"])
	require.Equal(t, float64(1), resp.Result.(map[string]interface{})["proposal"])

	resp = read(t, conn)
	require.Equal(t, "WithdrawalAvailable", resp.Action)
	require.Equal(t, "0.01", resp.Result.(map[string]interface{})["amount"])

	resp = read(t, conn)
	require.Equal(t, "OperationApplied", resp.Action)
	require.Equal(t, float64(3), resp.Result.(map[string]interface{})["height"])
}
