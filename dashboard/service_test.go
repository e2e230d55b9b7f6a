package dashboard

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
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

func newTestEngine(t *testing.T) (*ballot.Ledger, *gin.Engine) {
	gin.SetMode(gin.TestMode)

	st, err := db.NewMemLevelDBStore()
	require.Nil(t, err)

	allocations := map[common.Uint160]common.Fixed64{voterB: common.Fixed64(common.StorageFactor)}
	l, err := ballot.Deploy(store.NewLedgerStore(st), chairperson, []string{"first", "second", "third"}, allocations)
	require.Nil(t, err)
	l.SetEventQueue(event.NewEventQueue())
	t.Cleanup(func() { l.Close() })

	return l, NewEngine(l)
}

func get(t *testing.T, app *gin.Engine, path string, v interface{}) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	app.ServeHTTP(w, req)
	if v != nil && w.Code == http.StatusOK {
		require.Nil(t, json.Unmarshal(w.Body.Bytes(), v))
	}
	return w.Code
}

func TestBallotRoutes(t *testing.T) {
	l, app := newTestEngine(t)

	_, err := l.GrantRights(chairperson, voterA, voterB)
	require.Nil(t, err)
	_, err = l.Bribe(voterB, voterA, 2, common.Fixed64(300000))
	require.Nil(t, err)
	_, err = l.Vote(voterA, 2)
	require.Nil(t, err)

	var status map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, app, "/api/ballot", &status))
	require.Equal(t, chairperson.String(), status["chairperson"])
	require.Equal(t, l.EscrowAddress().String(), status["escrow"])
	require.Equal(t, float64(3), status["height"])
	require.Equal(t, "0.01", status["maxBribe"])

	var proposals []store.Proposal
	require.Equal(t, http.StatusOK, get(t, app, "/api/proposals", &proposals))
	require.Len(t, proposals, 3)
	require.Equal(t, uint64(1), proposals[2].VoteCount)

	var proposal store.Proposal
	require.Equal(t, http.StatusOK, get(t, app, "/api/proposals/1", &proposal))
	require.Equal(t, "second", proposal.Name.String())
	require.Equal(t, http.StatusNotFound, get(t, app, "/api/proposals/3", nil))
	require.Equal(t, http.StatusBadRequest, get(t, app, "/api/proposals/x", nil))

	var winner map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, app, "/api/winner", &winner))
	require.Equal(t, float64(2), winner["index"])
	require.Equal(t, "third", winner["name"])

	var standings []ballot.Standing
	require.Equal(t, http.StatusOK, get(t, app, "/api/standings", &standings))
	require.Equal(t, uint32(2), standings[0].Index)
	require.Equal(t, uint32(0), standings[1].Index)
	require.Equal(t, uint32(1), standings[2].Index)
}

func TestVoterRoutes(t *testing.T) {
	l, app := newTestEngine(t)

	_, err := l.GrantRights(chairperson, voterA, voterB)
	require.Nil(t, err)
	_, err = l.Bribe(voterB, voterA, 0, common.Fixed64(300000))
	require.Nil(t, err)

	var voters []store.VoterEntry
	require.Equal(t, http.StatusOK, get(t, app, "/api/voters", &voters))
	require.Len(t, voters, 2)

	var voter map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, app, "/api/voters/"+voterB.String(), &voter))
	require.Equal(t, "0.997", voter["balance"])
	require.Equal(t, float64(1), voter["voter"].(map[string]interface{})["weight"])
	require.Equal(t, http.StatusBadRequest, get(t, app, "/api/voters/nope", nil))

	var bribe store.Bribe
	require.Equal(t, http.StatusOK, get(t, app, "/api/bribes/"+voterA.String(), &bribe))
	require.Equal(t, voterB, bribe.Briber)
	require.Equal(t, common.Fixed64(300000), bribe.Amount)

	_, err = l.Vote(voterA, 0)
	require.Nil(t, err)

	var withdrawal map[string]interface{}
	require.Equal(t, http.StatusOK, get(t, app, "/api/withdrawals/"+voterA.String(), &withdrawal))
	require.Equal(t, "0.003", withdrawal["amount"])

	require.Equal(t, http.StatusNotFound, get(t, app, "/api/nothing", nil))
}
