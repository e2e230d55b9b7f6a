package common

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/ballot"
	. "github.com/nknorg/ballot/common"
	"github.com/nknorg/ballot/util/log"
)

var errNoLedger = errors.New("ledger is not ready")

// GetLedger returns the ledger set by the service middleware, aborting the
// request with 503 if there is none.
func GetLedger(context *gin.Context) (*ballot.Ledger, bool) {
	v, exists := context.Get("ledger")
	if exists {
		if ledger, ok := v.(*ballot.Ledger); ok && ledger != nil {
			return ledger, true
		}
	}
	context.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": errNoLedger.Error()})
	return nil, false
}

// AddressParam parses the :address path parameter, aborting with 400 if it
// is not a valid address.
func AddressParam(context *gin.Context) (Uint160, bool) {
	addr, err := ToScriptHash(context.Param("address"))
	if err != nil {
		log.WebLog.Errorf("parse address error: %v", err)
		context.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return EmptyUint160, false
	}
	return addr, true
}

// IndexParam parses the :index path parameter as a proposal index.
func IndexParam(context *gin.Context) (uint32, bool) {
	index, err := strconv.ParseUint(context.Param("index"), 10, 32)
	if err != nil {
		log.WebLog.Errorf("parse index error: %v", err)
		context.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	return uint32(index), true
}

// AbortWithLedgerError aborts with 404 for unknown proposals and 500 for
// anything else.
func AbortWithLedgerError(context *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, ballot.ErrInvalidProposal) {
		status = http.StatusNotFound
	} else {
		log.WebLog.Error(err)
	}
	context.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
