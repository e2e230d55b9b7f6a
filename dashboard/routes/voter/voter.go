package voter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/dashboard/routes/common"
)

func VoterRouter(router *gin.RouterGroup) {
	router.GET("/voters", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		voters, err := ledger.Voters()
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, voters)
	})

	router.GET("/voters/:address", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		addr, ok := common.AddressParam(context)
		if !ok {
			return
		}
		voter, err := ledger.Voter(addr)
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		balance, err := ledger.Balance(addr)
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, gin.H{
			"address": addr,
			"voter":   voter,
			"balance": balance,
		})
	})
}
