package voter

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/dashboard/routes/common"
)

func EscrowRouter(router *gin.RouterGroup) {
	router.GET("/bribes/:address", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		addr, ok := common.AddressParam(context)
		if !ok {
			return
		}
		bribe, err := ledger.GetBribe(addr)
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, bribe)
	})

	router.GET("/withdrawals/:address", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		addr, ok := common.AddressParam(context)
		if !ok {
			return
		}
		amount, err := ledger.PendingWithdrawal(addr)
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, gin.H{
			"address": addr,
			"amount":  amount,
		})
	})
}
