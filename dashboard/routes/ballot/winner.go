package ballot

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/dashboard/routes/common"
)

func WinnerRouter(router *gin.RouterGroup) {
	router.GET("/winner", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		index, err := ledger.WinningProposal()
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		name, err := ledger.WinnerName()
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, gin.H{
			"index": index,
			"name":  name,
		})
	})

	router.GET("/standings", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		standings, err := ledger.Standings()
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, standings)
	})
}
