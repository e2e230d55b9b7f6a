package ballot

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/ballot"
	"github.com/nknorg/ballot/dashboard/routes/common"
)

func StatusRouter(router *gin.RouterGroup) {
	router.GET("/ballot", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		proposals, err := ledger.Proposals()
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, gin.H{
			"chairperson": ledger.Chairperson(),
			"escrow":      ledger.EscrowAddress(),
			"height":      ledger.Height(),
			"proposals":   len(proposals),
			"maxBribe":    ballot.MaxBribe,
		})
	})
}
