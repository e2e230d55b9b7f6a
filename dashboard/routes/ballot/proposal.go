package ballot

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/dashboard/routes/common"
)

func ProposalRouter(router *gin.RouterGroup) {
	router.GET("/proposals", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		proposals, err := ledger.Proposals()
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, proposals)
	})

	router.GET("/proposals/:index", func(context *gin.Context) {
		ledger, ok := common.GetLedger(context)
		if !ok {
			return
		}
		index, ok := common.IndexParam(context)
		if !ok {
			return
		}
		proposal, err := ledger.Proposal(index)
		if err != nil {
			common.AbortWithLedgerError(context, err)
			return
		}
		context.JSON(http.StatusOK, proposal)
	})
}
