package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/dashboard/routes/ballot"
	"github.com/nknorg/ballot/dashboard/routes/common"
	"github.com/nknorg/ballot/dashboard/routes/voter"
)

func Routes(app *gin.Engine) {
	common.SyncRouter(app.Group("/api"))

	ballot.StatusRouter(app.Group("/api"))
	ballot.ProposalRouter(app.Group("/api"))
	ballot.WinnerRouter(app.Group("/api"))

	voter.VoterRouter(app.Group("/api"))
	voter.EscrowRouter(app.Group("/api"))
}
