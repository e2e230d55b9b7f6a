package common

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/config"
)

func SyncRouter(router *gin.RouterGroup) {
	router.GET("/sync/unix", func(context *gin.Context) {
		context.JSON(http.StatusOK, gin.H{
			"unix": time.Now().Unix(),
		})
	})

	router.GET("/sync/status", func(context *gin.Context) {
		ledger, ok := GetLedger(context)
		if !ok {
			return
		}
		context.JSON(http.StatusOK, gin.H{
			"version": config.Version,
			"height":  ledger.Height(),
		})
	})
}
