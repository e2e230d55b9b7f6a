package dashboard

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nknorg/ballot/ballot"
	"github.com/nknorg/ballot/config"
	"github.com/nknorg/ballot/dashboard/routes"
	"github.com/nknorg/ballot/util/log"
)

// NewEngine builds the read-only ballot API served under /api.
func NewEngine(ledger *ballot.Ledger) *gin.Engine {
	app := gin.New()
	app.Use(gin.Recovery())
	app.Use(func(context *gin.Context) {
		context.Set("ledger", ledger)
	})
	app.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.WebLog.Infof("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
		return ""
	}))

	routes.Routes(app)

	// 404 router
	app.NoRoute(func(context *gin.Context) {
		context.JSON(http.StatusNotFound, "not found")
	})

	return app
}

// Start serves the dashboard on WebServiceListenAddr:WebServicePort and blocks.
func Start(ledger *ballot.Ledger) error {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	addr := config.Parameters.WebServiceListenAddr + ":" + strconv.Itoa(int(config.Parameters.WebServicePort))
	log.Infof("Dashboard listening on %s", addr)
	return NewEngine(ledger).Run(addr)
}
