package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pos_ledger/internal/metrics"
	"pos_ledger/internal/sales"
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Service    *sales.Service
	Selections *sales.SelectionStore
	Metrics    *metrics.Manager
	Logger     *zap.Logger
	CookieName string
}

// InitRoutes registers the sales endpoints on the given Gin engine.
func InitRoutes(e *gin.Engine, deps Dependencies) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	selections := deps.Selections
	if selections == nil {
		selections = sales.NewSelectionStore()
	}
	cookie := deps.CookieName
	if cookie == "" {
		cookie = "pos_session"
	}

	e.Use(requestID(), observe(logger, deps.Metrics))

	salesHandler := NewSalesHandler(deps.Service, selections, cookie, logger)

	e.GET("/events", salesHandler.handleOverview)
	e.PUT("/session/ledger-event", salesHandler.handleSetLedgerEvent)
	e.PUT("/session/pricing-event", salesHandler.handleSetPricingEvent)
	e.POST("/session/reset", salesHandler.handleReset)
	e.POST("/sales", salesHandler.handleRecordSale)

	if deps.Metrics != nil {
		e.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
