package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pos_ledger/internal/sales"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	selections   *sales.SelectionStore
	cookieName   string
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, selections *sales.SelectionStore, cookieName string, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		selections:   selections,
		cookieName:   cookieName,
		logger:       logger,
	}
}

// session returns the caller's session id, issuing a cookie on first contact.
func (h *salesHandler) session(ctx *gin.Context) string {
	if id, err := ctx.Cookie(h.cookieName); err == nil && id != "" {
		return id
	}
	id := uuid.NewString()
	ctx.SetCookie(h.cookieName, id, 0, "/", "", false, true)
	return id
}

// handleOverview handles GET /events.
func (h *salesHandler) handleOverview(ctx *gin.Context) {
	sel := h.selections.Get(h.session(ctx))

	overview, err := h.salesService.Overview(ctx.Request.Context(), sel)
	if err != nil {
		ctx.JSON(http.StatusBadGateway, gin.H{"error": "failed to load pricing events"})
		return
	}
	ctx.JSON(http.StatusOK, overview)
}

// handleSetLedgerEvent handles PUT /session/ledger-event.
func (h *salesHandler) handleSetLedgerEvent(ctx *gin.Context) {
	var req struct {
		EventName string `form:"event_name" json:"event_name"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sel := h.selections.Update(h.session(ctx), func(s *sales.Selection) { s.LedgerEvent = req.EventName })
	ctx.JSON(http.StatusOK, sel)
}

// handleSetPricingEvent handles PUT /session/pricing-event.
func (h *salesHandler) handleSetPricingEvent(ctx *gin.Context) {
	var req struct {
		PriceEvent string `form:"price_event" json:"price_event"`
	}
	if err := ctx.ShouldBind(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sel := h.selections.Update(h.session(ctx), func(s *sales.Selection) { s.PricingEvent = req.PriceEvent })
	ctx.JSON(http.StatusOK, sel)
}

// handleReset handles POST /session/reset.
func (h *salesHandler) handleReset(ctx *gin.Context) {
	sel := h.selections.Update(h.session(ctx), h.salesService.Reset)
	ctx.JSON(http.StatusOK, gin.H{"selection": sel, "next_customer_number": h.salesService.Sequence().Current() + 1})
}

type recordSaleRequest struct {
	Sales         string `form:"sales" json:"sales"`
	Quantities    string `form:"quantities" json:"quantities"`
	Gender        string `form:"gender" json:"gender"`
	AgeGroup      string `form:"age_group" json:"age_group"`
	Features      string `form:"features" json:"features"`
	PaymentMethod string `form:"payment_method" json:"payment_method"`
}

// handleRecordSale handles the POST /sales endpoint.
func (h *salesHandler) handleRecordSale(ctx *gin.Context) {
	var req recordSaleRequest
	if err := ctx.ShouldBind(&req); err != nil {
		h.logger.Warn("failed to bind sale request", zap.Error(err))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}

	sub := sales.Submission{
		ItemCodes:     req.Sales,
		Quantities:    req.Quantities,
		Gender:        req.Gender,
		AgeGroup:      req.AgeGroup,
		Features:      req.Features,
		PaymentMethod: req.PaymentMethod,
		Selection:     h.selections.Get(h.session(ctx)),
	}

	receipt, err := h.salesService.RecordSale(ctx.Request.Context(), sub)
	if err != nil {
		switch {
		case errors.Is(err, sales.ErrValidation):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, sales.ErrLookup):
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.Is(err, sales.ErrStore):
			body := gin.H{"error": "failed to write to the ledger"}
			if receipt.CustomerID != 0 {
				body["customer_id"] = receipt.CustomerID
			}
			ctx.JSON(http.StatusBadGateway, body)
		default:
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	ctx.JSON(http.StatusCreated, receipt)
}
