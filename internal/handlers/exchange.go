// internal/handlers/exchange.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/construmax/construmax-backend/internal/services"
	"github.com/construmax/construmax-backend/internal/utils"
)

type ExchangeHandler struct {
	exchangeService *services.ExchangeService
}

func NewExchangeHandler(exchangeService *services.ExchangeService) *ExchangeHandler {
	return &ExchangeHandler{exchangeService: exchangeService}
}

// GET /exchange-rate
func (h *ExchangeHandler) GetExchangeRate(c *gin.Context) {
	rate, err := h.exchangeService.GetRate(c.Request.Context())
	if err != nil {
		utils.ServiceUnavailableResponse(c, "Exchange rate unavailable, try again later")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"usd_to_uyu": rate.USDToUYU,
		"source":     rate.Source,
		"fetched_at": rate.FetchedAt,
	})
}

// POST /admin/exchange-rate/refresh
func (h *ExchangeHandler) RefreshExchangeRate(c *gin.Context) {
	if err := h.exchangeService.Refresh(c.Request.Context()); err != nil {
		utils.ServiceUnavailableResponse(c, "Exchange rate provider unreachable")
		return
	}

	rate, err := h.exchangeService.GetRate(c.Request.Context())
	if err != nil {
		utils.ServiceUnavailableResponse(c, "Exchange rate unavailable")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"usd_to_uyu": rate.USDToUYU,
		"source":     rate.Source,
		"fetched_at": rate.FetchedAt,
	})
}
