package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "marketdash/pkg/errors"
	"marketdash/service"
	"marketdash/utils"
)

type Handler struct {
	svc    *service.Service
	logger *zap.Logger
}

func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Root answers the liveness probe.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Stock Dashboard API is running"})
}

// Health reports service readiness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStock serves GET /api/stock/:symbol.
func (h *Handler) GetStock(c *gin.Context) {
	symbol, err := utils.ValidateSymbol(c.Param("symbol"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	quote, err := h.svc.GetStock(c.Request.Context(), symbol)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// GetHistory serves GET /api/stock/:symbol/history.
func (h *Handler) GetHistory(c *gin.Context) {
	symbol, err := utils.ValidateSymbol(c.Param("symbol"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	period, err := utils.ValidatePeriod(c.Query("period"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	series, err := h.svc.GetHistory(c.Request.Context(), symbol, period)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, series)
}

// GetNews serves GET /api/news/:symbol.
func (h *Handler) GetNews(c *gin.Context) {
	symbol, err := utils.ValidateSymbol(c.Param("symbol"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	news, err := h.svc.GetNews(c.Request.Context(), symbol)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, news)
}

// MarketOverview serves GET /api/market/overview.
func (h *Handler) MarketOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.MarketOverview())
}

// MarketInsights serves GET /api/market/insights.
func (h *Handler) MarketInsights(c *gin.Context) {
	daysBack := 1
	if raw := c.Query("days_back"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days_back must be an integer"})
			return
		}
		daysBack = parsed
	}
	if err := utils.ValidateDaysBack(daysBack); err != nil {
		h.renderError(c, err)
		return
	}
	insights, err := h.svc.MarketInsights(c.Request.Context(), daysBack)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

// renderError maps an error onto the wire format. Validation errors echo
// their message; everything else is reported generically so provider
// details never leak to clients.
func (h *Handler) renderError(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr == nil {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to fetch data"})
		return
	}
	if appErr.Code == apperrors.ErrCodeValidation {
		c.JSON(appErr.HTTPStatus(), gin.H{"error": appErr.Message})
		return
	}
	h.logger.Error("request failed", zap.String("path", c.FullPath()),
		zap.String("code", string(appErr.Code)), zap.Error(err))
	c.JSON(appErr.HTTPStatus(), gin.H{"error": "failed to fetch data"})
}
