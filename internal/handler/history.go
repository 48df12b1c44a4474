package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/kube-rca/incident-bot/internal/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type HistoryHandler struct {
	svc *service.HistoryService
}

func NewHistoryHandler(svc *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{svc: svc}
}

// ListAlerts godoc
// @Summary List recently processed alerts
// @Tags alerts
// @Produce json
// @Param limit query int false "Maximum number of records (default 50, max 500)"
// @Success 200 {object} model.AlertRecordListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/alerts [get]
func (h *HistoryHandler) ListAlerts(c *gin.Context) {
	limit, ok := parseLimit(c, defaultListLimit)
	if !ok {
		return
	}

	records, source, err := h.svc.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Status: "error", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.AlertRecordListResponse{Status: "success", Source: source, Data: records})
}

// parseLimit - ?limit 쿼리 파싱. 잘못된 값이면 400 응답 후 false
func parseLimit(c *gin.Context, fallback int) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Status: "error", Message: "limit must be a positive integer"})
		return 0, false
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit, true
}
