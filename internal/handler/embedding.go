package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kube-rca/incident-bot/internal/model"
	"github.com/kube-rca/incident-bot/internal/service"
)

const defaultSimilarLimit = 5

type EmbeddingHandler struct {
	svc *service.EmbeddingService
}

func NewEmbeddingHandler(svc *service.EmbeddingService) *EmbeddingHandler {
	return &EmbeddingHandler{svc: svc}
}

// SimilarAlerts godoc
// @Summary Find past alerts with similar suggestions
// @Tags alerts
// @Produce json
// @Param id path string true "Alert record ID"
// @Param limit query int false "Maximum number of results (default 5)"
// @Success 200 {object} model.SimilarAlertListResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Failure 503 {object} model.ErrorResponse
// @Router /api/v1/alerts/{id}/similar [get]
func (h *EmbeddingHandler) SimilarAlerts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Status: "error", Message: "id must be a UUID"})
		return
	}
	limit, ok := parseLimit(c, defaultSimilarLimit)
	if !ok {
		return
	}

	similar, err := h.svc.FindSimilar(c.Request.Context(), id, limit)
	if errors.Is(err, service.ErrSimilarityUnavailable) {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Status: "error", Message: err.Error()})
		return
	}
	if errors.Is(err, model.ErrAlertRecordNotFound) {
		c.JSON(http.StatusNotFound, model.ErrorResponse{Status: "error", Message: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Status: "error", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, model.SimilarAlertListResponse{Status: "success", Data: similar})
}
