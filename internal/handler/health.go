package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kube-rca/incident-bot/docs"
	"github.com/kube-rca/incident-bot/internal/model"
)

type HealthHandler struct {
	aiEnabled      bool
	healingEnabled bool
}

func NewHealthHandler(aiEnabled, healingEnabled bool) *HealthHandler {
	return &HealthHandler{aiEnabled: aiEnabled, healingEnabled: healingEnabled}
}

// 헬스체크 엔드포인트
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{Message: "pong"})
}

// Root godoc
// @Summary Service status
// @Tags health
// @Produce json
// @Success 200 {object} model.HealthResponse
// @Router / [get]
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.HealthResponse{
		Status:             "online",
		Message:            "AI-powered incident bot is running",
		AIEnabled:          h.aiEnabled,
		SelfHealingEnabled: h.healingEnabled,
	})
}

// OpenAPIDoc - swag으로 생성한 OpenAPI 문서
func OpenAPIDoc(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(docs.SwaggerInfo.ReadDoc()))
}
