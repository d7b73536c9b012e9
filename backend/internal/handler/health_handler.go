package handler

import (
	"context"
	"net/http"
	"time"

	response "weekend-at-joes/backend/internal/infra/common"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HealthHandler 探测数据库连通性。
type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrServiceUnavailable, "database unreachable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
}
