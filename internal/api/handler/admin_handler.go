package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/internal/service"
	"github.com/kama950028/KadrSp/pkg/response"
)

// AdminHandler administrative endpoints
type AdminHandler struct {
	adminSvc service.AdminService
	logger   *zap.Logger
}

// NewAdminHandler creates an AdminHandler
func NewAdminHandler(adminSvc service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{adminSvc: adminSvc, logger: logger}
}

// Reset deletes every program and instructor
// DELETE /api/v1/admin/reset
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.adminSvc.Reset(c.Request.Context()); err != nil {
		response.InternalError(c)
		return
	}
	h.logger.Warn("database reset", zap.String("ip", c.ClientIP()), zap.String("request_id", RequestID(c)))
	response.OK(c, nil)
}
