package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kama950028/KadrSp/internal/service"
	"github.com/kama950028/KadrSp/pkg/response"
)

// InstructorHandler instructor read endpoints
type InstructorHandler struct {
	instructorSvc service.InstructorService
}

// NewInstructorHandler creates an InstructorHandler
func NewInstructorHandler(instructorSvc service.InstructorService) *InstructorHandler {
	return &InstructorHandler{instructorSvc: instructorSvc}
}

// GetInstructor GET /api/v1/instructors/:id
func (h *InstructorHandler) GetInstructor(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	inst, err := h.instructorSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrInstructorNotFound) {
			response.NotFound(c, 22001, "instructor not found")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, inst)
}
