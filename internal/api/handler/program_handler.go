package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/internal/dto"
	"github.com/kama950028/KadrSp/internal/service"
	"github.com/kama950028/KadrSp/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProgramHandler programs, curricula and curriculum export
type ProgramHandler struct {
	programSvc service.ProgramService
	exportSvc  service.ExportService
	logger     *zap.Logger
}

// NewProgramHandler creates a ProgramHandler
func NewProgramHandler(programSvc service.ProgramService, exportSvc service.ExportService, logger *zap.Logger) *ProgramHandler {
	return &ProgramHandler{programSvc: programSvc, exportSvc: exportSvc, logger: logger}
}

// ListPrograms GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"list": programs})
}

// CreateProgram POST /api/v1/programs
func (h *ProgramHandler) CreateProgram(c *gin.Context) {
	var req dto.CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "validation failed")
		return
	}

	program, err := h.programSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}
	response.Created(c, program)
}

// GetCurriculum GET /api/v1/programs/:id/disciplines
func (h *ProgramHandler) GetCurriculum(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	curriculum, err := h.programSvc.Curriculum(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}
	response.OK(c, curriculum)
}

// GetDepartments GET /api/v1/programs/:id/departments
func (h *ProgramHandler) GetDepartments(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	summary, err := h.programSvc.Departments(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}
	response.OK(c, summary)
}

// ExportCurriculum GET /api/v1/programs/:id/export
func (h *ProgramHandler) ExportCurriculum(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCurriculum(c.Request.Context(), id)
	if err != nil {
		h.handleProgramError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// DeleteProgram DELETE /api/v1/programs/:id
func (h *ProgramHandler) DeleteProgram(c *gin.Context) {
	id, ok := MustGetID(c, "id")
	if !ok {
		return
	}

	if err := h.programSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleProgramError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *ProgramHandler) handleProgramError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProgramNotFound):
		response.NotFound(c, 21001, "program not found")
	case errors.Is(err, service.ErrProgramNameExists):
		response.Error(c, http.StatusConflict, 21002, "program name already exists")
	case errors.Is(err, service.ErrProgramNameInvalid):
		response.BadRequest(c, 21003, "cannot derive a short code from the program name")
	case errors.Is(err, service.ErrExportNoDisciplines):
		response.NotFound(c, 21004, "program has no disciplines to export")
	default:
		h.logger.Error("program request failed", zap.String("request_id", RequestID(c)), zap.Error(err))
		response.InternalError(c)
	}
}
