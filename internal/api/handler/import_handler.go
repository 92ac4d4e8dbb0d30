package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/internal/api/middleware"
	"github.com/kama950028/KadrSp/internal/dto"
	"github.com/kama950028/KadrSp/internal/service"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
	"github.com/kama950028/KadrSp/pkg/response"
	"github.com/kama950028/KadrSp/pkg/tempfile"
)

// Uploads stores multipart files until ingestion releases them; *tempfile.Store satisfies it
type Uploads interface {
	Save(r io.Reader, filename string) (*tempfile.File, error)
}

// ImportHandler document ingestion endpoints
type ImportHandler struct {
	importSvc service.ImportService
	uploads   Uploads
	logger    *zap.Logger
}

// NewImportHandler creates an ImportHandler
func NewImportHandler(importSvc service.ImportService, uploads Uploads, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{importSvc: importSvc, uploads: uploads, logger: logger}
}

// ImportInstructors accepts a staffing document; parsing continues in the background
// POST /api/v1/imports/instructors
func (h *ImportHandler) ImportInstructors(c *gin.Context) {
	var req dto.InstructorImportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, 10001, "invalid enrollment_year")
		return
	}

	file, ok := h.receive(c)
	if !ok {
		return
	}

	accepted, err := h.importSvc.SubmitInstructors(c.Request.Context(), file, &req)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	c.Set(middleware.RunIDKey, accepted.RunID)
	response.Accepted(c, accepted)
}

// ImportCurriculum ingests a curriculum workbook and answers with the summary
// POST /api/v1/imports/curriculum
func (h *ImportHandler) ImportCurriculum(c *gin.Context) {
	file, ok := h.receive(c)
	if !ok {
		return
	}

	summary, err := h.importSvc.ImportCurriculum(c.Request.Context(), file)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	c.Set(middleware.RunIDKey, summary.RunID)
	response.OK(c, summary)
}

// GetRun import run status
// GET /api/v1/imports/:id
func (h *ImportHandler) GetRun(c *gin.Context) {
	run, err := h.importSvc.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	response.OK(c, run)
}

// ListRuns recent import runs, newest first
// GET /api/v1/imports
func (h *ImportHandler) ListRuns(c *gin.Context) {
	var req dto.PaginationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "invalid pagination")
		return
	}

	runs, total, err := h.importSvc.ListRuns(c.Request.Context(), &req)
	if err != nil {
		h.handleImportError(c, err)
		return
	}
	response.OK(c, dto.ListResponse{
		List:     runs,
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
	})
}

// receive copies the multipart "file" field into the upload store.
// The stored file belongs to the service from here on, which releases it.
func (h *ImportHandler) receive(c *gin.Context) (*tempfile.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, codeUploadTooLarge, "upload too large")
			return nil, false
		}
		response.BadRequest(c, codeUploadMissing, "multipart field \"file\" is required")
		return nil, false
	}
	c.Set(middleware.UploadFileKey, header.Filename)

	src, err := header.Open()
	if err != nil {
		h.logger.Error("open multipart file failed", zap.Error(err))
		response.InternalError(c)
		return nil, false
	}
	defer src.Close()

	file, err := h.uploads.Save(src, header.Filename)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, http.StatusRequestEntityTooLarge, codeUploadTooLarge, "upload too large")
			return nil, false
		}
		h.logger.Error("store upload failed", zap.String("filename", header.Filename), zap.Error(err))
		response.InternalError(c)
		return nil, false
	}
	return file, true
}

func (h *ImportHandler) handleImportError(c *gin.Context, err error) {
	if pkgerrors.KindOf(err) == pkgerrors.KindStorage {
		h.logger.Error("import storage failure", zap.String("request_id", RequestID(c)), zap.Error(err))
	}
	if writeIngestError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		response.NotFound(c, 20101, "import run not found")
	default:
		h.logger.Error("import request failed", zap.String("request_id", RequestID(c)), zap.Error(err))
		response.InternalError(c)
	}
}
