package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/config"
	"github.com/kama950028/KadrSp/internal/api/handler"
	"github.com/kama950028/KadrSp/internal/api/middleware"
)

// Setup builds the Gin engine. limiter and metrics may be nil.
func Setup(cfg *config.Config, h *handler.Handler, limiter middleware.Limiter, metrics http.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20

	// ── Global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── Health ──
	r.GET("/health", h.Health.Health)
	if metrics != nil {
		r.GET("/metrics", gin.WrapH(metrics))
	}

	upload := middleware.Upload(cfg.Server.MaxUploadMB << 20)
	throttle := middleware.RateLimit(limiter, cfg.Server.RateLimit.Uploads, cfg.Server.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		imports := v1.Group("/imports")
		{
			imports.GET("", h.Import.ListRuns)
			imports.POST("/instructors", throttle, upload, h.Import.ImportInstructors)
			imports.POST("/curriculum", throttle, upload, h.Import.ImportCurriculum)
			imports.GET("/:id", h.Import.GetRun)
		}

		programs := v1.Group("/programs")
		{
			programs.GET("", h.Program.ListPrograms)
			programs.POST("", h.Program.CreateProgram)
			programs.GET("/:id/disciplines", h.Program.GetCurriculum)
			programs.GET("/:id/departments", h.Program.GetDepartments)
			programs.GET("/:id/export", h.Program.ExportCurriculum)
			programs.DELETE("/:id", h.Program.DeleteProgram)
		}

		v1.GET("/instructors/:id", h.Instructor.GetInstructor)

		v1.DELETE("/admin/reset", h.Admin.Reset)
	}

	return r
}
