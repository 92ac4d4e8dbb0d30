package handler

import (
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/internal/service"
)

// Handler aggregate of every HTTP handler
type Handler struct {
	Import     *ImportHandler
	Program    *ProgramHandler
	Instructor *InstructorHandler
	Admin      *AdminHandler
	Health     *HealthHandler
}

// NewHandler creates the Handler aggregate
func NewHandler(svc *service.Service, uploads Uploads, deps map[string]Check, logger *zap.Logger) *Handler {
	return &Handler{
		Import:     NewImportHandler(svc.Import, uploads, logger),
		Program:    NewProgramHandler(svc.Program, svc.Export, logger),
		Instructor: NewInstructorHandler(svc.Instructor),
		Admin:      NewAdminHandler(svc.Admin, logger),
		Health:     NewHealthHandler(deps),
	}
}
