package service

import (
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/config"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
)

// Service aggregate of every service
type Service struct {
	Import     ImportService
	Program    ProgramService
	Instructor InstructorService
	Export     ExportService
	Admin      AdminService
}

// Deps runtime collaborators of the ingestion pipeline
type Deps struct {
	Locks      KeyLocker
	Files      Releaser
	Dispatcher Dispatcher
	Metrics    Recorder
}

// NewService creates the Service aggregate
func NewService(cfg *config.Config, repo *repository.Repository, deps Deps, logger *zap.Logger) *Service {
	if deps.Locks == nil {
		deps.Locks = NewLocalLocker()
	}
	reconciler := NewReconciler(normalize.NewPolicy(cfg.Ingest), logger)

	return &Service{
		Import:     NewImportService(repo, cfg.Ingest, reconciler, deps.Locks, deps.Files, deps.Dispatcher, deps.Metrics, logger),
		Program:    NewProgramService(repo, reconciler, logger),
		Instructor: NewInstructorService(repo, logger),
		Export:     NewExportService(repo, logger),
		Admin:      NewAdminService(repo, logger),
	}
}
