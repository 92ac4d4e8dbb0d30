package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/internal/repository"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

// AdminService administrative operations
type AdminService interface {
	// Reset deletes every program and instructor with everything hanging off them
	Reset(ctx context.Context) error
}

type adminService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAdminService creates an AdminService
func NewAdminService(repo *repository.Repository, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		s.logger.Error("reset failed", zap.Error(err))
		return pkgerrors.Storage("reset", err)
	}
	s.logger.Warn("all ingested data deleted")
	return nil
}
