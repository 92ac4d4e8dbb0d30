package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
)

// ImportRunRepository ingestion run bookkeeping
type ImportRunRepository interface {
	Create(ctx context.Context, run *model.ImportRun) error
	Save(ctx context.Context, run *model.ImportRun) error
	GetByID(ctx context.Context, id string) (*model.ImportRun, error)
	// List newest first, with the total row count
	List(ctx context.Context, offset, limit int) ([]model.ImportRun, int64, error)
}

type importRunRepo struct {
	db *gorm.DB
}

// NewImportRunRepo creates an ImportRunRepository
func NewImportRunRepo(db *gorm.DB) ImportRunRepository {
	return &importRunRepo{db: db}
}

func (r *importRunRepo) Create(ctx context.Context, run *model.ImportRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}

// Save writes every column of the run
func (r *importRunRepo) Save(ctx context.Context, run *model.ImportRun) error {
	return r.db.WithContext(ctx).Save(run).Error
}

func (r *importRunRepo) GetByID(ctx context.Context, id string) (*model.ImportRun, error) {
	var run model.ImportRun
	err := r.db.WithContext(ctx).Where("import_run_id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *importRunRepo) List(ctx context.Context, offset, limit int) ([]model.ImportRun, int64, error) {
	var (
		runs  []model.ImportRun
		total int64
	)
	if err := r.db.WithContext(ctx).Model(&model.ImportRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&runs).Error
	return runs, total, err
}
