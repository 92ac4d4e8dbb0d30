package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
)

// TaughtLinkRepository instructor ↔ discipline edge data access
type TaughtLinkRepository interface {
	Exists(ctx context.Context, instructorID, disciplineID uint) (bool, error)
	Create(ctx context.Context, link *model.TaughtLink) error
	CountByProgram(ctx context.Context, programID uint) (int64, error)
}

type taughtLinkRepo struct {
	db *gorm.DB
}

// NewTaughtLinkRepo creates a TaughtLinkRepository
func NewTaughtLinkRepo(db *gorm.DB) TaughtLinkRepository {
	return &taughtLinkRepo{db: db}
}

func (r *taughtLinkRepo) Exists(ctx context.Context, instructorID, disciplineID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TaughtLink{}).
		Where("instructor_id = ? AND discipline_id = ?", instructorID, disciplineID).
		Count(&count).Error
	return count > 0, err
}

// Create inserts the edge under a savepoint. A duplicate pair surfaces as
// gorm.ErrDuplicatedKey.
func (r *taughtLinkRepo) Create(ctx context.Context, link *model.TaughtLink) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Discipline").Create(link).Error
	})
}

func (r *taughtLinkRepo) CountByProgram(ctx context.Context, programID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TaughtLink{}).
		Joins("JOIN disciplines d ON d.discipline_id = taught_links.discipline_id").
		Where("d.program_id = ?", programID).
		Count(&count).Error
	return count, err
}
