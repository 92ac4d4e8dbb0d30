package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
)

// DisciplineRepository curriculum line-item data access
type DisciplineRepository interface {
	// ReplaceByProgram drops every discipline of the program (and their taught
	// links) and inserts the new batch.
	ReplaceByProgram(ctx context.Context, programID uint, disciplines []model.Discipline) error
	ListByProgram(ctx context.Context, programID uint) ([]model.Discipline, error)
	ListByPrograms(ctx context.Context, programIDs []uint) ([]model.Discipline, error)
	ListByInstructor(ctx context.Context, instructorID uint) ([]model.Discipline, error)
	CountByProgram(ctx context.Context, programID uint) (int64, error)
	// CountByPrograms discipline counts keyed by program id; absent ids count 0
	CountByPrograms(ctx context.Context, programIDs []uint) (map[uint]int64, error)
}

type disciplineRepo struct {
	db *gorm.DB
}

// NewDisciplineRepo creates a DisciplineRepository
func NewDisciplineRepo(db *gorm.DB) DisciplineRepository {
	return &disciplineRepo{db: db}
}

const disciplineBatchSize = 200

func (r *disciplineRepo) ReplaceByProgram(ctx context.Context, programID uint, disciplines []model.Discipline) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// links first: the FK cascade would do it, but an explicit delete keeps
		// the statement order independent of the constraint definition
		if err := tx.Where("discipline_id IN (?)",
			tx.Model(&model.Discipline{}).Select("discipline_id").Where("program_id = ?", programID),
		).Delete(&model.TaughtLink{}).Error; err != nil {
			return err
		}
		if err := tx.Where("program_id = ?", programID).Delete(&model.Discipline{}).Error; err != nil {
			return err
		}
		if len(disciplines) == 0 {
			return nil
		}
		for i := range disciplines {
			disciplines[i].ProgramID = programID
		}
		return tx.Omit("Program").CreateInBatches(&disciplines, disciplineBatchSize).Error
	})
}

func (r *disciplineRepo) ListByProgram(ctx context.Context, programID uint) ([]model.Discipline, error) {
	var disciplines []model.Discipline
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("discipline_id ASC").
		Find(&disciplines).Error
	return disciplines, err
}

func (r *disciplineRepo) ListByPrograms(ctx context.Context, programIDs []uint) ([]model.Discipline, error) {
	var disciplines []model.Discipline
	if len(programIDs) == 0 {
		return disciplines, nil
	}
	err := r.db.WithContext(ctx).
		Where("program_id IN ?", programIDs).
		Order("discipline_id ASC").
		Find(&disciplines).Error
	return disciplines, err
}

func (r *disciplineRepo) ListByInstructor(ctx context.Context, instructorID uint) ([]model.Discipline, error) {
	var disciplines []model.Discipline
	err := r.db.WithContext(ctx).
		Preload("Program").
		Joins("JOIN taught_links tl ON tl.discipline_id = disciplines.discipline_id").
		Where("tl.instructor_id = ?", instructorID).
		Order("disciplines.title ASC").
		Find(&disciplines).Error
	return disciplines, err
}

func (r *disciplineRepo) CountByProgram(ctx context.Context, programID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Discipline{}).
		Where("program_id = ?", programID).
		Count(&count).Error
	return count, err
}

func (r *disciplineRepo) CountByPrograms(ctx context.Context, programIDs []uint) (map[uint]int64, error) {
	result := make(map[uint]int64, len(programIDs))
	if len(programIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		ProgramID uint
		Count     int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Discipline{}).
		Select("program_id, COUNT(*) AS count").
		Where("program_id IN ?", programIDs).
		Group("program_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.ProgramID] = row.Count
	}
	return result, nil
}
