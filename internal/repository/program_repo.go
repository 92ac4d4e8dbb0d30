package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
)

// ProgramRepository program data access
type ProgramRepository interface {
	Create(ctx context.Context, program *model.Program) error
	GetByID(ctx context.Context, id uint) (*model.Program, error)
	GetByName(ctx context.Context, name string) (*model.Program, error)
	GetByShortCode(ctx context.Context, code string) (*model.Program, error)
	ListByCodePrefix(ctx context.Context, prefix string) ([]model.Program, error)
	List(ctx context.Context) ([]model.Program, error)
	ShortCodeExists(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type programRepo struct {
	db *gorm.DB
}

// NewProgramRepo creates a ProgramRepository
func NewProgramRepo(db *gorm.DB) ProgramRepository {
	return &programRepo{db: db}
}

// Create inserts under a savepoint; name or short_code collisions surface as
// gorm.ErrDuplicatedKey.
func (r *programRepo) Create(ctx context.Context, program *model.Program) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Disciplines").Create(program).Error
	})
}

func (r *programRepo) GetByID(ctx context.Context, id uint) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).Where("program_id = ?", id).First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) GetByName(ctx context.Context, name string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

func (r *programRepo) GetByShortCode(ctx context.Context, code string) (*model.Program, error) {
	var program model.Program
	err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&program).Error
	if err != nil {
		return nil, err
	}
	return &program, nil
}

// ListByCodePrefix programs whose short code is prefix or starts with "<prefix>_",
// newest enrollment first. "09" does not select "09.03.04_ПИ_2024".
func (r *programRepo) ListByCodePrefix(ctx context.Context, prefix string) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).
		Where("short_code = ? OR short_code LIKE ?", prefix, escapeLike(prefix)+`\_%`).
		Order("enrollment_year DESC, program_id ASC").
		Find(&programs).Error
	return programs, err
}

func (r *programRepo) List(ctx context.Context) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).Order("short_code ASC").Find(&programs).Error
	return programs, err
}

func (r *programRepo) ShortCodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Program{}).
		Where("short_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// Delete removes the program; disciplines and their links go by cascade
func (r *programRepo) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("program_id = ?", id).Delete(&model.Program{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
