package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kama950028/KadrSp/internal/model"
)

// InstructorRepository instructor data access
type InstructorRepository interface {
	Create(ctx context.Context, instructor *model.Instructor) error
	Update(ctx context.Context, instructor *model.Instructor) error
	GetByID(ctx context.Context, id uint) (*model.Instructor, error)
	GetByNameKey(ctx context.Context, nameKey string) (*model.Instructor, error)
	ListByProgram(ctx context.Context, programID uint) ([]model.Instructor, error)
	// ListWithoutPrograms instructors not linked to any program
	ListWithoutPrograms(ctx context.Context) ([]model.Instructor, error)
	// ReplaceCredentials swaps the instructor's qualification and retraining sets
	ReplaceCredentials(ctx context.Context, instructorID uint, quals []model.Qualification, retrainings []model.Retraining) error
	ListPrograms(ctx context.Context, instructorID uint) ([]model.Program, error)
	HasProgram(ctx context.Context, instructorID, programID uint) (bool, error)
	LinkProgram(ctx context.Context, instructorID, programID uint) error
}

type instructorRepo struct {
	db *gorm.DB
}

// NewInstructorRepo creates an InstructorRepository
func NewInstructorRepo(db *gorm.DB) InstructorRepository {
	return &instructorRepo{db: db}
}

// Create inserts one row. A name_key collision surfaces as gorm.ErrDuplicatedKey.
// Inside a caller's transaction the insert runs under a savepoint, so the
// collision leaves that transaction usable.
func (r *instructorRepo) Create(ctx context.Context, instructor *model.Instructor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(instructor).Error
	})
}

func (r *instructorRepo) Update(ctx context.Context, instructor *model.Instructor) error {
	return r.db.WithContext(ctx).
		Model(&model.Instructor{}).
		Where("instructor_id = ?", instructor.InstructorID).
		Updates(map[string]interface{}{
			"full_name":               instructor.FullName,
			"position":                instructor.Position,
			"education_level":         instructor.EducationLevel,
			"specialty":               instructor.Specialty,
			"academic_degree":         instructor.AcademicDegree,
			"academic_title":          instructor.AcademicTitle,
			"total_experience":        instructor.TotalExperience,
			"teaching_experience":     instructor.TeachingExperience,
			"professional_experience": instructor.ProfessionalExperience,
			"disciplines_raw":         instructor.DisciplinesRaw,
			"qualifications_raw":      instructor.QualificationsRaw,
			"programs_raw":            instructor.ProgramsRaw,
			"updated_at":              gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *instructorRepo) GetByID(ctx context.Context, id uint) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.WithContext(ctx).
		Preload("Qualifications", func(db *gorm.DB) *gorm.DB { return db.Order("year DESC") }).
		Preload("Retrainings", func(db *gorm.DB) *gorm.DB { return db.Order("year DESC") }).
		Where("instructor_id = ?", id).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *instructorRepo) GetByNameKey(ctx context.Context, nameKey string) (*model.Instructor, error) {
	var instructor model.Instructor
	err := r.db.WithContext(ctx).
		Where("name_key = ?", nameKey).
		First(&instructor).Error
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

func (r *instructorRepo) ListByProgram(ctx context.Context, programID uint) ([]model.Instructor, error) {
	var instructors []model.Instructor
	err := r.db.WithContext(ctx).
		Joins("JOIN instructor_programs ip ON ip.instructor_id = instructors.instructor_id").
		Where("ip.program_id = ?", programID).
		Order("instructors.full_name ASC").
		Find(&instructors).Error
	return instructors, err
}

func (r *instructorRepo) ListWithoutPrograms(ctx context.Context) ([]model.Instructor, error) {
	var instructors []model.Instructor
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM instructor_programs ip WHERE ip.instructor_id = instructors.instructor_id)").
		Order("full_name ASC").
		Find(&instructors).Error
	return instructors, err
}

func (r *instructorRepo) ReplaceCredentials(ctx context.Context, instructorID uint, quals []model.Qualification, retrainings []model.Retraining) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("instructor_id = ?", instructorID).Delete(&model.Qualification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("instructor_id = ?", instructorID).Delete(&model.Retraining{}).Error; err != nil {
			return err
		}
		if len(quals) > 0 {
			for i := range quals {
				quals[i].InstructorID = instructorID
			}
			if err := tx.Create(&quals).Error; err != nil {
				return err
			}
		}
		if len(retrainings) > 0 {
			for i := range retrainings {
				retrainings[i].InstructorID = instructorID
			}
			if err := tx.Create(&retrainings).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *instructorRepo) ListPrograms(ctx context.Context, instructorID uint) ([]model.Program, error) {
	var programs []model.Program
	err := r.db.WithContext(ctx).
		Joins("JOIN instructor_programs ip ON ip.program_id = programs.program_id").
		Where("ip.instructor_id = ?", instructorID).
		Order("programs.name ASC").
		Find(&programs).Error
	return programs, err
}

func (r *instructorRepo) HasProgram(ctx context.Context, instructorID, programID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.InstructorProgram{}).
		Where("instructor_id = ? AND program_id = ?", instructorID, programID).
		Count(&count).Error
	return count > 0, err
}

func (r *instructorRepo) LinkProgram(ctx context.Context, instructorID, programID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&model.InstructorProgram{
			InstructorID: instructorID,
			ProgramID:    programID,
		}).Error
	})
}
