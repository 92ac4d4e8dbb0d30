package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/dto"
	"github.com/kama950028/KadrSp/internal/repository"
)

// ── Instructor errors ──

var ErrInstructorNotFound = errors.New("instructor not found")

// InstructorService instructor read model
type InstructorService interface {
	// GetByID instructor with credentials, programs and taught disciplines
	GetByID(ctx context.Context, id uint) (*dto.InstructorDetailResponse, error)
}

type instructorService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInstructorService creates an InstructorService
func NewInstructorService(repo *repository.Repository, logger *zap.Logger) InstructorService {
	return &instructorService{repo: repo, logger: logger}
}

func (s *instructorService) GetByID(ctx context.Context, id uint) (*dto.InstructorDetailResponse, error) {
	inst, err := s.repo.Instructor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNotFound
		}
		s.logger.Error("find instructor failed", zap.Uint("instructor_id", id), zap.Error(err))
		return nil, err
	}

	programs, err := s.repo.Instructor.ListPrograms(ctx, id)
	if err != nil {
		s.logger.Error("list instructor programs failed", zap.Uint("instructor_id", id), zap.Error(err))
		return nil, err
	}
	disciplines, err := s.repo.Discipline.ListByInstructor(ctx, id)
	if err != nil {
		s.logger.Error("list taught disciplines failed", zap.Uint("instructor_id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.InstructorDetailResponse{
		ID:                     inst.InstructorID,
		FullName:               inst.FullName,
		Position:               inst.Position,
		EducationLevel:         inst.EducationLevel,
		Specialty:              inst.Specialty,
		AcademicDegree:         inst.AcademicDegree,
		AcademicTitle:          inst.AcademicTitle,
		TotalExperience:        inst.TotalExperience,
		TeachingExperience:     inst.TeachingExperience,
		ProfessionalExperience: inst.ProfessionalExperience,
		Qualifications:         make([]dto.CredentialResponse, 0, len(inst.Qualifications)),
		Retrainings:            make([]dto.CredentialResponse, 0, len(inst.Retrainings)),
		Programs:               make([]dto.ProgramResponse, 0, len(programs)),
		Disciplines:            make([]dto.TaughtDisciplineResponse, 0, len(disciplines)),
	}
	for _, q := range inst.Qualifications {
		resp.Qualifications = append(resp.Qualifications, dto.CredentialResponse{Name: q.CourseName, Year: q.Year})
	}
	for _, r := range inst.Retrainings {
		resp.Retrainings = append(resp.Retrainings, dto.CredentialResponse{Name: r.ProgramName, Year: r.Year})
	}
	for i := range programs {
		resp.Programs = append(resp.Programs, toProgramResponse(&programs[i], 0))
	}
	for _, d := range disciplines {
		td := dto.TaughtDisciplineResponse{
			ID:         d.DisciplineID,
			Title:      d.Title,
			ProgramID:  d.ProgramID,
			TotalHours: d.TotalHours,
		}
		if d.Program != nil {
			td.ProgramCode = d.Program.ShortCode
		}
		resp.Disciplines = append(resp.Disciplines, td)
	}
	return resp, nil
}
