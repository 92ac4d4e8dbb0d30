package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/dto"
	"github.com/kama950028/KadrSp/internal/model"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

// ── Program errors ──

var (
	ErrProgramNotFound    = errors.New("program not found")
	ErrProgramNameExists  = errors.New("program name already exists")
	ErrProgramNameInvalid = errors.New("cannot derive a short code from the program name")
)

// ProgramService programs and their curricula
type ProgramService interface {
	List(ctx context.Context) ([]dto.ProgramResponse, error)
	Create(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error)
	Curriculum(ctx context.Context, id uint) (*dto.CurriculumResponse, error)
	// Departments hour totals per owning department
	Departments(ctx context.Context, id uint) (*dto.DepartmentSummaryResponse, error)
	// Delete removes the program with its disciplines and their links
	Delete(ctx context.Context, id uint) error
}

type programService struct {
	repo       *repository.Repository
	reconciler *Reconciler
	logger     *zap.Logger
	now        func() time.Time
}

// NewProgramService creates a ProgramService
func NewProgramService(repo *repository.Repository, reconciler *Reconciler, logger *zap.Logger) ProgramService {
	return &programService{repo: repo, reconciler: reconciler, logger: logger, now: time.Now}
}

// ────────────────────── List ──────────────────────

func (s *programService) List(ctx context.Context) ([]dto.ProgramResponse, error) {
	programs, err := s.repo.Program.List(ctx)
	if err != nil {
		s.logger.Error("list programs failed", zap.Error(err))
		return nil, err
	}

	ids := make([]uint, 0, len(programs))
	for _, p := range programs {
		ids = append(ids, p.ProgramID)
	}
	counts, err := s.repo.Discipline.CountByPrograms(ctx, ids)
	if err != nil {
		s.logger.Warn("count disciplines failed, reporting 0", zap.Error(err))
		counts = make(map[uint]int64)
	}

	out := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		out = append(out, toProgramResponse(&programs[i], counts[programs[i].ProgramID]))
	}
	return out, nil
}

// ────────────────────── Create ──────────────────────

func (s *programService) Create(ctx context.Context, req *dto.CreateProgramRequest) (*dto.ProgramResponse, error) {
	name := normalize.CleanText(req.Name)
	if name == "" {
		return nil, ErrProgramNameInvalid
	}
	year := req.EnrollmentYear
	if year == 0 {
		year = s.now().Year()
	}

	if _, err := s.repo.Program.GetByName(ctx, name); err == nil {
		return nil, ErrProgramNameExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("find program failed", zap.Error(err))
		return nil, err
	}

	p, created, err := s.reconciler.CreateProgram(ctx, s.repo, name, year)
	if err != nil {
		if pkgerrors.KindOf(err) == pkgerrors.KindRecordNormalization {
			return nil, ErrProgramNameInvalid
		}
		s.logger.Error("create program failed", zap.Error(err))
		return nil, err
	}
	if !created {
		return nil, ErrProgramNameExists
	}

	resp := toProgramResponse(p, 0)
	return &resp, nil
}

// ────────────────────── Curriculum ──────────────────────

func (s *programService) Curriculum(ctx context.Context, id uint) (*dto.CurriculumResponse, error) {
	program, err := s.getProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	disciplines, err := s.repo.Discipline.ListByProgram(ctx, id)
	if err != nil {
		s.logger.Error("list disciplines failed", zap.Uint("program_id", id), zap.Error(err))
		return nil, err
	}

	resp := &dto.CurriculumResponse{
		Program:     toProgramResponse(program, int64(len(disciplines))),
		Disciplines: make([]dto.DisciplineResponse, 0, len(disciplines)),
	}
	for i := range disciplines {
		resp.Disciplines = append(resp.Disciplines, toDisciplineResponse(&disciplines[i]))
	}
	return resp, nil
}

// ────────────────────── Departments ──────────────────────

func (s *programService) Departments(ctx context.Context, id uint) (*dto.DepartmentSummaryResponse, error) {
	program, err := s.getProgram(ctx, id)
	if err != nil {
		return nil, err
	}
	disciplines, err := s.repo.Discipline.ListByProgram(ctx, id)
	if err != nil {
		s.logger.Error("list disciplines failed", zap.Uint("program_id", id), zap.Error(err))
		return nil, err
	}

	byDept := make(map[string]*dto.DepartmentHours)
	totals := make([]float64, 0, len(disciplines))
	for _, d := range disciplines {
		h, ok := byDept[d.Department]
		if !ok {
			h = &dto.DepartmentHours{Department: d.Department}
			byDept[d.Department] = h
		}
		h.DisciplineCount++
		h.LectureHours = normalize.Sum(h.LectureHours, d.LectureHours)
		h.PracticeHours = normalize.Sum(h.PracticeHours, d.PracticeHours)
		h.LabHours = normalize.Sum(h.LabHours, d.LabHours)
		h.ControlHours = normalize.Sum(h.ControlHours, d.ExamHours, d.TestHours, d.CourseProjectHours, d.FinalWorkHours)
		h.TotalHours = normalize.Sum(h.TotalHours, d.TotalHours)
		totals = append(totals, d.TotalHours)
	}

	resp := &dto.DepartmentSummaryResponse{
		ProgramID:   program.ProgramID,
		ProgramName: program.Name,
		Departments: make([]dto.DepartmentHours, 0, len(byDept)),
		TotalHours:  normalize.Sum(totals...),
	}
	for _, h := range byDept {
		resp.Departments = append(resp.Departments, *h)
	}
	sort.Slice(resp.Departments, func(i, j int) bool {
		return resp.Departments[i].Department < resp.Departments[j].Department
	})
	return resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *programService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Program.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		s.logger.Error("delete program failed", zap.Uint("program_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("program deleted", zap.Uint("program_id", id))
	return nil
}

// ── Helpers ──

func (s *programService) getProgram(ctx context.Context, id uint) (*model.Program, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("find program failed", zap.Uint("program_id", id), zap.Error(err))
		return nil, err
	}
	return program, nil
}

func toProgramResponse(p *model.Program, disciplines int64) dto.ProgramResponse {
	return dto.ProgramResponse{
		ID:              p.ProgramID,
		Name:            p.Name,
		ShortCode:       p.ShortCode,
		EnrollmentYear:  p.EnrollmentYear,
		DisciplineCount: disciplines,
	}
}

func toDisciplineResponse(d *model.Discipline) dto.DisciplineResponse {
	var semesters []int
	if d.Semesters.Specified() {
		semesters = []int(d.Semesters)
	}
	return dto.DisciplineResponse{
		ID:                 d.DisciplineID,
		Title:              d.Title,
		Department:         d.Department,
		Semesters:          semesters,
		LectureHours:       d.LectureHours,
		PracticeHours:      d.PracticeHours,
		LabHours:           d.LabHours,
		ExamHours:          d.ExamHours,
		TestHours:          d.TestHours,
		CourseProjectHours: d.CourseProjectHours,
		FinalWorkHours:     d.FinalWorkHours,
		TotalHours:         d.TotalHours,
	}
}
