package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/internal/dto"
	"github.com/kama950028/KadrSp/internal/model"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
)

func setupTestProgramService() (ProgramService, *memStore, *repository.Repository) {
	store := newMemStore()
	repo := newMockRepository(store)
	logger := zap.NewNop()
	svc := NewProgramService(repo, NewReconciler(normalize.DefaultPolicy(), logger), logger)
	svc.(*programService).now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }
	return svc, store, repo
}

// ── Create ──

func TestProgramService_Create(t *testing.T) {
	svc, _, _ := setupTestProgramService()

	p, err := svc.Create(context.Background(), &dto.CreateProgramRequest{Name: " 09.04.04 Магистратура (Архитектура и разработка ПО) "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ShortCode != "09.04.04_АРП_2026" {
		t.Errorf("unexpected short code %q", p.ShortCode)
	}
	if p.EnrollmentYear != 2026 {
		t.Errorf("year should default to the current one, got %d", p.EnrollmentYear)
	}
	if p.Name != "09.04.04 Магистратура (Архитектура и разработка ПО)" {
		t.Errorf("name should be cleaned, got %q", p.Name)
	}
}

func TestProgramService_Create_Duplicate(t *testing.T) {
	svc, _, _ := setupTestProgramService()
	req := &dto.CreateProgramRequest{Name: "Программная инженерия", EnrollmentYear: 2024}
	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), req); !errors.Is(err, ErrProgramNameExists) {
		t.Errorf("expected ErrProgramNameExists, got %v", err)
	}
}

func TestProgramService_Create_SameInitials(t *testing.T) {
	svc, _, _ := setupTestProgramService()
	ctx := context.Background()
	if _, err := svc.Create(ctx, &dto.CreateProgramRequest{Name: "Программная инженерия", EnrollmentYear: 2024}); err != nil {
		t.Fatal(err)
	}
	p, err := svc.Create(ctx, &dto.CreateProgramRequest{Name: "Прикладная информатика", EnrollmentYear: 2024})
	if err != nil {
		t.Fatal(err)
	}
	if p.ShortCode != "ПИ_2024_1" {
		t.Errorf("expected suffixed code, got %q", p.ShortCode)
	}
}

func TestProgramService_Create_Invalid(t *testing.T) {
	svc, _, _ := setupTestProgramService()
	for _, name := range []string{"   ", "и в на"} {
		if _, err := svc.Create(context.Background(), &dto.CreateProgramRequest{Name: name}); !errors.Is(err, ErrProgramNameInvalid) {
			t.Errorf("%q: expected ErrProgramNameInvalid, got %v", name, err)
		}
	}
}

// ── Read ──

func TestProgramService_ListAndCurriculum(t *testing.T) {
	svc, _, repo := setupTestProgramService()
	ctx := context.Background()
	p := seedProgram(t, repo, peName, peCode, 2024)
	seedProgram(t, repo, "Прикладная информатика", "ПИ_2024", 2024)

	ds := []model.Discipline{
		{Title: "Базы данных", Department: "Кафедра ИС", Semesters: model.IntArray{5}, LectureHours: 36, TotalHours: 72},
		{Title: "Практика", Department: "Кафедра ИС", PracticeHours: 108, TotalHours: 108},
	}
	if err := repo.Discipline.ReplaceByProgram(ctx, p.ProgramID, ds); err != nil {
		t.Fatal(err)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 programs, got %d", len(list))
	}
	for _, item := range list {
		want := int64(0)
		if item.ID == p.ProgramID {
			want = 2
		}
		if item.DisciplineCount != want {
			t.Errorf("%s: expected %d disciplines, got %d", item.ShortCode, want, item.DisciplineCount)
		}
	}

	cur, err := svc.Curriculum(ctx, p.ProgramID)
	if err != nil {
		t.Fatal(err)
	}
	if len(cur.Disciplines) != 2 || cur.Program.DisciplineCount != 2 {
		t.Fatalf("unexpected curriculum %+v", cur)
	}
	if cur.Disciplines[1].Semesters != nil {
		t.Error("unspecified semesters should stay null")
	}

	if _, err := svc.Curriculum(ctx, 999); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("expected ErrProgramNotFound, got %v", err)
	}
}

func TestProgramService_Departments(t *testing.T) {
	svc, _, repo := setupTestProgramService()
	ctx := context.Background()
	p := seedProgram(t, repo, peName, peCode, 2024)
	ds := []model.Discipline{
		{Title: "Базы данных", Department: "Кафедра ИС", LectureHours: 36.5, ExamHours: 36, TotalHours: 72.5},
		{Title: "Сети", Department: "Кафедра ИС", LectureHours: 18.25, TestHours: 4, TotalHours: 22.25},
		{Title: "Алгоритмы", Department: "Кафедра ПМ", PracticeHours: 10.1, TotalHours: 10.1},
	}
	if err := repo.Discipline.ReplaceByProgram(ctx, p.ProgramID, ds); err != nil {
		t.Fatal(err)
	}

	sum, err := svc.Departments(ctx, p.ProgramID)
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Departments) != 2 || sum.Departments[0].Department != "Кафедра ИС" {
		t.Fatalf("unexpected departments %+v", sum.Departments)
	}
	is := sum.Departments[0]
	if is.DisciplineCount != 2 || is.LectureHours != 54.75 || is.ControlHours != 40 || is.TotalHours != 94.75 {
		t.Errorf("unexpected aggregate %+v", is)
	}
	if sum.TotalHours != 104.85 {
		t.Errorf("expected 104.85 total, got %v", sum.TotalHours)
	}
}

// ── Delete ──

func TestProgramService_Delete(t *testing.T) {
	svc, store, repo := setupTestProgramService()
	ctx := context.Background()
	p := seedProgram(t, repo, peName, peCode, 2024)
	seedDisciplines(t, repo, p.ProgramID, "Базы данных")

	if err := svc.Delete(ctx, p.ProgramID); err != nil {
		t.Fatal(err)
	}
	if len(store.programs) != 0 || len(store.disciplines) != 0 {
		t.Error("program and its disciplines should be gone")
	}
	if err := svc.Delete(ctx, p.ProgramID); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("expected ErrProgramNotFound, got %v", err)
	}
}
