package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/config"
	"github.com/kama950028/KadrSp/internal/document"
	"github.com/kama950028/KadrSp/internal/dto"
	"github.com/kama950028/KadrSp/internal/model"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
	"github.com/kama950028/KadrSp/internal/schema"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
	"github.com/kama950028/KadrSp/pkg/tempfile"
	"github.com/kama950028/KadrSp/pkg/worker"
)

// ── Ingestion errors ──

var (
	ErrRunNotFound = errors.New("import run not found")
	ErrNotDocx     = &pkgerrors.MalformedDocumentError{
		Reason: "staffing list must be a word-processor document",
		Advice: "upload the staffing table as .docx",
	}
	ErrNotXlsx = &pkgerrors.MalformedDocumentError{
		Reason: "curriculum must be a spreadsheet",
		Advice: "upload the curriculum plan as .xlsx",
	}
)

// ImportService document ingestion entry points
type ImportService interface {
	// ImportCurriculum ingests a curriculum workbook for the program named by
	// its filename and returns once the run is committed or failed.
	ImportCurriculum(ctx context.Context, file *tempfile.File) (*dto.ImportSummary, error)
	// SubmitInstructors records a run and ingests the staffing document in the
	// background. Only the format check happens before it returns.
	SubmitInstructors(ctx context.Context, file *tempfile.File, req *dto.InstructorImportRequest) (*dto.ImportAccepted, error)
	GetRun(ctx context.Context, id string) (*dto.ImportRunResponse, error)
	ListRuns(ctx context.Context, req *dto.PaginationRequest) ([]dto.ImportRunResponse, int64, error)
}

// Releaser frees a stored upload; *tempfile.Store satisfies it
type Releaser interface {
	Release(path string)
}

// Dispatcher runs a task after the triggering request returns; *worker.Pool satisfies it
type Dispatcher interface {
	Go(name string, task worker.Task) error
}

// Recorder ingestion metrics; *metrics.Metrics satisfies it
type Recorder interface {
	ObserveRun(kind, result string, took time.Duration)
	AddRecords(kind, outcome string, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRun(string, string, time.Duration) {}
func (nopRecorder) AddRecords(string, string, int)           {}

type importService struct {
	repo       *repository.Repository
	cfg        config.IngestConfig
	policy     normalize.Policy
	reconciler *Reconciler
	locks      KeyLocker
	files      Releaser
	dispatcher Dispatcher
	metrics    Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// NewImportService creates an ImportService. A nil recorder disables metrics.
func NewImportService(
	repo *repository.Repository,
	cfg config.IngestConfig,
	reconciler *Reconciler,
	locks KeyLocker,
	files Releaser,
	dispatcher Dispatcher,
	metrics Recorder,
	logger *zap.Logger,
) ImportService {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &importService{
		repo:       repo,
		cfg:        cfg,
		policy:     normalize.NewPolicy(cfg),
		reconciler: reconciler,
		locks:      locks,
		files:      files,
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// ═══════════════════════════════════════════════════════════
// Run bookkeeping
// ═══════════════════════════════════════════════════════════

type runState struct {
	run     *model.ImportRun
	started time.Time
	logger  *zap.Logger
}

func (s *importService) startRun(ctx context.Context, kind, filename string) (*runState, error) {
	run := &model.ImportRun{
		ImportRunID: uuid.NewString(),
		Kind:        kind,
		Filename:    filename,
		Stage:       model.StageReceived,
		Status:      model.RunStatusPending,
	}
	if err := s.repo.ImportRun.Create(ctx, run); err != nil {
		s.logger.Error("create import run failed", zap.Error(err))
		return nil, pkgerrors.Storage("create import run", err)
	}
	st := &runState{
		run:     run,
		started: s.now(),
		logger:  s.logger.With(zap.String("run_id", run.ImportRunID), zap.String("kind", kind)),
	}
	st.logger.Info("import received", zap.String("filename", filename))
	return st, nil
}

func (s *importService) advance(ctx context.Context, st *runState, stage string) {
	st.run.Stage = stage
	s.saveRun(ctx, st)
	st.logger.Info("import stage", zap.String("stage", stage))
}

func (s *importService) saveRun(ctx context.Context, st *runState) {
	// bookkeeping must land even when the run's context was cancelled
	if err := s.repo.ImportRun.Save(context.WithoutCancel(ctx), st.run); err != nil {
		st.logger.Warn("save import run failed", zap.Error(err))
	}
}

func (s *importService) fail(ctx context.Context, st *runState, err error) {
	now := s.now()
	st.run.Stage = model.StageFailed
	st.run.Status = model.RunStatusError
	st.run.ErrorKind = string(pkgerrors.KindOf(err))
	st.run.ErrorMessage = err.Error()
	st.run.Advice = pkgerrors.Advice(err)
	st.run.FinishedAt = &now
	s.saveRun(ctx, st)
	s.metrics.ObserveRun(st.run.Kind, model.StageFailed, now.Sub(st.started))

	if pkgerrors.IsStructural(err) {
		st.logger.Warn("import rejected", zap.String("error_kind", st.run.ErrorKind), zap.Error(err))
	} else {
		st.logger.Error("import failed", zap.Error(err))
	}
}

func (s *importService) commit(ctx context.Context, st *runState) {
	now := s.now()
	st.run.Stage = model.StageCommitted
	st.run.Status = model.RunStatusSuccess
	st.run.FinishedAt = &now
	s.saveRun(ctx, st)

	s.metrics.ObserveRun(st.run.Kind, model.StageCommitted, now.Sub(st.started))
	s.metrics.AddRecords(st.run.Kind, "created", st.run.Created)
	s.metrics.AddRecords(st.run.Kind, "updated", st.run.Updated)
	s.metrics.AddRecords(st.run.Kind, "skipped", st.run.Skipped)
	st.logger.Info("import committed",
		zap.Int("created", st.run.Created),
		zap.Int("updated", st.run.Updated),
		zap.Int("skipped", st.run.Skipped),
		zap.Duration("took", now.Sub(st.started)))
}

// ═══════════════════════════════════════════════════════════
// Curriculum
// ═══════════════════════════════════════════════════════════

func (s *importService) ImportCurriculum(ctx context.Context, file *tempfile.File) (*dto.ImportSummary, error) {
	defer s.files.Release(file.Path)

	st, err := s.startRun(ctx, model.ImportKindCurriculum, file.Filename)
	if err != nil {
		return nil, err
	}
	summary, err := s.importCurriculum(ctx, st, file)
	if err != nil {
		s.fail(ctx, st, err)
		return nil, err
	}
	return summary, nil
}

func (s *importService) importCurriculum(ctx context.Context, st *runState, file *tempfile.File) (*dto.ImportSummary, error) {
	name, err := normalize.ParseCurriculumFilename(file.Filename)
	if err != nil {
		return nil, err
	}
	program, err := s.lookupProgram(ctx, name)
	if err != nil {
		return nil, err
	}
	st.run.ProgramID = &program.ProgramID
	st.run.ProgramName = program.Name

	// received → parsed
	summarySheet, detailSheet, err := s.readCurriculum(file)
	if err != nil {
		return nil, err
	}
	s.advance(ctx, st, model.StageParsed)

	// parsed → resolved
	summaryMap, err := schema.Resolve(summarySheet.Headers, schema.CurriculumSummary)
	if err != nil {
		return nil, err
	}
	detailMap, err := schema.Resolve(detailSheet.Headers, schema.CurriculumDetail)
	if err != nil {
		return nil, err
	}
	s.advance(ctx, st, model.StageResolved)

	// resolved → normalized
	rows, skipped := s.joinCurriculum(st, summarySheet, summaryMap, detailSheet, detailMap)
	results, rowErrs, err := normalizeAll(ctx, s.workers(), rows, s.policy.Discipline)
	if err != nil {
		return nil, err
	}
	disciplines := make([]model.Discipline, 0, len(results))
	for i, d := range results {
		if rowErrs[i] != nil {
			st.logger.Warn("curriculum row skipped",
				zap.Int("row", rows[i].Row),
				zap.String("title", rows[i].Title),
				zap.Error(rowErrs[i]))
			skipped++
			continue
		}
		if d == nil {
			st.logger.Debug("placeholder row dropped", zap.Int("row", rows[i].Row), zap.String("title", rows[i].Title))
			continue
		}
		disciplines = append(disciplines, *d)
	}
	s.advance(ctx, st, model.StageNormalized)

	// normalized → reconciled → committed, one transaction for the program
	unlock, err := s.locks.Lock(ctx, "program:"+strconv.FormatUint(uint64(program.ProgramID), 10))
	if err != nil {
		return nil, pkgerrors.Storage("lock program", err)
	}
	defer unlock()

	relinked := 0
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Discipline.ReplaceByProgram(ctx, program.ProgramID, disciplines); err != nil {
			return pkgerrors.Storage("replace disciplines", err)
		}
		if s.cfg.RelinkAfterCurriculum {
			n, err := s.reconciler.RelinkProgram(ctx, tx, program.ProgramID)
			if err != nil {
				return err
			}
			relinked = n
		}
		s.advance(ctx, st, model.StageReconciled)
		return nil
	})
	if err != nil {
		return nil, err
	}

	titles := make([]string, 0, len(disciplines))
	depts := make([]string, 0, len(disciplines))
	for _, d := range disciplines {
		titles = append(titles, d.Title)
		depts = append(depts, d.Department)
	}
	departments := distinctSorted(depts)

	st.run.Created = len(disciplines)
	st.run.Skipped = skipped
	st.run.Departments = strings.Join(departments, "\n")
	s.commit(ctx, st)
	st.logger.Info("curriculum replaced",
		zap.Uint("program_id", program.ProgramID),
		zap.Int("disciplines", len(disciplines)),
		zap.Int("relinked", relinked))

	return &dto.ImportSummary{
		RunID:         st.run.ImportRunID,
		Status:        model.RunStatusSuccess,
		ImportedCount: len(disciplines),
		ProgramID:     program.ProgramID,
		ProgramName:   program.Name,
		Disciplines:   preview(titles, s.cfg.PreviewTitles),
		Departments:   departments,
		Created:       len(disciplines),
		Skipped:       skipped,
	}, nil
}

// lookupProgram resolves the filename to a program: the whole stem as a short
// code first, then the code prefix, preferring a program of the filename's year.
func (s *importService) lookupProgram(ctx context.Context, name normalize.CurriculumFile) (*model.Program, error) {
	p, err := s.repo.Program.GetByShortCode(ctx, name.Stem)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Storage("find program", err)
	}

	matches, err := s.repo.Program.ListByCodePrefix(ctx, name.Prefix)
	if err != nil {
		return nil, pkgerrors.Storage("find program", err)
	}
	if name.Year > 0 {
		var sameYear []model.Program
		for _, m := range matches {
			if m.EnrollmentYear == name.Year {
				sameYear = append(sameYear, m)
			}
		}
		if len(sameYear) > 0 {
			matches = sameYear
		}
	}
	if len(matches) > 0 {
		if len(matches) > 1 {
			s.logger.Warn("several programs share the filename prefix, using the newest",
				zap.String("prefix", name.Prefix),
				zap.String("short_code", matches[0].ShortCode))
		}
		return &matches[0], nil
	}

	all, err := s.repo.Program.List(ctx)
	if err != nil {
		return nil, pkgerrors.Storage("list programs", err)
	}
	codes := make([]string, 0, len(all))
	for _, p := range all {
		codes = append(codes, p.ShortCode)
	}
	return nil, &pkgerrors.ProgramNotFoundError{Prefix: name.Prefix, Available: codes}
}

func (s *importService) readCurriculum(file *tempfile.File) (*document.Table, *document.Table, error) {
	format, err := document.DetectFormat(file.Filename)
	if err != nil {
		return nil, nil, err
	}
	if format != document.FormatXlsx {
		return nil, nil, ErrNotXlsx
	}

	f, err := file.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	wb, err := document.OpenWorkbook(f)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	summaryName, err := wb.RequireSheet("summary", s.cfg.SummarySheetNames)
	if err != nil {
		return nil, nil, err
	}
	detailName, err := wb.RequireSheet("detail", s.cfg.DetailSheetNames)
	if err != nil {
		return nil, nil, err
	}

	summary, err := wb.ReadSheet(summaryName, document.Options{
		HeaderScanRows: s.cfg.HeaderScanRows,
		Signature:      schema.CurriculumSummary.Signature(schema.FieldTitle),
	})
	if err != nil {
		return nil, nil, err
	}
	detail, err := wb.ReadSheet(detailName, document.Options{
		HeaderScanRows: s.cfg.HeaderScanRows,
		Signature:      schema.CurriculumDetail.Signature(schema.FieldTitle),
	})
	if err != nil {
		return nil, nil, err
	}
	return summary, detail, nil
}

// joinCurriculum pairs summary rows (title, department) with detail rows
// (control forms, hours) by normalized title. Rows excluded from the plan on
// either sheet are ignored; summary titles without a detail row and repeated
// titles are skipped.
func (s *importService) joinCurriculum(st *runState, summary *document.Table, sm *schema.Mapping, detail *document.Table, dm *schema.Mapping) ([]normalize.CurriculumRow, int) {
	byTitle := make(map[string]document.Row, len(detail.Rows))
	excluded := make(map[string]struct{})
	for _, r := range detail.Rows {
		key := normalize.TitleKey(dm.Value(r.Cells, schema.FieldTitle))
		if key == "" {
			continue
		}
		if excludedFromPlan(dm, r) {
			excluded[key] = struct{}{}
			continue
		}
		if _, dup := byTitle[key]; !dup {
			byTitle[key] = r
		}
	}

	var (
		rows    []normalize.CurriculumRow
		skipped int
		seen    = make(map[string]struct{}, len(summary.Rows))
	)
	for _, r := range summary.Rows {
		if excludedFromPlan(sm, r) {
			continue
		}
		title := sm.Value(r.Cells, schema.FieldTitle)
		key := normalize.TitleKey(title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			st.logger.Warn("duplicate discipline title skipped", zap.Int("row", r.Index), zap.String("title", title))
			skipped++
			continue
		}
		seen[key] = struct{}{}

		d, ok := byTitle[key]
		if !ok {
			_, off := excluded[key]
			if !off && !s.policy.IsPlaceholder(title) {
				st.logger.Warn("discipline has no detail row", zap.Int("row", r.Index), zap.String("title", title))
				skipped++
			}
			continue
		}

		dept := sm.Value(r.Cells, schema.FieldDepartment)
		if dept == "" {
			dept = dm.Value(d.Cells, schema.FieldDepartment)
		}
		rows = append(rows, normalize.CurriculumRow{
			Row:                r.Index,
			Title:              title,
			Department:         dept,
			Lecture:            dm.Values(d.Cells, schema.FieldLecture),
			Practice:           dm.Values(d.Cells, schema.FieldPractice),
			Lab:                dm.Values(d.Cells, schema.FieldLab),
			Control:            dm.Values(d.Cells, schema.FieldControlHours),
			ExamFlags:          dm.Values(d.Cells, schema.FieldExamFlag),
			PassFlags:          dm.Values(d.Cells, schema.FieldPassFlag),
			CourseProjectFlags: dm.Values(d.Cells, schema.FieldCourseProjectFlag),
		})
	}
	return rows, skipped
}

func excludedFromPlan(m *schema.Mapping, r document.Row) bool {
	return m.Has(schema.FieldCountInPlan) && m.Value(r.Cells, schema.FieldCountInPlan) == "-"
}

// ═══════════════════════════════════════════════════════════
// Instructors
// ═══════════════════════════════════════════════════════════

func (s *importService) SubmitInstructors(ctx context.Context, file *tempfile.File, req *dto.InstructorImportRequest) (*dto.ImportAccepted, error) {
	dispatched := false
	defer func() {
		if !dispatched {
			s.files.Release(file.Path)
		}
	}()

	format, err := document.DetectFormat(file.Filename)
	if err != nil {
		return nil, err
	}
	if format != document.FormatDocx {
		return nil, ErrNotDocx
	}

	st, err := s.startRun(ctx, model.ImportKindInstructors, file.Filename)
	if err != nil {
		return nil, err
	}

	year := req.EnrollmentYear
	if year == 0 {
		year = normalize.YearIn(file.Filename)
	}
	if year == 0 {
		year = s.now().Year()
	}

	err = s.dispatcher.Go("import instructors "+st.run.ImportRunID, func(bctx context.Context) error {
		defer s.files.Release(file.Path)
		if err := s.importInstructors(bctx, st, file, year); err != nil {
			s.fail(bctx, st, err)
			return err
		}
		return nil
	})
	if err != nil {
		s.fail(ctx, st, err)
		return nil, err
	}
	dispatched = true

	return &dto.ImportAccepted{RunID: st.run.ImportRunID, Status: model.RunStatusPending}, nil
}

func (s *importService) importInstructors(ctx context.Context, st *runState, file *tempfile.File, year int) error {
	// received → parsed
	table, err := s.readInstructors(file)
	if err != nil {
		return err
	}
	s.advance(ctx, st, model.StageParsed)

	// parsed → resolved
	mapping, err := schema.Resolve(table.Headers, schema.Instructors)
	if err != nil {
		return err
	}
	s.advance(ctx, st, model.StageResolved)

	// resolved → normalized
	rows := make([]normalize.InstructorRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		if blank(r.Cells) {
			continue
		}
		rows = append(rows, instructorRow(mapping, r))
	}
	records, rowErrs, err := normalizeAll(ctx, s.workers(), rows, s.policy.Instructor)
	if err != nil {
		return err
	}
	skipped := 0
	s.advance(ctx, st, model.StageNormalized)

	// normalized → reconciled, one transaction per record
	cache := newRunCache()
	var depts []string
	for i, rec := range records {
		if rowErrs[i] != nil {
			st.logger.Warn("instructor row skipped", zap.Int("row", rows[i].Row), zap.Error(rowErrs[i]))
			skipped++
			continue
		}
		out, err := s.reconcileInstructor(ctx, cache, rec, year)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			st.logger.Warn("instructor record rolled back",
				zap.Int("row", rec.Row),
				zap.String("full_name", rec.Instructor.FullName),
				zap.Error(err))
			skipped++
			continue
		}
		if out.created {
			st.run.Created++
		} else {
			st.run.Updated++
		}
		depts = append(depts, out.departments...)
	}
	st.run.Skipped = skipped
	st.run.Departments = strings.Join(distinctSorted(depts), "\n")
	s.advance(ctx, st, model.StageReconciled)

	s.commit(ctx, st)
	return nil
}

type instructorOutcome struct {
	created     bool
	departments []string
}

// reconcileInstructor writes one record in its own transaction while holding
// the instructor's name lock.
func (s *importService) reconcileInstructor(ctx context.Context, cache *runCache, rec *normalize.InstructorRecord, year int) (*instructorOutcome, error) {
	unlock, err := s.locks.Lock(ctx, "instructor:"+rec.Instructor.NameKey)
	if err != nil {
		return nil, pkgerrors.Storage("lock instructor", err)
	}
	defer unlock()

	staged := cache.fork()
	out := &instructorOutcome{}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		inst := rec.Instructor
		id, created, err := s.reconciler.UpsertInstructor(ctx, tx, staged, &inst)
		if err != nil {
			return err
		}
		out.created = created

		quals := append([]model.Qualification(nil), rec.Qualifications...)
		retrainings := append([]model.Retraining(nil), rec.Retrainings...)
		if err := tx.Instructor.ReplaceCredentials(ctx, id, quals, retrainings); err != nil {
			return pkgerrors.Storage("replace credentials", err)
		}

		programIDs := make([]uint, 0, len(rec.Programs))
		for _, name := range rec.Programs {
			p, _, err := s.reconciler.EnsureProgram(ctx, tx, staged, name, year)
			if err != nil {
				if pkgerrors.KindOf(err) == pkgerrors.KindRecordNormalization {
					s.logger.Warn("program name ignored", zap.String("program", name), zap.Error(err))
					continue
				}
				return err
			}
			if _, err := s.reconciler.LinkProgram(ctx, tx, id, p.ProgramID); err != nil {
				return err
			}
			programIDs = append(programIDs, p.ProgramID)
		}

		matched, _, err := s.reconciler.LinkDisciplines(ctx, tx, staged, id, programIDs, rec.Disciplines)
		if err != nil {
			return err
		}
		for _, d := range matched {
			out.departments = append(out.departments, d.Department)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	staged.merge()
	return out, nil
}

func (s *importService) readInstructors(file *tempfile.File) (*document.Table, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat upload: %w", err)
	}
	return document.ReadDocx(f, info.Size(), document.Options{
		HeaderScanRows: s.cfg.HeaderScanRows,
		Signature:      schema.Instructors.Signature(schema.FieldFullName),
	})
}

func instructorRow(m *schema.Mapping, r document.Row) normalize.InstructorRow {
	v := func(f schema.Field) string { return m.Value(r.Cells, f) }
	return normalize.InstructorRow{
		Row:                    r.Index,
		FullName:               v(schema.FieldFullName),
		Position:               v(schema.FieldPosition),
		EducationLevel:         v(schema.FieldEducationLevel),
		Specialty:              v(schema.FieldSpecialty),
		Degree:                 v(schema.FieldDegree),
		AcademicTitle:          v(schema.FieldAcademicTitle),
		TotalExperience:        v(schema.FieldTotalExperience),
		TeachingExperience:     v(schema.FieldTeachingExperience),
		ProfessionalExperience: v(schema.FieldProfessionalExperience),
		Disciplines:            v(schema.FieldDisciplines),
		Qualifications:         v(schema.FieldQualifications),
		Retraining:             v(schema.FieldRetraining),
		Programs:               v(schema.FieldPrograms),
	}
}

// ═══════════════════════════════════════════════════════════
// Runs
// ═══════════════════════════════════════════════════════════

func (s *importService) GetRun(ctx context.Context, id string) (*dto.ImportRunResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrRunNotFound
	}
	run, err := s.repo.ImportRun.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		s.logger.Error("find import run failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toRunResponse(run)
	return &resp, nil
}

func (s *importService) ListRuns(ctx context.Context, req *dto.PaginationRequest) ([]dto.ImportRunResponse, int64, error) {
	runs, total, err := s.repo.ImportRun.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list import runs failed", zap.Error(err))
		return nil, 0, err
	}
	out := make([]dto.ImportRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, toRunResponse(&runs[i]))
	}
	return out, total, nil
}

func toRunResponse(run *model.ImportRun) dto.ImportRunResponse {
	resp := dto.ImportRunResponse{
		RunID:        run.ImportRunID,
		Kind:         run.Kind,
		Filename:     run.Filename,
		Stage:        run.Stage,
		Status:       run.Status,
		ProgramID:    run.ProgramID,
		ProgramName:  run.ProgramName,
		Created:      run.Created,
		Updated:      run.Updated,
		Skipped:      run.Skipped,
		Departments:  []string{},
		ErrorKind:    run.ErrorKind,
		ErrorMessage: run.ErrorMessage,
		Advice:       run.Advice,
		CreatedAt:    run.CreatedAt.Format(time.RFC3339),
	}
	if run.Departments != "" {
		resp.Departments = strings.Split(run.Departments, "\n")
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return resp
}

// ── Helpers ──

func (s *importService) workers() int {
	if s.cfg.NormalizeWorkers <= 0 {
		return 1
	}
	return s.cfg.NormalizeWorkers
}

// preview the first n titles, with "..." when more follow
func preview(titles []string, n int) []string {
	if n <= 0 || len(titles) <= n {
		return titles
	}
	out := append([]string(nil), titles[:n]...)
	return append(out, "...")
}

func distinctSorted(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
