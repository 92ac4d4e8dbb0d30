package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
	"github.com/kama950028/KadrSp/internal/repository"
)

// ── In-memory store shared by the mock repositories ──

type memStore struct {
	mu sync.Mutex

	nextID             uint
	instructors        map[uint]*model.Instructor
	programs           map[uint]*model.Program
	disciplines        map[uint]*model.Discipline
	links              map[uint]*model.TaughtLink
	instructorPrograms map[[2]uint]bool
	quals              map[uint][]model.Qualification
	retrainings        map[uint][]model.Retraining
	runs               map[string]*model.ImportRun

	// beforeInstructorCreate runs just before an insert, e.g. to simulate a
	// concurrent run storing the same name first
	beforeInstructorCreate func(s *memStore, inst *model.Instructor)
}

func newMemStore() *memStore {
	return &memStore{
		instructors:        make(map[uint]*model.Instructor),
		programs:           make(map[uint]*model.Program),
		disciplines:        make(map[uint]*model.Discipline),
		links:              make(map[uint]*model.TaughtLink),
		instructorPrograms: make(map[[2]uint]bool),
		quals:              make(map[uint][]model.Qualification),
		retrainings:        make(map[uint][]model.Retraining),
		runs:               make(map[string]*model.ImportRun),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

// insertInstructor stores a row directly, bypassing the mock repository
func (s *memStore) insertInstructor(inst *model.Instructor) {
	inst.InstructorID = s.id()
	cp := *inst
	s.instructors[cp.InstructorID] = &cp
}

func (s *memStore) disciplinesOf(programID uint) []model.Discipline {
	var out []model.Discipline
	for _, d := range s.disciplines {
		if d.ProgramID == programID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisciplineID < out[j].DisciplineID })
	return out
}

func (s *memStore) linksOf(instructorID uint) []model.TaughtLink {
	var out []model.TaughtLink
	for _, l := range s.links {
		if l.InstructorID == instructorID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisciplineID < out[j].DisciplineID })
	return out
}

func (s *memStore) deleteDisciplinesOf(programID uint) {
	for id, d := range s.disciplines {
		if d.ProgramID != programID {
			continue
		}
		for lid, l := range s.links {
			if l.DisciplineID == id {
				delete(s.links, lid)
			}
		}
		delete(s.disciplines, id)
	}
}

func newMockRepository(s *memStore) *repository.Repository {
	return repository.Compose(&memTransactor{s},
		&mockInstructorRepo{s},
		&mockProgramRepo{s},
		&mockDisciplineRepo{s},
		&mockTaughtLinkRepo{s},
		&mockImportRunRepo{s},
	)
}

// ── Mock Transactor ──

// memTransactor restores a snapshot of the store when fn fails
type memTransactor struct{ s *memStore }

func (m *memTransactor) Transaction(_ context.Context, current *repository.Repository, fn func(*repository.Repository) error) error {
	m.s.mu.Lock()
	snap := m.s.cloneLocked()
	m.s.mu.Unlock()

	if err := fn(current); err != nil {
		m.s.mu.Lock()
		m.s.restoreLocked(snap)
		m.s.mu.Unlock()
		return err
	}
	return nil
}

func (m *memTransactor) Reset(_ context.Context) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, run := range m.s.runs {
		run.ProgramID = nil
	}
	m.s.restoreLocked(newMemStore())
	return nil
}

// cloneLocked copies the entity tables. Import runs are written outside
// record transactions and are not rolled back; ids keep increasing.
func (s *memStore) cloneLocked() *memStore {
	c := newMemStore()
	for k, v := range s.instructors {
		cp := *v
		c.instructors[k] = &cp
	}
	for k, v := range s.programs {
		cp := *v
		c.programs[k] = &cp
	}
	for k, v := range s.disciplines {
		cp := *v
		c.disciplines[k] = &cp
	}
	for k, v := range s.links {
		cp := *v
		c.links[k] = &cp
	}
	for k, v := range s.instructorPrograms {
		c.instructorPrograms[k] = v
	}
	for k, v := range s.quals {
		c.quals[k] = append([]model.Qualification(nil), v...)
	}
	for k, v := range s.retrainings {
		c.retrainings[k] = append([]model.Retraining(nil), v...)
	}
	return c
}

func (s *memStore) restoreLocked(snap *memStore) {
	s.instructors = snap.instructors
	s.programs = snap.programs
	s.disciplines = snap.disciplines
	s.links = snap.links
	s.instructorPrograms = snap.instructorPrograms
	s.quals = snap.quals
	s.retrainings = snap.retrainings
}

// ── Mock InstructorRepository ──

type mockInstructorRepo struct{ s *memStore }

func (m *mockInstructorRepo) Create(_ context.Context, inst *model.Instructor) error {
	if hook := m.s.beforeInstructorCreate; hook != nil {
		m.s.mu.Lock()
		hook(m.s, inst)
		m.s.mu.Unlock()
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.instructors {
		if existing.NameKey == inst.NameKey {
			return gorm.ErrDuplicatedKey
		}
	}
	m.s.insertInstructor(inst)
	return nil
}

func (m *mockInstructorRepo) Update(_ context.Context, inst *model.Instructor) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.instructors[inst.InstructorID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *inst
	cp.Qualifications, cp.Retrainings = nil, nil
	m.s.instructors[inst.InstructorID] = &cp
	return nil
}

func (m *mockInstructorRepo) GetByID(_ context.Context, id uint) (*model.Instructor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	inst, ok := m.s.instructors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *inst
	cp.Qualifications = append([]model.Qualification(nil), m.s.quals[id]...)
	cp.Retrainings = append([]model.Retraining(nil), m.s.retrainings[id]...)
	return &cp, nil
}

func (m *mockInstructorRepo) GetByNameKey(_ context.Context, nameKey string) (*model.Instructor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, inst := range m.s.instructors {
		if inst.NameKey == nameKey {
			cp := *inst
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInstructorRepo) ListByProgram(_ context.Context, programID uint) ([]model.Instructor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Instructor
	for key := range m.s.instructorPrograms {
		if key[1] == programID {
			if inst, ok := m.s.instructors[key[0]]; ok {
				out = append(out, *inst)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *mockInstructorRepo) ListWithoutPrograms(_ context.Context) ([]model.Instructor, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	linked := make(map[uint]bool)
	for key := range m.s.instructorPrograms {
		linked[key[0]] = true
	}
	var out []model.Instructor
	for id, inst := range m.s.instructors {
		if !linked[id] {
			out = append(out, *inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (m *mockInstructorRepo) ReplaceCredentials(_ context.Context, id uint, quals []model.Qualification, retrainings []model.Retraining) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for i := range quals {
		quals[i].InstructorID = id
		quals[i].QualificationID = m.s.id()
	}
	for i := range retrainings {
		retrainings[i].InstructorID = id
		retrainings[i].RetrainingID = m.s.id()
	}
	m.s.quals[id] = append([]model.Qualification(nil), quals...)
	m.s.retrainings[id] = append([]model.Retraining(nil), retrainings...)
	return nil
}

func (m *mockInstructorRepo) ListPrograms(_ context.Context, id uint) ([]model.Program, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Program
	for key := range m.s.instructorPrograms {
		if key[0] == id {
			if p, ok := m.s.programs[key[1]]; ok {
				out = append(out, *p)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockInstructorRepo) HasProgram(_ context.Context, instructorID, programID uint) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.instructorPrograms[[2]uint{instructorID, programID}], nil
}

func (m *mockInstructorRepo) LinkProgram(_ context.Context, instructorID, programID uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	key := [2]uint{instructorID, programID}
	if m.s.instructorPrograms[key] {
		return gorm.ErrDuplicatedKey
	}
	m.s.instructorPrograms[key] = true
	return nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct{ s *memStore }

func (m *mockProgramRepo) Create(_ context.Context, p *model.Program) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, existing := range m.s.programs {
		if existing.Name == p.Name || existing.ShortCode == p.ShortCode {
			return gorm.ErrDuplicatedKey
		}
	}
	p.ProgramID = m.s.id()
	p.CreatedAt = time.Now()
	cp := *p
	m.s.programs[p.ProgramID] = &cp
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id uint) (*model.Program, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if p, ok := m.s.programs[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) find(match func(p *model.Program) bool) (*model.Program, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, p := range m.s.programs {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) GetByName(_ context.Context, name string) (*model.Program, error) {
	return m.find(func(p *model.Program) bool { return p.Name == name })
}

func (m *mockProgramRepo) GetByShortCode(_ context.Context, code string) (*model.Program, error) {
	return m.find(func(p *model.Program) bool { return p.ShortCode == code })
}

func (m *mockProgramRepo) ListByCodePrefix(_ context.Context, prefix string) ([]model.Program, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Program
	for _, p := range m.s.programs {
		if p.ShortCode == prefix || strings.HasPrefix(p.ShortCode, prefix+"_") {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EnrollmentYear != out[j].EnrollmentYear {
			return out[i].EnrollmentYear > out[j].EnrollmentYear
		}
		return out[i].ProgramID < out[j].ProgramID
	})
	return out, nil
}

func (m *mockProgramRepo) List(_ context.Context) ([]model.Program, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]model.Program, 0, len(m.s.programs))
	for _, p := range m.s.programs {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortCode < out[j].ShortCode })
	return out, nil
}

func (m *mockProgramRepo) ShortCodeExists(_ context.Context, code string) (bool, error) {
	_, err := m.GetByShortCode(context.Background(), code)
	return err == nil, nil
}

func (m *mockProgramRepo) Delete(_ context.Context, id uint) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.programs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	m.s.deleteDisciplinesOf(id)
	for key := range m.s.instructorPrograms {
		if key[1] == id {
			delete(m.s.instructorPrograms, key)
		}
	}
	delete(m.s.programs, id)
	return nil
}

// ── Mock DisciplineRepository ──

type mockDisciplineRepo struct{ s *memStore }

func (m *mockDisciplineRepo) ReplaceByProgram(_ context.Context, programID uint, disciplines []model.Discipline) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.deleteDisciplinesOf(programID)
	for i := range disciplines {
		disciplines[i].ProgramID = programID
		disciplines[i].DisciplineID = m.s.id()
		cp := disciplines[i]
		m.s.disciplines[cp.DisciplineID] = &cp
	}
	return nil
}

func (m *mockDisciplineRepo) ListByProgram(_ context.Context, programID uint) ([]model.Discipline, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.disciplinesOf(programID), nil
}

func (m *mockDisciplineRepo) ListByPrograms(_ context.Context, programIDs []uint) ([]model.Discipline, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Discipline
	for _, id := range programIDs {
		out = append(out, m.s.disciplinesOf(id)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisciplineID < out[j].DisciplineID })
	return out, nil
}

func (m *mockDisciplineRepo) ListByInstructor(_ context.Context, instructorID uint) ([]model.Discipline, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []model.Discipline
	for _, l := range m.s.linksOf(instructorID) {
		if d, ok := m.s.disciplines[l.DisciplineID]; ok {
			cp := *d
			if p, ok := m.s.programs[d.ProgramID]; ok {
				pc := *p
				cp.Program = &pc
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (m *mockDisciplineRepo) CountByProgram(_ context.Context, programID uint) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return int64(len(m.s.disciplinesOf(programID))), nil
}

func (m *mockDisciplineRepo) CountByPrograms(_ context.Context, programIDs []uint) (map[uint]int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make(map[uint]int64, len(programIDs))
	for _, id := range programIDs {
		if n := len(m.s.disciplinesOf(id)); n > 0 {
			out[id] = int64(n)
		}
	}
	return out, nil
}

// ── Mock TaughtLinkRepository ──

type mockTaughtLinkRepo struct{ s *memStore }

func (m *mockTaughtLinkRepo) Exists(_ context.Context, instructorID, disciplineID uint) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.links {
		if l.InstructorID == instructorID && l.DisciplineID == disciplineID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTaughtLinkRepo) Create(_ context.Context, link *model.TaughtLink) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, l := range m.s.links {
		if l.InstructorID == link.InstructorID && l.DisciplineID == link.DisciplineID {
			return gorm.ErrDuplicatedKey
		}
	}
	if _, ok := m.s.disciplines[link.DisciplineID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	link.TaughtLinkID = m.s.id()
	cp := *link
	m.s.links[cp.TaughtLinkID] = &cp
	return nil
}

func (m *mockTaughtLinkRepo) CountByProgram(_ context.Context, programID uint) (int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var n int64
	for _, l := range m.s.links {
		if d, ok := m.s.disciplines[l.DisciplineID]; ok && d.ProgramID == programID {
			n++
		}
	}
	return n, nil
}

// ── Mock ImportRunRepository ──

type mockImportRunRepo struct{ s *memStore }

func (m *mockImportRunRepo) Create(_ context.Context, run *model.ImportRun) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	run.CreatedAt = time.Now()
	cp := *run
	m.s.runs[run.ImportRunID] = &cp
	return nil
}

func (m *mockImportRunRepo) Save(_ context.Context, run *model.ImportRun) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	cp := *run
	m.s.runs[run.ImportRunID] = &cp
	return nil
}

func (m *mockImportRunRepo) GetByID(_ context.Context, id string) (*model.ImportRun, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if r, ok := m.s.runs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockImportRunRepo) List(_ context.Context, offset, limit int) ([]model.ImportRun, int64, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	all := make([]model.ImportRun, 0, len(m.s.runs))
	for _, r := range m.s.runs {
		all = append(all, *r)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}
