package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

const (
	// shorter discipline keys match too much by containment
	minMatchLen = 4
	// retries when a freshly allocated short code is taken before insert
	maxCodeAttempts = 3
)

var errShortCodeRace = errors.New("short code taken concurrently")

// ── Run cache ──

// runCache identities resolved during one ingestion run. It belongs to that
// run alone. Each record transaction works on a fork that is merged into the
// parent only after commit, so a rolled-back record leaves no stale ids.
type runCache struct {
	parent      *runCache
	instructors map[string]uint           // name key → instructor id
	programs    map[string]*model.Program // cleaned name → program
	candidates  map[string][]candidate    // program scope → disciplines
}

type candidate struct {
	discipline model.Discipline
	key        string
}

func newRunCache() *runCache {
	return &runCache{
		instructors: make(map[string]uint),
		programs:    make(map[string]*model.Program),
		candidates:  make(map[string][]candidate),
	}
}

func (c *runCache) fork() *runCache {
	child := newRunCache()
	child.parent = c
	return child
}

// merge publishes the fork's entries to its parent
func (c *runCache) merge() {
	if c.parent == nil {
		return
	}
	for k, v := range c.instructors {
		c.parent.instructors[k] = v
	}
	for k, v := range c.programs {
		c.parent.programs[k] = v
	}
	for k, v := range c.candidates {
		c.parent.candidates[k] = v
	}
}

func (c *runCache) instructor(key string) (uint, bool) {
	for n := c; n != nil; n = n.parent {
		if id, ok := n.instructors[key]; ok {
			return id, true
		}
	}
	return 0, false
}

func (c *runCache) program(name string) (*model.Program, bool) {
	for n := c; n != nil; n = n.parent {
		if p, ok := n.programs[name]; ok {
			return p, true
		}
	}
	return nil, false
}

func (c *runCache) disciplines(scope string) ([]candidate, bool) {
	for n := c; n != nil; n = n.parent {
		if ds, ok := n.candidates[scope]; ok {
			return ds, true
		}
	}
	return nil, false
}

// ── Engine ──

// Reconciler matches normalized records against stored rows and decides
// between update-in-place and insert. Every method takes the repository to
// write through, usually bound to the caller's transaction.
type Reconciler struct {
	policy normalize.Policy
	logger *zap.Logger
}

// NewReconciler creates a Reconciler
func NewReconciler(policy normalize.Policy, logger *zap.Logger) *Reconciler {
	return &Reconciler{policy: policy, logger: logger}
}

// UpsertInstructor matches by normalized full name. A unique violation on
// insert means another run stored the same name first; that row wins and is
// updated instead.
func (e *Reconciler) UpsertInstructor(ctx context.Context, repo *repository.Repository, cache *runCache, inst *model.Instructor) (uint, bool, error) {
	if id, ok := cache.instructor(inst.NameKey); ok {
		inst.InstructorID = id
		if err := repo.Instructor.Update(ctx, inst); err != nil {
			return 0, false, pkgerrors.Storage("update instructor", err)
		}
		return id, false, nil
	}

	existing, err := repo.Instructor.GetByNameKey(ctx, inst.NameKey)
	switch {
	case err == nil:
		return e.updateInstructor(ctx, repo, cache, existing.InstructorID, inst)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return 0, false, pkgerrors.Storage("find instructor", err)
	}

	err = repo.Instructor.Create(ctx, inst)
	if err == nil {
		cache.instructors[inst.NameKey] = inst.InstructorID
		return inst.InstructorID, true, nil
	}
	if !repository.IsUniqueViolation(err) {
		return 0, false, pkgerrors.Storage("create instructor", err)
	}

	conflict := &pkgerrors.ReconciliationConflictError{Entity: "instructor", Key: inst.FullName, Err: err}
	e.logger.Info("recovered instructor conflict", zap.Error(conflict))

	existing, err = repo.Instructor.GetByNameKey(ctx, inst.NameKey)
	if err != nil {
		return 0, false, pkgerrors.Storage("refetch instructor", err)
	}
	return e.updateInstructor(ctx, repo, cache, existing.InstructorID, inst)
}

func (e *Reconciler) updateInstructor(ctx context.Context, repo *repository.Repository, cache *runCache, id uint, inst *model.Instructor) (uint, bool, error) {
	inst.InstructorID = id
	if err := repo.Instructor.Update(ctx, inst); err != nil {
		return 0, false, pkgerrors.Storage("update instructor", err)
	}
	cache.instructors[inst.NameKey] = id
	return id, false, nil
}

// EnsureProgram finds a program by exact name or creates it with a fresh
// short code.
func (e *Reconciler) EnsureProgram(ctx context.Context, repo *repository.Repository, cache *runCache, name string, year int) (*model.Program, bool, error) {
	name = normalize.CleanText(name)
	if p, ok := cache.program(name); ok {
		return p, false, nil
	}

	existing, err := repo.Program.GetByName(ctx, name)
	if err == nil {
		cache.programs[name] = existing
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Storage("find program", err)
	}

	p, created, err := e.CreateProgram(ctx, repo, name, year)
	if err != nil {
		return nil, false, err
	}
	cache.programs[name] = p
	return p, created, nil
}

// CreateProgram inserts a program under a unique short code. When the name
// was inserted concurrently the stored row is returned with created=false.
func (e *Reconciler) CreateProgram(ctx context.Context, repo *repository.Repository, name string, year int) (*model.Program, bool, error) {
	base, err := e.policy.ShortCode(name, year)
	if err != nil {
		return nil, false, &pkgerrors.RecordNormalizationError{Reason: err.Error()}
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := normalize.UniqueShortCode(ctx, base, repo.Program.ShortCodeExists)
		if err != nil {
			return nil, false, pkgerrors.Storage("allocate short code", err)
		}

		p := &model.Program{Name: name, ShortCode: code, EnrollmentYear: year}
		err = repo.Program.Create(ctx, p)
		if err == nil {
			e.logger.Info("program created",
				zap.Uint("program_id", p.ProgramID),
				zap.String("short_code", p.ShortCode))
			return p, true, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, false, pkgerrors.Storage("create program", err)
		}

		if existing, ferr := repo.Program.GetByName(ctx, name); ferr == nil {
			e.logger.Info("recovered program conflict", zap.Error(
				&pkgerrors.ReconciliationConflictError{Entity: "program", Key: name, Err: err}))
			return existing, false, nil
		}
		e.logger.Debug("short code taken before insert, retrying", zap.String("short_code", code))
	}
	return nil, false, pkgerrors.Storage("create program",
		&pkgerrors.ReconciliationConflictError{Entity: "program", Key: base, Err: errShortCodeRace})
}

// LinkProgram ensures the instructor ↔ program edge exists
func (e *Reconciler) LinkProgram(ctx context.Context, repo *repository.Repository, instructorID, programID uint) (bool, error) {
	has, err := repo.Instructor.HasProgram(ctx, instructorID, programID)
	if err != nil {
		return false, pkgerrors.Storage("check instructor program", err)
	}
	if has {
		return false, nil
	}
	if err := repo.Instructor.LinkProgram(ctx, instructorID, programID); err != nil {
		if repository.IsUniqueViolation(err) {
			return false, nil
		}
		return false, pkgerrors.Storage("link instructor program", err)
	}
	return true, nil
}

// LinkDisciplines matches free-text titles against the disciplines of the
// given programs (every program when none are given) and creates the missing
// taught links. It returns the matched disciplines and how many links are new.
func (e *Reconciler) LinkDisciplines(ctx context.Context, repo *repository.Repository, cache *runCache, instructorID uint, programIDs []uint, titles []string) ([]model.Discipline, int, error) {
	if len(titles) == 0 {
		return nil, 0, nil
	}
	candidates, err := e.candidates(ctx, repo, cache, programIDs)
	if err != nil {
		return nil, 0, err
	}

	var (
		matched []model.Discipline
		created int
		seen    = make(map[uint]struct{})
	)
	for _, title := range titles {
		for _, d := range matchDisciplines(title, candidates) {
			if _, dup := seen[d.DisciplineID]; dup {
				continue
			}
			seen[d.DisciplineID] = struct{}{}

			isNew, err := e.linkDiscipline(ctx, repo, instructorID, d.DisciplineID)
			if err != nil {
				return nil, 0, err
			}
			if isNew {
				created++
			}
			matched = append(matched, d)
		}
	}
	return matched, created, nil
}

func (e *Reconciler) linkDiscipline(ctx context.Context, repo *repository.Repository, instructorID, disciplineID uint) (bool, error) {
	exists, err := repo.TaughtLink.Exists(ctx, instructorID, disciplineID)
	if err != nil {
		return false, pkgerrors.Storage("check taught link", err)
	}
	if exists {
		return false, nil
	}
	err = repo.TaughtLink.Create(ctx, &model.TaughtLink{InstructorID: instructorID, DisciplineID: disciplineID})
	if err == nil {
		return true, nil
	}
	if repository.IsUniqueViolation(err) {
		e.logger.Debug("taught link inserted concurrently",
			zap.Uint("instructor_id", instructorID),
			zap.Uint("discipline_id", disciplineID))
		return false, nil
	}
	return false, pkgerrors.Storage("create taught link", err)
}

func (e *Reconciler) candidates(ctx context.Context, repo *repository.Repository, cache *runCache, programIDs []uint) ([]candidate, error) {
	scope := scopeKey(programIDs)
	if cs, ok := cache.disciplines(scope); ok {
		return cs, nil
	}

	ids := programIDs
	if len(ids) == 0 {
		programs, err := repo.Program.List(ctx)
		if err != nil {
			return nil, pkgerrors.Storage("list programs", err)
		}
		for _, p := range programs {
			ids = append(ids, p.ProgramID)
		}
	}
	disciplines, err := repo.Discipline.ListByPrograms(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Storage("list disciplines", err)
	}

	cs := make([]candidate, 0, len(disciplines))
	for _, d := range disciplines {
		if key := normalize.TitleKey(d.Title); key != "" {
			cs = append(cs, candidate{discipline: d, key: key})
		}
	}
	cache.candidates[scope] = cs
	return cs, nil
}

// RelinkProgram restores the taught links of a program whose disciplines were
// just replaced, from each instructor's stored discipline text.
func (e *Reconciler) RelinkProgram(ctx context.Context, repo *repository.Repository, programID uint) (int, error) {
	affiliated, err := repo.Instructor.ListByProgram(ctx, programID)
	if err != nil {
		return 0, pkgerrors.Storage("list program instructors", err)
	}
	unaffiliated, err := repo.Instructor.ListWithoutPrograms(ctx)
	if err != nil {
		return 0, pkgerrors.Storage("list unaffiliated instructors", err)
	}

	cache := newRunCache()
	scope := []uint{programID}
	total := 0
	for _, inst := range append(affiliated, unaffiliated...) {
		titles := normalize.SplitList(inst.DisciplinesRaw)
		_, n, err := e.LinkDisciplines(ctx, repo, cache, inst.InstructorID, scope, titles)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// matchDisciplines returns, per program, the candidate whose title contains
// (or is contained in) the given title with the smallest edit distance.
func matchDisciplines(title string, candidates []candidate) []model.Discipline {
	key := normalize.TitleKey(title)
	if utf8.RuneCountInString(key) < minMatchLen {
		return nil
	}

	type scored struct {
		d    model.Discipline
		dist int
	}
	best := make(map[uint]scored)
	for _, c := range candidates {
		if utf8.RuneCountInString(c.key) < minMatchLen {
			continue
		}
		if !strings.Contains(c.key, key) && !strings.Contains(key, c.key) {
			continue
		}
		dist := fuzzy.LevenshteinDistance(key, c.key)
		cur, ok := best[c.discipline.ProgramID]
		if !ok || dist < cur.dist || (dist == cur.dist && c.discipline.DisciplineID < cur.d.DisciplineID) {
			best[c.discipline.ProgramID] = scored{d: c.discipline, dist: dist}
		}
	}

	out := make([]model.Discipline, 0, len(best))
	for _, s := range best {
		out = append(out, s.d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisciplineID < out[j].DisciplineID })
	return out
}

func scopeKey(ids []uint) string {
	if len(ids) == 0 {
		return "*"
	}
	sorted := append([]uint(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
