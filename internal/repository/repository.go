package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Transactor the transactional backend behind an aggregate
type Transactor interface {
	// Transaction runs fn inside one transaction; current is the aggregate
	// the call was made on.
	Transaction(ctx context.Context, current *Repository, fn func(txRepo *Repository) error) error
	// Reset deletes every ingested entity
	Reset(ctx context.Context) error
}

// Repository aggregate of every entity repository
type Repository struct {
	tx Transactor

	Instructor InstructorRepository
	Program    ProgramRepository
	Discipline DisciplineRepository
	TaughtLink TaughtLinkRepository
	ImportRun  ImportRunRepository
}

// NewRepository builds the aggregate on db
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		tx:         gormTransactor{db: db},
		Instructor: NewInstructorRepo(db),
		Program:    NewProgramRepo(db),
		Discipline: NewDisciplineRepo(db),
		TaughtLink: NewTaughtLinkRepo(db),
		ImportRun:  NewImportRunRepo(db),
	}
}

// Compose assembles an aggregate from explicit parts, e.g. in-memory backends
func Compose(tx Transactor, instructor InstructorRepository, program ProgramRepository,
	discipline DisciplineRepository, taughtLink TaughtLinkRepository, importRun ImportRunRepository) *Repository {
	return &Repository{
		tx:         tx,
		Instructor: instructor,
		Program:    program,
		Discipline: discipline,
		TaughtLink: taughtLink,
		ImportRun:  importRun,
	}
}

// Transaction runs fn inside one transaction; fn receives a
// transaction-bound aggregate.
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	return r.tx.Transaction(ctx, r, fn)
}

// Reset deletes every ingested entity. Cascades take qualifications,
// disciplines, taught_links and instructor_programs with them; import_runs
// keep their history with program_id nulled.
func (r *Repository) Reset(ctx context.Context) error {
	return r.tx.Reset(ctx)
}

type gormTransactor struct {
	db *gorm.DB
}

func (g gormTransactor) Transaction(ctx context.Context, _ *Repository, fn func(txRepo *Repository) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (g gormTransactor) Reset(ctx context.Context) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM instructors").Error; err != nil {
			return err
		}
		return tx.Exec("DELETE FROM programs").Error
	})
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
// gorm translates it to ErrDuplicatedKey; the raw SQLSTATE is checked for
// statements that bypass translation (Exec/Raw).
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
