// Package tempfile holds uploaded documents on disk for the lifetime of one
// ingestion run.
package tempfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LeakRecorder is notified when a file outlives its retries
type LeakRecorder interface {
	TempLeak()
}

// Store writes uploads into one directory and removes them afterwards
type Store struct {
	dir        string
	retries    uint64
	interval   time.Duration
	logger     *zap.Logger
	leaks      LeakRecorder
	removeFunc func(string) error
}

// Option configures a Store
type Option func(*Store)

// WithLeakRecorder reports exhausted removals
func WithLeakRecorder(r LeakRecorder) Option {
	return func(s *Store) { s.leaks = r }
}

// NewStore creates dir if needed
func NewStore(dir string, retries uint64, interval time.Duration, logger *zap.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	s := &Store{
		dir:        dir,
		retries:    retries,
		interval:   interval,
		logger:     logger,
		removeFunc: os.Remove,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Dir the upload directory
func (s *Store) Dir() string { return s.dir }

// File one stored upload
type File struct {
	Path     string
	Filename string // original client filename
	Size     int64
}

// Open opens the stored file for reading
func (f *File) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Save copies r into a uniquely named file keeping the original extension
func (s *Store) Save(r io.Reader, filename string) (*File, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	n, copyErr := io.Copy(out, r)
	closeErr := out.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		s.Release(path)
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	return &File{Path: path, Filename: filename, Size: n}, nil
}

// Release removes path, retrying with exponential backoff while the
// filesystem refuses (e.g. a reader still holds the file). Exhausted retries
// are logged and counted, never returned.
func (s *Store) Release(path string) {
	if path == "" {
		return
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.interval
	b.MaxElapsedTime = 0

	op := func() error {
		err := s.removeFunc(path)
		if err == nil || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		s.logger.Debug("temp file removal retry",
			zap.String("path", path), zap.Duration("wait", wait), zap.Error(err))
	}

	if err := backoff.RetryNotify(op, backoff.WithMaxRetries(b, s.retries), notify); err != nil {
		s.logger.Warn("temp file leaked", zap.String("path", path), zap.Error(err))
		if s.leaks != nil {
			s.leaks.TempLeak()
		}
	}
}

// Sweep removes files in the directory older than maxAge and returns how many went
func (s *Store) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read temp dir: %w", err)
	}
	threshold := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return removed, ctx.Err()
		}
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(threshold) {
			continue
		}
		if err := s.removeFunc(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("sweep: remove failed", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}
