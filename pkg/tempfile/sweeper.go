package tempfile

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically removes stale uploads left behind by leaked releases
type Sweeper struct {
	cron   *cron.Cron
	store  *Store
	maxAge time.Duration
	logger *zap.Logger
}

// NewSweeper schedules Store.Sweep on spec (standard cron syntax or @every)
func NewSweeper(store *Store, spec string, maxAge time.Duration, logger *zap.Logger) (*Sweeper, error) {
	s := &Sweeper{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		store:  store,
		maxAge: maxAge,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.store.Sweep(ctx, s.maxAge)
	if err != nil {
		s.logger.Warn("temp sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("temp sweep removed stale uploads", zap.Int("count", n))
	}
}

// Start begins scheduling
func (s *Sweeper) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running sweep
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
