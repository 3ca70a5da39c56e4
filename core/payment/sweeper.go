package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Sweeper struct {
	log     logrus.FieldLogger
	db      *sqlx.DB
	ttl     time.Duration
	timeout time.Duration
	cron    *cron.Cron
	now     func() time.Time
}

func NewSweeper(log logrus.FieldLogger, db *sqlx.DB, ttl time.Duration) *Sweeper {
	log = log.WithField("job", "payment-sweeper")

	return &Sweeper{
		log:     log,
		db:      db,
		ttl:     ttl,
		timeout: time.Minute,
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger))),
		now:     time.Now,
	}
}

func (s *Sweeper) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.run(); err != nil {
			s.log.Error(err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling payment sweeper at %q: %w", schedule, err)
	}

	s.cron.Start()
	s.log.Infof("payment sweeper scheduled %q", schedule)
	return nil
}

func (s *Sweeper) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for the payment sweeper: %w", ctx.Err())
	}
}

func (s *Sweeper) run() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	_, err := s.Sweep(ctx)
	return err
}

func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	now := s.now().UTC()

	n, err := ExpireStale(ctx, s.db, now.Add(-s.ttl), now)
	if err != nil {
		return 0, err
	}

	if n > 0 {
		s.log.WithField("expired", n).Info("expired stale payments")
	}
	return n, nil
}
