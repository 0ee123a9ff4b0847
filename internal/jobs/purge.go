package jobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CodeStore is the part of the single-use code store the purge job needs.
type CodeStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Scheduler runs periodic housekeeping.
type Scheduler struct {
	cron    *cron.Cron
	codes   CodeStore
	timeout time.Duration
	mu      sync.Mutex
	running bool
	now     func() time.Time
}

func NewScheduler(codes CodeStore) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		codes:   codes,
		timeout: time.Minute,
		now:     time.Now,
	}
}

// Start registers the purge job on schedule and starts the cron loop.
func (s *Scheduler) Start(schedule string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, s.runPurge); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", schedule, err)
	}

	s.cron.Start()
	s.running = true

	log.Printf("Scheduler started, purging codes on %q", schedule)
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	<-s.cron.Stop().Done()
	s.running = false
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.PurgeCodes(ctx); err != nil {
		log.Printf("ERROR [jobs.PurgeCodes]: %v", err)
	}
}

// PurgeCodes deletes spent and expired single-use codes.
func (s *Scheduler) PurgeCodes(ctx context.Context) (int64, error) {
	deleted, err := s.codes.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("Purged %d spent or expired codes", deleted)
	}
	return deleted, nil
}
