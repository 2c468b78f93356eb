package scheduler

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/drivelane/drivelane/internal/logger"
	"github.com/drivelane/drivelane/internal/models"
)

const batchSize = 50

// Deliverer writes a queued notification.
type Deliverer interface {
	Deliver(ctx context.Context, pending *models.PendingNotification) error
}

// Scheduler retries notifications that could not be written the first time.
type Scheduler struct {
	db          *gorm.DB
	deliverer   Deliverer
	interval    time.Duration
	maxAttempts int

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler(db *gorm.DB, deliverer Deliverer, interval time.Duration, maxAttempts int) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Scheduler{
		db:          db,
		deliverer:   deliverer,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Start begins the retry loop in the background
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.done = make(chan struct{})
	s.running = true

	go s.run(s.ctx, s.done)

	logger.Info("scheduler_start", "notification retry scheduler started",
		"interval", s.interval.String(), "max_attempts", s.maxAttempts)
}

// Stop cancels the loop and waits for the current pass to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	logger.Info("scheduler_stop", "notification retry scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil {
				logger.Error("scheduler_run", "notification retry pass failed", err)
			}
		}
	}
}

// RunOnce retries every due pending notification and returns how many were delivered.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	var due []models.PendingNotification
	err := s.db.WithContext(ctx).
		Where("delivered_at IS NULL AND attempts < ? AND next_attempt_at <= ?", s.maxAttempts, time.Now()).
		Order("next_attempt_at ASC").
		Limit(batchSize).
		Find(&due).Error
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i := range due {
		if ctx.Err() != nil {
			return delivered, ctx.Err()
		}
		if s.attempt(ctx, &due[i]) {
			delivered++
		}
	}

	if len(due) > 0 {
		logger.Info("scheduler_run", "notification retry pass finished",
			"due", len(due), "delivered", delivered)
	}

	return delivered, nil
}

func (s *Scheduler) attempt(ctx context.Context, pending *models.PendingNotification) bool {
	now := time.Now()
	deliverErr := s.deliverer.Deliver(ctx, pending)

	updates := map[string]interface{}{"attempts": pending.Attempts + 1}
	if deliverErr == nil {
		updates["delivered_at"] = now
		updates["last_error"] = ""
	} else {
		updates["last_error"] = deliverErr.Error()
		updates["next_attempt_at"] = now.Add(Backoff(s.interval, pending.Attempts+1))
	}

	if err := s.db.WithContext(ctx).Model(pending).Updates(updates).Error; err != nil {
		logger.Error("scheduler_attempt", "failed to record notification attempt", err, "pending_id", pending.ID)
	}

	if deliverErr != nil {
		level := logger.Warn
		if pending.Attempts+1 >= s.maxAttempts {
			level = logger.Error
		}
		level("scheduler_attempt", "notification retry failed", deliverErr,
			"pending_id", pending.ID, "user_id", pending.UserID, "attempts", pending.Attempts+1)
		return false
	}

	return true
}

// Backoff doubles the wait after each failed attempt, capped at one hour.
func Backoff(interval time.Duration, attempts int) time.Duration {
	wait := interval
	for i := 1; i < attempts; i++ {
		wait *= 2
		if wait >= time.Hour {
			return time.Hour
		}
	}
	return wait
}

// GetStatus returns current scheduler status
func (s *Scheduler) GetStatus(ctx context.Context) map[string]interface{} {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	var pending int64
	s.db.WithContext(ctx).Model(&models.PendingNotification{}).
		Where("delivered_at IS NULL AND attempts < ?", s.maxAttempts).
		Count(&pending)

	return map[string]interface{}{
		"running":               running,
		"pending_notifications": pending,
	}
}
