// Package scheduler keeps the forecast cache warm so the "today's outfit"
// path and calendar views read cached weather instead of waiting on the
// network.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/wearly/outfit-engine/internal/forecast"
)

// prefetchDays is how far ahead each refresh run prefetches.
const prefetchDays = 7

// Scheduler periodically refreshes current weather and prefetches the
// upcoming week.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     *forecast.Cache
	interval  time.Duration
}

// New creates a new Scheduler.
func New(cache *forecast.Cache, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		cache:     cache,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		log.Println("scheduler: running weather refresh job")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.cache.Current(ctx)

		start := time.Now()
		end := start.AddDate(0, 0, prefetchDays-1)
		if err := s.cache.PrefetchRange(ctx, start, end); err != nil {
			log.Printf("scheduler: prefetch failed: %v", err)
		}

		log.Println("scheduler: completed weather refresh job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
