// services/scheduler.go
package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartLifecycleScheduler runs the deal lifecycle sweep once a minute:
// scheduled drafts are activated and expired deals are closed.
func (s *DealService) StartLifecycleScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.ActivateDueDeals(time.Now())
		}),
	)
}
