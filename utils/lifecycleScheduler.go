package utils

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// LifecycleRunner is the part of the internship service the scheduler drives.
type LifecycleRunner interface {
	AdvanceLifecycle(ctx context.Context, at time.Time) (started, completed int, err error)
	RemindUnclaimed(ctx context.Context, olderThan time.Duration) (int, error)
}

// InitializeLifecycleScheduler starts the daily lifecycle jobs and returns the
// running cron so the caller can stop it on shutdown.
func InitializeLifecycleScheduler(runner LifecycleRunner, remindAfter time.Duration) *cron.Cron {
	log.Println("[LIFECYCLE-SCHEDULER] Initializing lifecycle scheduler...")

	c := cron.New()

	// Shortly after midnight: start and complete internships by date
	c.AddFunc("5 0 * * *", func() {
		log.Println("[LIFECYCLE-SCHEDULER] Running daily lifecycle pass...")
		RunLifecyclePass(context.Background(), runner, time.Now())
	})

	// 9 AM: remind instructors about pending internships nobody claimed
	c.AddFunc("0 9 * * *", func() {
		log.Println("[LIFECYCLE-SCHEDULER] Running unclaimed reminder...")
		RunUnclaimedReminder(context.Background(), runner, remindAfter)
	})

	c.Start()
	log.Println("[LIFECYCLE-SCHEDULER] Lifecycle scheduler started - lifecycle at 00:05, reminders at 09:00")
	return c
}

// StopLifecycleScheduler stops scheduling new runs and waits up to timeout for
// a running pass to finish. It reports whether the pass finished in time.
func StopLifecycleScheduler(c *cron.Cron, timeout time.Duration) bool {
	log.Println("[LIFECYCLE-SCHEDULER] Stopping lifecycle scheduler...")
	select {
	case <-c.Stop().Done():
		return true
	case <-time.After(timeout):
		log.Printf("[LIFECYCLE-SCHEDULER] A job was still running after %s", timeout)
		return false
	}
}

// RunLifecyclePass starts and completes internships due at now.
func RunLifecyclePass(ctx context.Context, runner LifecycleRunner, now time.Time) (started, completed int) {
	started, completed, err := runner.AdvanceLifecycle(ctx, now)
	if err != nil {
		log.Printf("[LIFECYCLE-SCHEDULER] Lifecycle pass stopped after %d started, %d completed: %v", started, completed, err)
		return started, completed
	}
	log.Printf("[LIFECYCLE-SCHEDULER] Started %d and completed %d internships", started, completed)
	return started, completed
}

// RunUnclaimedReminder notifies about internships pending longer than remindAfter.
func RunUnclaimedReminder(ctx context.Context, runner LifecycleRunner, remindAfter time.Duration) int {
	count, err := runner.RemindUnclaimed(ctx, remindAfter)
	if err != nil {
		log.Printf("[LIFECYCLE-SCHEDULER] Error sending unclaimed reminders: %v", err)
		return 0
	}
	log.Printf("[LIFECYCLE-SCHEDULER] Sent reminders for %d unclaimed internships", count)
	return count
}
