package jobs

import (
	"time"

	"github.com/sirupsen/logrus"

	"tts-credit-bot/internal/services"
	"tts-credit-bot/internal/state"
)

// MaintenanceJob periodically expires stale reward links, sweeps abandoned
// conversation state, and removes old export files.
type MaintenanceJob struct {
	log     *logrus.Logger
	links   *services.RewardLinkService
	reports *services.ReportService
	states  *state.Store
}

func NewMaintenanceJob(log *logrus.Logger, links *services.RewardLinkService, reports *services.ReportService, states *state.Store) *MaintenanceJob {
	return &MaintenanceJob{log: log, links: links, reports: reports, states: states}
}

// Start begins the periodic maintenance job
func (j *MaintenanceJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		j.run()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			j.run()
		}
	}()
}

func (j *MaintenanceJob) run() {
	if _, err := j.links.ExpireStale(); err != nil {
		j.log.WithError(err).Error("link expiry sweep failed")
	}

	if removed := j.states.Sweep(); removed > 0 {
		j.log.WithField("removed", removed).Debug("swept stale conversations")
	}

	if err := j.reports.CleanupExports(24 * time.Hour); err != nil {
		j.log.WithError(err).Error("export cleanup failed")
	}
}
