package internal

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/enviarzap/whatsapp-link-sender/internal/limits"
	"github.com/enviarzap/whatsapp-link-sender/internal/sendings"
	"github.com/enviarzap/whatsapp-link-sender/pkg/env"
	"github.com/enviarzap/whatsapp-link-sender/pkg/log"
)

func Routines(cron *cron.Cron) {
	log.Print(nil).Info("Running Routine Tasks")

	// Daily sweep at the quota reset hour: evict idle limiters and apply the
	// daily reset to the ones that stay resident.
	resetHour := env.GetEnvIntOrDefault("RATE_RESET_HOUR", 0)
	if resetHour < 0 || resetHour > 23 {
		log.Print(nil).Warn("Invalid RATE_RESET_HOUR value; defaulting to 0")
		resetHour = 0
	}
	dailySpec := fmt.Sprintf("0 0 %d * * *", resetHour)
	_, err := cron.AddFunc(dailySpec, func() {
		evicted := limits.Registry().Sweep()
		log.Print(nil).
			WithField("evicted", evicted).
			WithField("resident", limits.Registry().Len()).
			Info("Daily limiter sweep complete")
	})
	if err != nil {
		log.Print(nil).WithField("error", err.Error()).Error("Failed to add limiter sweep cron job")
	}

	// Finished runs stay pollable for a while, then get dropped.
	retention := env.GetEnvDurationOrDefault("RUN_RETENTION", time.Hour)
	_, err = cron.AddFunc("0 */15 * * * *", func() {
		removed := sendings.Runs().Sweep(retention)
		if removed > 0 {
			log.Print(nil).
				WithField("removed", removed).
				WithField("resident", sendings.Runs().Len()).
				Info("Run registry sweep complete")
		}
	})
	if err != nil {
		log.Print(nil).WithField("error", err.Error()).Error("Failed to add run sweep cron job")
	}

	cron.Start()
}
