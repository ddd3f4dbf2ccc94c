package internal

import (
	"github.com/enviarzap/whatsapp-link-sender/internal/limits"
	"github.com/enviarzap/whatsapp-link-sender/internal/sendings"
	"github.com/enviarzap/whatsapp-link-sender/pkg/env"
	"github.com/enviarzap/whatsapp-link-sender/pkg/log"
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

func Startup() {
	log.Print(nil).Info("Running Startup Tasks")

	store, err := pkgWhatsApp.NewLimitStoreFromEnv()
	if err != nil {
		log.Print(nil).Fatal("Failed to initialize rate limit store: " + err.Error())
	}

	cfg := pkgWhatsApp.DefaultLimiterSettings()
	limits.Init(cfg, store)
	sendings.Init(pkgWhatsApp.NewRunRegistry())

	log.Print(nil).
		WithField("store_driver", env.GetEnvStringOrDefault("RATE_STORE_DRIVER", "memory")).
		WithField("max_bulk_sends_per_day", cfg.MaxBulkSendsPerDay).
		WithField("max_contacts_per_bulk", cfg.MaxContactsPerBulk).
		WithField("max_total_contacts_per_day", cfg.MaxTotalContactsPerDay).
		Info("Rate limiting initialized")
}
