package limits

import (
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/enviarzap/whatsapp-link-sender/internal/types"
	"github.com/enviarzap/whatsapp-link-sender/pkg/log"
	"github.com/enviarzap/whatsapp-link-sender/pkg/router"
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

var (
	registry *pkgWhatsApp.LimiterRegistry
	settings pkgWhatsApp.LimiterSettings
)

// Init wires the shared limiter registry. Called once from startup before
// any route is served.
func Init(cfg pkgWhatsApp.LimiterSettings, store pkgWhatsApp.LimitStore) {
	settings = cfg
	registry = pkgWhatsApp.NewLimiterRegistry(cfg, store)
}

// Registry exposes the shared limiter registry to the other handler packages
// and the cron routines.
func Registry() *pkgWhatsApp.LimiterRegistry {
	return registry
}

// Settings exposes the quota knobs the registry was built with.
func Settings() pkgWhatsApp.LimiterSettings {
	return settings
}

func clientID(c *fiber.Ctx) string {
	return c.Locals("client_id").(string)
}

// GetStatus reports the client's current quota standing, so the form can
// disable the send button before the server would reject anyway.
func GetStatus(c *fiber.Ctx) error {
	limiter := registry.For(c.UserContext(), clientID(c))
	status := limiter.BulkStatus()
	snapshot := limiter.Snapshot()

	var resLimits typWhatsApp.ResponseLimits
	resLimits.CanSend = status.CanSend
	resLimits.Message = status.Message
	resLimits.Blocked = status.Blocked
	resLimits.SpamBlocked = snapshot.Requests.Blocked
	resLimits.RetryAfterSeconds = int(math.Ceil(status.RemainingTime.Seconds()))
	resLimits.BulkSendsUsed = snapshot.Bulk.Count
	resLimits.BulkSendsMax = settings.MaxBulkSendsPerDay
	resLimits.ContactsUsedToday = snapshot.Bulk.TotalContacts
	resLimits.ContactsMaxPerDay = settings.MaxTotalContactsPerDay
	resLimits.ContactsMaxPerBulk = settings.MaxContactsPerBulk

	return router.ResponseSuccessWithData(c, "Success get rate limit status", resLimits)
}

// Reset wipes a client's quota state. Admin-only escape hatch for support
// cases; the daily reset happens on its own.
func Reset(c *fiber.Ctx) error {
	var reqReset typWhatsApp.RequestResetLimits
	if err := c.BodyParser(&reqReset); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	target := strings.TrimSpace(reqReset.ClientID)
	if target == "" {
		return router.ResponseBadRequest(c, "Client ID is required")
	}

	registry.For(c.UserContext(), target).Reset()
	log.Print(c).WithField("target_client", target).Info("Rate limits reset by admin")

	return router.ResponseSuccess(c, "Success reset rate limits")
}
