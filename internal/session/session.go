package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	typWhatsApp "github.com/enviarzap/whatsapp-link-sender/internal/types"
	"github.com/enviarzap/whatsapp-link-sender/pkg/auth"
	"github.com/enviarzap/whatsapp-link-sender/pkg/env"
	"github.com/enviarzap/whatsapp-link-sender/pkg/router"
)

// Create issues an anonymous client session. The client ID is random and
// carries no user identity; it only keys the per-client rate limit state the
// way a browser profile would.
func Create(c *fiber.Ctx) error {
	clientID := uuid.NewString()
	timeout := env.GetEnvDurationOrDefault("RATE_SESSION_TIMEOUT", 24*time.Hour)

	token, err := auth.GenerateClientToken(clientID, timeout)
	if err != nil {
		return router.ResponseInternalError(c, err.Error())
	}

	var resSession typWhatsApp.ResponseSession
	resSession.ClientID = clientID
	resSession.Token = token
	resSession.ExpiresInSeconds = int(timeout.Seconds())

	return router.ResponseCreatedWithData(c, "Success create client session", resSession)
}
