package index

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enviarzap/whatsapp-link-sender/pkg/router"
)

func Index(c *fiber.Ctx) error {
	return router.ResponseSuccess(c, "WhatsApp Link Sender REST is running")
}
