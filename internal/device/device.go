package device

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	typWhatsApp "github.com/enviarzap/whatsapp-link-sender/internal/types"
	"github.com/enviarzap/whatsapp-link-sender/pkg/router"
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

// Resolve picks the user agent to classify: an explicit one from the request
// body wins, otherwise the request's own User-Agent header.
func Resolve(c *fiber.Ctx, explicit string) pkgWhatsApp.DeviceKind {
	ua := strings.TrimSpace(explicit)
	if ua == "" {
		ua = c.Get(fiber.HeaderUserAgent)
	}
	return pkgWhatsApp.ClassifyDevice(ua)
}

func Classify(c *fiber.Ctx) error {
	var reqClassify typWhatsApp.RequestClassifyDevice
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&reqClassify); err != nil {
			return router.ResponseBadRequest(c, "Failed parse body request")
		}
	}

	kind := Resolve(c, reqClassify.UserAgent)

	var resClassify typWhatsApp.ResponseClassifyDevice
	resClassify.Device = string(kind)

	return router.ResponseSuccessWithData(c, "Success classify device", resClassify)
}
