package links

import (
	"github.com/gofiber/fiber/v2"

	ctlDevice "github.com/enviarzap/whatsapp-link-sender/internal/device"
	typWhatsApp "github.com/enviarzap/whatsapp-link-sender/internal/types"
	"github.com/enviarzap/whatsapp-link-sender/pkg/router"
	"github.com/enviarzap/whatsapp-link-sender/pkg/validation"
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

// Build constructs the device-appropriate deep link plus the universal
// fallback for one chat. Invalid phones still get links back; the valid flag
// lets the form warn without blocking the user.
func Build(c *fiber.Ctx) error {
	var reqBuild typWhatsApp.RequestBuildLink
	if err := c.BodyParser(&reqBuild); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	if err := validation.ValidatePhoneInput(reqBuild.Phone); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	kind := ctlDevice.Resolve(c, reqBuild.UserAgent)
	chatLinks := pkgWhatsApp.BuildChatLinks(kind, reqBuild.Phone, reqBuild.Message)
	plan := pkgWhatsApp.OpenPlanFor(kind)

	var resBuild typWhatsApp.ResponseBuildLink
	resBuild.Phone = pkgWhatsApp.NormalizePhone(reqBuild.Phone)
	resBuild.Valid = pkgWhatsApp.IsValidPhone(reqBuild.Phone)
	resBuild.Device = string(kind)
	resBuild.Links = chatLinks
	resBuild.Plan = typWhatsApp.OpenPlanFrom(plan)

	return router.ResponseSuccessWithData(c, "Success build chat links", resBuild)
}

// QR renders the chat link as a QR image, so a desktop user can hand the
// conversation to their phone.
func QR(c *fiber.Ctx) error {
	phone := c.Query("phone")
	message := c.Query("text")
	size := c.QueryInt("size", 256)
	format := c.Query("format", "png")

	if err := validation.ValidatePhoneInput(phone); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}
	if err := validation.ValidateQRSize(size); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	image, err := pkgWhatsApp.ChatLinkQR(phone, message, size, format)
	if err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	switch format {
	case "jpeg", "jpg":
		c.Set(fiber.HeaderContentType, "image/jpeg")
	default:
		c.Set(fiber.HeaderContentType, "image/png")
	}
	return c.Send(image)
}
