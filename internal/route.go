package internal

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enviarzap/whatsapp-link-sender/pkg/auth"
	"github.com/enviarzap/whatsapp-link-sender/pkg/router"

	ctlDevice "github.com/enviarzap/whatsapp-link-sender/internal/device"
	ctlIndex "github.com/enviarzap/whatsapp-link-sender/internal/index"
	ctlLimits "github.com/enviarzap/whatsapp-link-sender/internal/limits"
	ctlLinks "github.com/enviarzap/whatsapp-link-sender/internal/links"
	ctlSendings "github.com/enviarzap/whatsapp-link-sender/internal/sendings"
	ctlSession "github.com/enviarzap/whatsapp-link-sender/internal/session"
)

func Routes(app *fiber.App) {
	// Route for Index
	// ---------------------------------------------
	if router.BaseURL == "" {
		app.Get("/", ctlIndex.Index)
	} else {
		app.Get(router.BaseURL, ctlIndex.Index)
		app.Get(router.BaseURL+"/", ctlIndex.Index)
	}

	// ============================================================
	// PUBLIC ROUTES (no authentication)
	// Link building and previews are stateless and free to call.
	// ============================================================
	app.Post(router.BaseURL+"/session", ctlSession.Create)
	app.Post(router.BaseURL+"/device/classify", ctlDevice.Classify)
	app.Post(router.BaseURL+"/links", ctlLinks.Build)
	app.Get(router.BaseURL+"/links/qr", ctlLinks.QR)
	app.Post(router.BaseURL+"/messages/preview", ctlSendings.Preview)

	// ============================================================
	// CLIENT ROUTES (JWT Bearer token authentication)
	// Everything that touches per-client rate limit state.
	// ============================================================
	clientMiddleware := auth.ClientAuth()

	app.Post(router.BaseURL+"/send", clientMiddleware, ctlSendings.SendDirect)
	app.Post(router.BaseURL+"/bulk", clientMiddleware, ctlSendings.StartBulk)
	app.Get(router.BaseURL+"/bulk/:run_id", clientMiddleware, ctlSendings.GetRun)
	app.Post(router.BaseURL+"/bulk/:run_id/confirm", clientMiddleware, ctlSendings.ConfirmRun)
	app.Post(router.BaseURL+"/bulk/:run_id/cancel", clientMiddleware, ctlSendings.CancelRun)
	app.Get(router.BaseURL+"/limits", clientMiddleware, ctlLimits.GetStatus)

	// ============================================================
	// ADMIN ROUTES (X-Admin-Secret authentication)
	// ============================================================
	adminMiddleware := auth.AdminAuth()

	app.Post(router.BaseURL+"/admin/limits/reset", adminMiddleware, ctlLimits.Reset)
}
