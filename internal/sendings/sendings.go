package sendings

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	ctlDevice "github.com/enviarzap/whatsapp-link-sender/internal/device"
	ctlLimits "github.com/enviarzap/whatsapp-link-sender/internal/limits"
	typWhatsApp "github.com/enviarzap/whatsapp-link-sender/internal/types"
	"github.com/enviarzap/whatsapp-link-sender/pkg/env"
	"github.com/enviarzap/whatsapp-link-sender/pkg/router"
	"github.com/enviarzap/whatsapp-link-sender/pkg/validation"
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

var (
	runs   *pkgWhatsApp.RunRegistry
	opener pkgWhatsApp.LinkOpener = DirectiveOpener{}
)

// Init wires the shared run registry. Called once from startup before any
// route is served.
func Init(registry *pkgWhatsApp.RunRegistry) {
	runs = registry
}

// Runs exposes the shared run registry to the cron routines.
func Runs() *pkgWhatsApp.RunRegistry {
	return runs
}

func clientID(c *fiber.Ctx) string {
	return c.Locals("client_id").(string)
}

// Preview resolves a template for the editor: placeholder preview, the
// resolved message for a sample contact, composer stats, and optionally the
// run duration estimate when pacing figures are supplied.
func Preview(c *fiber.Ctx) error {
	var reqPreview typWhatsApp.RequestPreview
	if err := c.BodyParser(&reqPreview); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	var resPreview typWhatsApp.ResponsePreview
	resPreview.Preview = pkgWhatsApp.TemplatePreview(reqPreview.Template)

	if reqPreview.Contact != nil {
		resolved, ok := pkgWhatsApp.ResolveTemplate(reqPreview.Template, *reqPreview.Contact)
		resPreview.Resolved = resolved
		resPreview.HasContent = ok
		resPreview.Stats = pkgWhatsApp.StatsFor(resolved)
	} else {
		resPreview.HasContent = resPreview.Preview != ""
		resPreview.Stats = pkgWhatsApp.StatsFor(resPreview.Preview)
	}

	if reqPreview.TotalContacts > 0 {
		estimate := pkgWhatsApp.EstimateRunTime(
			reqPreview.TotalContacts,
			time.Duration(reqPreview.MessageInterval)*time.Second,
			reqPreview.BlockSize,
			time.Duration(reqPreview.BlockPause)*time.Minute,
		)
		resPreview.EstimatedSeconds = int(estimate.Seconds())
	}

	return router.ResponseSuccessWithData(c, "Success preview template", resPreview)
}

// SendDirect builds the open directive for a single chat. Single sends do
// not consume bulk quota; only bulk runs do.
func SendDirect(c *fiber.Ctx) error {
	var reqSend typWhatsApp.RequestDirectSend
	if err := c.BodyParser(&reqSend); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	if err := validation.ValidatePhoneInput(reqSend.Phone); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	kind := ctlDevice.Resolve(c, reqSend.UserAgent)
	chatLinks := pkgWhatsApp.BuildChatLinks(kind, reqSend.Phone, reqSend.Message)
	plan := pkgWhatsApp.OpenPlanFor(kind)

	var resSend typWhatsApp.ResponseBuildLink
	resSend.Phone = pkgWhatsApp.NormalizePhone(reqSend.Phone)
	resSend.Valid = pkgWhatsApp.IsValidPhone(reqSend.Phone)
	resSend.Device = string(kind)
	resSend.Links = chatLinks
	resSend.Plan = typWhatsApp.OpenPlanFrom(plan)

	return router.ResponseSuccessWithData(c, "Success build send directive", resSend)
}

// StartBulk launches a bulk run for the client. One live run per client;
// quota checks happen inside the runner before anything opens.
func StartBulk(c *fiber.Ctx) error {
	var reqBulk typWhatsApp.RequestStartBulk
	if err := c.BodyParser(&reqBulk); err != nil {
		return router.ResponseBadRequest(c, "Failed parse body request")
	}

	// Form defaults: 15s between messages, blocks of 10, 5min pause.
	if reqBulk.MessageInterval == 0 {
		reqBulk.MessageInterval = 15
	}
	if reqBulk.BlockSize == 0 {
		reqBulk.BlockSize = 10
	}
	if reqBulk.BlockPause == 0 {
		reqBulk.BlockPause = 5
	}
	if err := validation.ValidateSendingConfig(reqBulk.MessageInterval, reqBulk.BlockSize, reqBulk.BlockPause); err != nil {
		return router.ResponseBadRequest(c, err.Error())
	}

	kind := ctlDevice.Resolve(c, reqBulk.UserAgent)
	cfg := pkgWhatsApp.RunConfig{
		MessageInterval: time.Duration(reqBulk.MessageInterval) * time.Second,
		BlockSize:       reqBulk.BlockSize,
		BlockPause:      time.Duration(reqBulk.BlockPause) * time.Minute,
		PreSendDelay:    env.GetEnvDurationOrDefault("SEND_START_DELAY", time.Second),
	}

	client := clientID(c)
	limiter := ctlLimits.Registry().For(c.UserContext(), client)
	runner := pkgWhatsApp.NewRunner(kind, reqBulk.Contacts, reqBulk.Template, cfg, opener, limiter)

	err := runs.Start(client, runner, pkgWhatsApp.StartOptions{
		AllowEmptyTemplate: reqBulk.ConfirmEmptyTemplate,
	})
	if err != nil {
		var limitErr *pkgWhatsApp.LimitError
		switch {
		case errors.As(err, &limitErr):
			return router.ResponseTooManyRequests(c, limitErr.Status.Message, fiber.Map{
				"blocked":             limitErr.Status.Blocked,
				"retry_after_seconds": int(limitErr.Status.RemainingTime.Seconds()),
			})
		case errors.Is(err, pkgWhatsApp.ErrRunActive):
			return router.ResponseConflict(c, "A bulk run is already active for this client", nil)
		case errors.Is(err, pkgWhatsApp.ErrEmptyTemplate):
			// The UI turns this into the "send without a message?" dialog
			// and retries with the flag set.
			return router.ResponseConflict(c, err.Error(), fiber.Map{
				"confirm_empty_template_required": true,
			})
		case errors.Is(err, pkgWhatsApp.ErrNoContacts):
			return router.ResponseBadRequest(c, err.Error())
		default:
			return router.ResponseInternalError(c, err.Error())
		}
	}

	return router.ResponseCreatedWithData(c, "Success start bulk run",
		typWhatsApp.RunStatusFrom(runner.Status()))
}

func runForRequest(c *fiber.Ctx) (*pkgWhatsApp.Runner, error) {
	runID := c.Params("run_id")
	runner, ok := runs.Get(runID)
	if !ok {
		return nil, router.ResponseNotFound(c, "Run not found")
	}
	if owner, ok := runs.Owner(runID); !ok || owner != clientID(c) {
		return nil, router.ResponseNotFound(c, "Run not found")
	}
	return runner, nil
}

// GetRun returns the live status snapshot for polling.
func GetRun(c *fiber.Ctx) error {
	runner, err := runForRequest(c)
	if runner == nil {
		return err
	}
	return router.ResponseSuccessWithData(c, "Success get run status",
		typWhatsApp.RunStatusFrom(runner.Status()))
}

// ConfirmRun resumes a run parked on the confirmation gate.
func ConfirmRun(c *fiber.Ctx) error {
	runner, err := runForRequest(c)
	if runner == nil {
		return err
	}

	if err := runner.Confirm(); err != nil {
		return router.ResponseConflict(c, err.Error(),
			typWhatsApp.RunStatusFrom(runner.Status()))
	}
	return router.ResponseSuccessWithData(c, "Success confirm send",
		typWhatsApp.RunStatusFrom(runner.Status()))
}

// CancelRun interrupts a run at its next suspension point.
func CancelRun(c *fiber.Ctx) error {
	runner, err := runForRequest(c)
	if runner == nil {
		return err
	}

	runner.Cancel()
	return router.ResponseSuccessWithData(c, "Success cancel run",
		typWhatsApp.RunStatusFrom(runner.Status()))
}
