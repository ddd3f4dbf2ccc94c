package sendings

import (
	"context"

	"github.com/enviarzap/whatsapp-link-sender/pkg/log"
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

// DirectiveOpener is the server-side stand-in for window.open: the actual
// navigation happens in the polling client, which reads the current links off
// the run status. Open only records that the directive was issued.
type DirectiveOpener struct{}

type noopWindow struct{}

func (noopWindow) Close() {}

func (DirectiveOpener) Open(_ context.Context, links pkgWhatsApp.ChatLinks, plan pkgWhatsApp.ChatOpenPlan) (pkgWhatsApp.WindowHandle, error) {
	log.Print(nil).
		WithField("target", plan.Target).
		WithField("link", links.Primary).
		Debug("Open directive issued")
	return noopWindow{}, nil
}
