package whatsapp

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// ChatLinks holds the device-appropriate deep link plus the universal wa.me
// fallback for one chat.
type ChatLinks struct {
	Primary  string `json:"primary"`
	Fallback string `json:"fallback"`
}

// ChatOpenPlan tells the browser layer how to open a ChatLinks pair.
type ChatOpenPlan struct {
	// Target is "navigate" (replace the current document) or "new_tab".
	Target string `json:"target"`
	// FallbackAfter is how long to wait before trying the fallback link.
	// Zero means the fallback is never opened automatically.
	FallbackAfter time.Duration `json:"-"`
	// FallbackIfVisible opens the fallback only while the page is still
	// visible. This approximates "the app did not intercept the navigation"
	// and is inherently racy across devices and browsers - it is a
	// best-effort heuristic, not a guarantee.
	FallbackIfVisible bool `json:"fallback_if_visible"`
	// RetainWindow keeps a handle to the opened tab so it can be closed
	// once the user confirms the message went out.
	RetainWindow bool `json:"retain_window"`
}

const (
	openTargetNavigate = "navigate"
	openTargetNewTab   = "new_tab"

	mobileFallbackDelay = time.Second
)

// encodeMessage percent-encodes a message the way encodeURIComponent does:
// query escaping with %20 instead of + for spaces.
func encodeMessage(message string) string {
	return strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// BuildChatLinks constructs the WhatsApp deep link for the given device plus
// the universal fallback. The phone is normalized on the way in; the text
// parameter is omitted entirely when the message is empty, since WhatsApp
// clients treat a missing parameter and an empty one differently for prefill.
func BuildChatLinks(kind DeviceKind, phone string, message string) ChatLinks {
	digits := NormalizePhone(phone)
	text := encodeMessage(message)
	if message == "" {
		text = ""
	}

	var primary string
	if kind == DeviceMobile {
		primary = "whatsapp://send?phone=" + digits
	} else {
		primary = "https://web.whatsapp.com/send?phone=" + digits
	}
	if text != "" {
		primary += "&text=" + text
	}

	fallback := "https://wa.me/" + digits
	if text != "" {
		fallback += "?text=" + text
	}

	return ChatLinks{Primary: primary, Fallback: fallback}
}

// OpenPlanFor returns the opening policy for a device class. Mobile navigates
// the current document into the app protocol and arms the delayed fallback;
// desktop and tablet open WhatsApp Web in a new tab and retain the handle.
func OpenPlanFor(kind DeviceKind) ChatOpenPlan {
	if kind == DeviceMobile {
		return ChatOpenPlan{
			Target:            openTargetNavigate,
			FallbackAfter:     mobileFallbackDelay,
			FallbackIfVisible: true,
		}
	}
	return ChatOpenPlan{
		Target:       openTargetNewTab,
		RetainWindow: true,
	}
}

// WindowHandle is a retained reference to an opened chat window.
type WindowHandle interface {
	Close()
}

// LinkOpener performs the browser-side open of a chat link pair. The bulk
// orchestrator only talks to this interface so the send loop stays testable;
// the HTTP layer supplies an implementation that publishes open directives to
// the polling UI.
type LinkOpener interface {
	Open(ctx context.Context, links ChatLinks, plan ChatOpenPlan) (WindowHandle, error)
}
