package types

import (
	"math"

	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

type ResponseSession struct {
	ClientID         string `json:"client_id"`
	Token            string `json:"token"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

type ResponseClassifyDevice struct {
	Device string `json:"device"`
}

// OpenPlan is the wire form of a chat open plan, with the fallback delay in
// milliseconds instead of a Go duration.
type OpenPlan struct {
	Target            string `json:"target"`
	FallbackAfterMs   int64  `json:"fallback_after_ms"`
	FallbackIfVisible bool   `json:"fallback_if_visible"`
	RetainWindow      bool   `json:"retain_window"`
}

func OpenPlanFrom(p pkgWhatsApp.ChatOpenPlan) OpenPlan {
	return OpenPlan{
		Target:            p.Target,
		FallbackAfterMs:   p.FallbackAfter.Milliseconds(),
		FallbackIfVisible: p.FallbackIfVisible,
		RetainWindow:      p.RetainWindow,
	}
}

type ResponseBuildLink struct {
	Phone  string               `json:"phone"`
	Valid  bool                 `json:"valid"`
	Device string               `json:"device"`
	Links  pkgWhatsApp.ChatLinks `json:"links"`
	Plan   OpenPlan             `json:"plan"`
}

type ResponsePreview struct {
	Preview    string                    `json:"preview"`
	Resolved   string                    `json:"resolved,omitempty"`
	HasContent bool                      `json:"has_content"`
	Stats      pkgWhatsApp.TemplateStats `json:"stats"`

	EstimatedSeconds int `json:"estimated_seconds,omitempty"`
}

type ResponseRunStatus struct {
	RunID               string                 `json:"run_id"`
	Phase               string                 `json:"phase"`
	IsActive            bool                   `json:"is_active"`
	CurrentBlock        int                    `json:"current_block"`
	TotalBlocks         int                    `json:"total_blocks"`
	CurrentContact      int                    `json:"current_contact"`
	TotalContacts       int                    `json:"total_contacts"`
	WaitingConfirmation bool                   `json:"waiting_confirmation"`
	Error               string                 `json:"error,omitempty"`
	Message             string                 `json:"message,omitempty"`
	RemainingSeconds    int                    `json:"remaining_seconds"`
	CurrentLinks        *pkgWhatsApp.ChatLinks `json:"current_links,omitempty"`
	OpenPlan            *OpenPlan              `json:"open_plan,omitempty"`
}

func RunStatusFrom(s pkgWhatsApp.SendingStatus) ResponseRunStatus {
	out := ResponseRunStatus{
		RunID:               s.RunID,
		Phase:               string(s.Phase),
		IsActive:            s.IsActive,
		CurrentBlock:        s.CurrentBlock,
		TotalBlocks:         s.TotalBlocks,
		CurrentContact:      s.CurrentContact,
		TotalContacts:       s.TotalContacts,
		WaitingConfirmation: s.WaitingConfirmation,
		Error:               s.Error,
		Message:             s.Message,
		RemainingSeconds:    int(math.Ceil(s.RemainingTime.Seconds())),
		CurrentLinks:        s.CurrentLinks,
	}
	if s.OpenPlan != nil {
		plan := OpenPlanFrom(*s.OpenPlan)
		out.OpenPlan = &plan
	}
	return out
}

type ResponseLimits struct {
	CanSend           bool   `json:"can_send"`
	Message           string `json:"message,omitempty"`
	Blocked           bool   `json:"blocked"`
	SpamBlocked       bool   `json:"spam_blocked"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`

	BulkSendsUsed      int `json:"bulk_sends_used"`
	BulkSendsMax       int `json:"bulk_sends_max"`
	ContactsUsedToday  int `json:"contacts_used_today"`
	ContactsMaxPerDay  int `json:"contacts_max_per_day"`
	ContactsMaxPerBulk int `json:"contacts_max_per_bulk"`
}
