package types

import (
	pkgWhatsApp "github.com/enviarzap/whatsapp-link-sender/pkg/whatsapp"
)

type RequestClassifyDevice struct {
	UserAgent string `json:"user_agent"`
}

type RequestBuildLink struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	UserAgent string `json:"user_agent"`
}

type RequestPreview struct {
	Template string               `json:"template"`
	Contact  *pkgWhatsApp.Contact `json:"contact,omitempty"`

	// Optional pacing figures; when present the response carries a run
	// duration estimate for the form.
	TotalContacts   int `json:"total_contacts,omitempty"`
	MessageInterval int `json:"message_interval,omitempty"`
	BlockSize       int `json:"block_size,omitempty"`
	BlockPause      int `json:"block_pause,omitempty"`
}

type RequestDirectSend struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	UserAgent string `json:"user_agent"`
}

type RequestStartBulk struct {
	Contacts []pkgWhatsApp.Contact `json:"contacts"`
	Template string                `json:"template"`

	// MessageInterval is in seconds, BlockPause in minutes, matching the
	// units the sending form exposes.
	MessageInterval int `json:"message_interval"`
	BlockSize       int `json:"block_size"`
	BlockPause      int `json:"block_pause"`

	UserAgent string `json:"user_agent"`

	// ConfirmEmptyTemplate acknowledges the "send without a message
	// template" warning the form shows before starting.
	ConfirmEmptyTemplate bool `json:"confirm_empty_template"`
}

type RequestResetLimits struct {
	ClientID string `json:"client_id"`
}
