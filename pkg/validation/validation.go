package validation

import (
	"errors"
	"strings"
)

// ValidatePhoneInput ensures a phone field was supplied at all. Length and
// country-prefix rules live in the whatsapp package; this only rejects blank
// request fields before they reach the domain core.
func ValidatePhoneInput(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errors.New("phone is required")
	}
	return nil
}

// ValidateSendingConfig checks the orchestrator tolerance bounds: any positive
// values are accepted, tighter ranges are enforced by the form UI.
func ValidateSendingConfig(messageInterval, blockSize, blockPause int) error {
	if messageInterval < 1 {
		return errors.New("message_interval must be at least 1 second")
	}
	if blockSize < 1 {
		return errors.New("block_size must be at least 1")
	}
	if blockPause < 1 {
		return errors.New("block_pause must be at least 1 minute")
	}
	return nil
}

// ValidateQRSize bounds the requested QR image edge in pixels.
func ValidateQRSize(size int) error {
	if size < 64 || size > 1024 {
		return errors.New("size must be between 64 and 1024 pixels")
	}
	return nil
}
