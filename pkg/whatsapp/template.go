package whatsapp

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/forPelevin/gomoji"
	"github.com/rivo/uniseg"
)

var (
	templatePlaceholders = regexp.MustCompile(`\{value[1-5]\}`)
	whitespaceRuns       = regexp.MustCompile(`\s+`)
	spaceBeforePunct     = regexp.MustCompile(`\s+([.,!?])`)
)

// Contact is one recipient row. The phone stays exactly as the user typed it;
// normalization happens at link-build time.
type Contact struct {
	Phone  string `json:"phone"`
	Value1 string `json:"value1,omitempty"`
	Value2 string `json:"value2,omitempty"`
	Value3 string `json:"value3,omitempty"`
	Value4 string `json:"value4,omitempty"`
	Value5 string `json:"value5,omitempty"`
}

func (c Contact) values() []string {
	return []string{c.Value1, c.Value2, c.Value3, c.Value4, c.Value5}
}

// HasValues reports whether any of the five template variables is filled in.
func (c Contact) HasValues() bool {
	for _, v := range c.values() {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// ResolveTemplate fills {value1}..{value5} with the contact's trimmed fields.
// Unresolved placeholders are dropped rather than left literal, then the
// whitespace damage is repaired: runs collapse to one space, spaces before
// punctuation go away, the ends get trimmed.
//
// An empty template falls back to the contact's non-empty values joined by
// newlines ("use the data as the message"). With no values either, the second
// return is false: there is no message and the deep link is built without a
// text parameter.
func ResolveTemplate(template string, c Contact) (string, bool) {
	if strings.TrimSpace(template) == "" {
		if !c.HasValues() {
			return "", false
		}
		var parts []string
		for _, v := range c.values() {
			if strings.TrimSpace(v) != "" {
				parts = append(parts, strings.TrimSpace(v))
			}
		}
		return strings.Join(parts, "\n"), true
	}

	message := template
	for i, v := range c.values() {
		if strings.TrimSpace(v) == "" {
			continue
		}
		placeholder := fmt.Sprintf("{value%d}", i+1)
		message = strings.ReplaceAll(message, placeholder, strings.TrimSpace(v))
	}

	message = templatePlaceholders.ReplaceAllString(message, "")
	message = whitespaceRuns.ReplaceAllString(message, " ")
	message = spaceBeforePunct.ReplaceAllString(message, "$1")
	return strings.TrimSpace(message), true
}

// TemplatePreview renders the display-only preview: placeholders become
// bracketed human labels. This never reaches the send path.
func TemplatePreview(template string) string {
	preview := template
	for i := 1; i <= 5; i++ {
		preview = strings.ReplaceAll(preview,
			fmt.Sprintf("{value%d}", i),
			fmt.Sprintf("[Variável %d]", i))
	}
	return preview
}

// TemplateStats describes a resolved message for the editor UI.
type TemplateStats struct {
	// Graphemes counts user-perceived characters, which is what the
	// WhatsApp composer shows (a flag emoji is one, not four bytes).
	Graphemes int `json:"graphemes"`
	Emojis    int `json:"emojis"`
}

// StatsFor computes editor stats for a message.
func StatsFor(message string) TemplateStats {
	return TemplateStats{
		Graphemes: uniseg.GraphemeClusterCount(message),
		Emojis:    len(gomoji.CollectAll(message)),
	}
}

// EstimateRunTime reproduces the duration figure the form shows before a bulk
// run: per-block send time for every block plus the pauses between blocks.
func EstimateRunTime(totalContacts int, interval time.Duration, blockSize int, pause time.Duration) time.Duration {
	if totalContacts == 0 || blockSize < 1 {
		return 0
	}
	blocks := int(math.Ceil(float64(totalContacts) / float64(blockSize)))
	perBlock := interval * time.Duration(min(totalContacts, blockSize))
	return perBlock*time.Duration(blocks) + time.Duration(blocks-1)*pause
}
