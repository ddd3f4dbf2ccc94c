package whatsapp

import (
	"testing"
	"time"
)

func TestResolveTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		contact  Contact
		want     string
		wantOK   bool
	}{
		{
			"all placeholders resolve",
			"Oi {value1}, tudo {value2}?",
			Contact{Phone: "11999999999", Value1: "Ana", Value2: "bem"},
			"Oi Ana, tudo bem?", true,
		},
		{
			"unresolved placeholder is dropped and punctuation repaired",
			"Oi {value1}, tudo {value2}?",
			Contact{Phone: "11999999999", Value1: "Ana"},
			"Oi Ana, tudo?", true,
		},
		{
			"values are trimmed before substitution",
			"Oi {value1}!",
			Contact{Phone: "11999999999", Value1: "  Ana  "},
			"Oi Ana!", true,
		},
		{
			"whitespace runs collapse to one space",
			"Oi   {value1}   tudo bem",
			Contact{Phone: "11999999999", Value1: "Ana"},
			"Oi Ana tudo bem", true,
		},
		{
			"empty template joins values with newlines",
			"",
			Contact{Phone: "11999999999", Value1: "A", Value3: "B"},
			"A\nB", true,
		},
		{
			"empty template and no values means no message",
			"",
			Contact{Phone: "11999999999"},
			"", false,
		},
		{
			"whitespace-only template counts as empty",
			"   ",
			Contact{Phone: "11999999999", Value1: "A"},
			"A", true,
		},
		{
			"template without placeholders passes through",
			"Mensagem fixa",
			Contact{Phone: "11999999999", Value1: "Ana"},
			"Mensagem fixa", true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ResolveTemplate(tt.template, tt.contact)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ResolveTemplate(%q, %+v) = (%q, %v), want (%q, %v)",
					tt.template, tt.contact, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTemplatePreview(t *testing.T) {
	t.Parallel()

	got := TemplatePreview("Oi {value1}, seu pedido {value3} chegou")
	want := "Oi [Variável 1], seu pedido [Variável 3] chegou"
	if got != want {
		t.Errorf("TemplatePreview = %q, want %q", got, want)
	}
}

func TestStatsFor(t *testing.T) {
	t.Parallel()

	t.Run("graphemes count user-perceived characters", func(t *testing.T) {
		t.Parallel()
		stats := StatsFor("Olá 👋")
		if stats.Graphemes != 5 {
			t.Errorf("Graphemes = %d, want 5", stats.Graphemes)
		}
		if stats.Emojis != 1 {
			t.Errorf("Emojis = %d, want 1", stats.Emojis)
		}
	})

	t.Run("empty message", func(t *testing.T) {
		t.Parallel()
		stats := StatsFor("")
		if stats.Graphemes != 0 || stats.Emojis != 0 {
			t.Errorf("StatsFor(\"\") = %+v, want zeros", stats)
		}
	})
}

func TestEstimateRunTime(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		contacts  int
		interval  time.Duration
		blockSize int
		pause     time.Duration
		want      time.Duration
	}{
		{"single block has no pause", 7, 15 * time.Second, 10, 5 * time.Minute, 105 * time.Second},
		{"three blocks with two pauses", 25, 15 * time.Second, 10, 5 * time.Minute, 450*time.Second + 10*time.Minute},
		{"zero contacts", 0, 15 * time.Second, 10, 5 * time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EstimateRunTime(tt.contacts, tt.interval, tt.blockSize, tt.pause)
			if got != tt.want {
				t.Errorf("EstimateRunTime = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasValues(t *testing.T) {
	t.Parallel()

	if (Contact{Phone: "1"}).HasValues() {
		t.Error("contact without values should report false")
	}
	if !(Contact{Phone: "1", Value5: "x"}).HasValues() {
		t.Error("contact with only value5 should report true")
	}
	if (Contact{Phone: "1", Value2: "   "}).HasValues() {
		t.Error("whitespace-only value should not count")
	}
}
