package whatsapp

import "testing"

func TestBuildChatLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		kind         DeviceKind
		phone        string
		message      string
		wantPrimary  string
		wantFallback string
	}{
		{
			"desktop with accented message",
			DeviceDesktop, "11999999999", "Olá",
			"https://web.whatsapp.com/send?phone=5511999999999&text=Ol%C3%A1",
			"https://wa.me/5511999999999?text=Ol%C3%A1",
		},
		{
			"mobile uses app protocol",
			DeviceMobile, "11999999999", "Olá",
			"whatsapp://send?phone=5511999999999&text=Ol%C3%A1",
			"https://wa.me/5511999999999?text=Ol%C3%A1",
		},
		{
			"tablet behaves like desktop",
			DeviceTablet, "11999999999", "Oi",
			"https://web.whatsapp.com/send?phone=5511999999999&text=Oi",
			"https://wa.me/5511999999999?text=Oi",
		},
		{
			"empty message omits text parameter entirely",
			DeviceDesktop, "11999999999", "",
			"https://web.whatsapp.com/send?phone=5511999999999",
			"https://wa.me/5511999999999",
		},
		{
			"spaces become percent twenty",
			DeviceMobile, "11999999999", "bom dia",
			"whatsapp://send?phone=5511999999999&text=bom%20dia",
			"https://wa.me/5511999999999?text=bom%20dia",
		},
		{
			"phone is normalized on the way in",
			DeviceDesktop, "(11) 99999-9999", "",
			"https://web.whatsapp.com/send?phone=5511999999999",
			"https://wa.me/5511999999999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := BuildChatLinks(tt.kind, tt.phone, tt.message)
			if got.Primary != tt.wantPrimary {
				t.Errorf("Primary = %q, want %q", got.Primary, tt.wantPrimary)
			}
			if got.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %q, want %q", got.Fallback, tt.wantFallback)
			}
		})
	}
}

func TestOpenPlanFor(t *testing.T) {
	t.Parallel()

	t.Run("mobile navigates with delayed fallback", func(t *testing.T) {
		t.Parallel()
		plan := OpenPlanFor(DeviceMobile)
		if plan.Target != openTargetNavigate {
			t.Errorf("Target = %q, want %q", plan.Target, openTargetNavigate)
		}
		if plan.FallbackAfter != mobileFallbackDelay {
			t.Errorf("FallbackAfter = %v, want %v", plan.FallbackAfter, mobileFallbackDelay)
		}
		if !plan.FallbackIfVisible {
			t.Error("FallbackIfVisible should be set for mobile")
		}
		if plan.RetainWindow {
			t.Error("mobile navigation must not retain a window handle")
		}
	})

	t.Run("desktop opens new tab and retains window", func(t *testing.T) {
		t.Parallel()
		plan := OpenPlanFor(DeviceDesktop)
		if plan.Target != openTargetNewTab {
			t.Errorf("Target = %q, want %q", plan.Target, openTargetNewTab)
		}
		if plan.FallbackAfter != 0 {
			t.Errorf("FallbackAfter = %v, want 0", plan.FallbackAfter)
		}
		if !plan.RetainWindow {
			t.Error("desktop plan should retain the window handle")
		}
	})

	t.Run("tablet matches desktop", func(t *testing.T) {
		t.Parallel()
		if OpenPlanFor(DeviceTablet) != OpenPlanFor(DeviceDesktop) {
			t.Error("tablet and desktop plans should be identical")
		}
	})
}
