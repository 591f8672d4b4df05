// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestStatusHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
		marker string
	}{
		{"success", RenderSuccess, StatusIndicators.Success},
		{"error", RenderError, StatusIndicators.Error},
		{"warning", RenderWarning, StatusIndicators.Warning},
		{"info", RenderInfo, StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("done")
			if !strings.Contains(out, tt.marker) || !strings.Contains(out, "done") {
				t.Errorf("got %q, want marker %q and text", out, tt.marker)
			}
		})
	}
}

func TestNewTheme_ForcedBackground(t *testing.T) {
	if th := NewTheme("light"); th.IsDark {
		t.Error("light theme reported dark")
	}
	if th := NewTheme("dark"); !th.IsDark {
		t.Error("dark theme reported light")
	}
}
