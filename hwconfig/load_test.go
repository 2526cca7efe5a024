package hwconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
panel:
  pixel_clock: 9MHz
  double_fb: true
ui:
  refresh: full-repaint
  swap_timeout: 250ms
`
	c, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Panel.PixelClock.Frequency != 9*physic.MegaHertz {
		t.Fatalf("PixelClock = %v, want 9MHz", c.Panel.PixelClock)
	}
	if c.UI.Refresh != "full-repaint" || c.UI.SwapTimeout != 250*time.Millisecond {
		t.Fatalf("UI = %+v", c.UI)
	}
	if c.Panel.Width != 480 || c.Touch.IRQ != 36 {
		t.Fatalf("defaults lost: width %d irq %d", c.Panel.Width, c.Touch.IRQ)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"syntax", "panel: [", "parse hardware config"},
		{"frequency", "panel:\n  pixel_clock: fast\n", "frequency"},
		{"invalid", "ui:\n  refresh: sometimes\n", "invalid hardware config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Parse() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadRoundTrip(t *testing.T) {
	want := Default()
	want.UI.SwapTimeout = 100 * time.Millisecond
	data, err := Marshal(&want)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Panel.PixelClock != want.Panel.PixelClock || got.UI != want.UI || got.Touch != want.Touch {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}
