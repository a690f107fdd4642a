package tun

import (
	"testing"

	"github.com/songgao/water"
)

func TestWaterConfig(t *testing.T) {
	tests := []struct {
		name string
	}{
		{"tun0"},
		{"utun7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := waterConfig(tt.name)
			if cfg.DeviceType != water.TUN {
				t.Errorf("waterConfig(%q).DeviceType = %v, want water.TUN", tt.name, cfg.DeviceType)
			}
			if cfg.Name != tt.name {
				t.Errorf("waterConfig(%q).Name = %q, want %q", tt.name, cfg.Name, tt.name)
			}
		})
	}
}
