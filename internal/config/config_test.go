package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nonexistent")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "release" {
		t.Errorf("mode = %q", cfg.Mode)
	}
	if cfg.Port != 3000 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Errorf("ping_period = %s", cfg.PingPeriod)
	}
	if cfg.WriteTimeout != 5*time.Second {
		t.Errorf("write_timeout = %s", cfg.WriteTimeout)
	}
	if cfg.SendBuffer != 32 {
		t.Errorf("send_buffer = %d", cfg.SendBuffer)
	}
	if len(cfg.ICEServers) != 1 || len(cfg.ICEServers[0].URLs) != 1 {
		t.Fatalf("ice_servers default missing: %+v", cfg.ICEServers)
	}
	if cfg.ICEServers[0].URLs[0] != "stun:stun.l.google.com:19302" {
		t.Errorf("unexpected default STUN server: %v", cfg.ICEServers[0].URLs)
	}
}
