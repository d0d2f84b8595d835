package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:8000" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
	if cfg.TickInterval != 33*time.Millisecond {
		t.Fatalf("tick = %v", cfg.TickInterval)
	}
	if cfg.PingPeriod() != 54*time.Second {
		t.Fatalf("ping period = %v", cfg.PingPeriod())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("ADDR", ":9000")
	t.Setenv("PUBLIC_URL", "wss://game.example/")
	t.Setenv("TICK_INTERVAL", "50ms")
	t.Setenv("SUBSCRIBER_BUFFER", "8")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.PublicURL != "wss://game.example" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.TickInterval != 50*time.Millisecond || cfg.SubscriberBuffer != 8 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"TICK_INTERVAL": "0s",
		"PUBLIC_URL":    "http://game.example",
		"EVENT_BUFFER":  "-1",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadRejectsUnparseable(t *testing.T) {
	t.Setenv("TICK_INTERVAL", "soon")
	if _, err := Load(); err == nil {
		t.Fatalf("expected parse error")
	}
}
