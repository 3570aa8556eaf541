package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8762 {
		t.Errorf("port = %d, want 8762", cfg.Port)
	}
	if cfg.DedupWindow != 20*time.Second {
		t.Errorf("dedup window = %v, want 20s", cfg.DedupWindow)
	}
	if cfg.IntervalCapDays != 365 {
		t.Errorf("interval cap = %v, want 365", cfg.IntervalCapDays)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	data := "port: 9100\ndedup_window: 45s\nqueue_size: 64\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9100 {
		t.Errorf("port = %d, want 9100", cfg.Port)
	}
	if cfg.DedupWindow != 45*time.Second {
		t.Errorf("dedup window = %v, want 45s", cfg.DedupWindow)
	}
	if cfg.QueueSize != 64 {
		t.Errorf("queue size = %d, want 64", cfg.QueueSize)
	}
	// Untouched keys keep their defaults.
	if cfg.DBPath != "data/tracker.db" {
		t.Errorf("db path = %q, want default", cfg.DBPath)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	if err := os.WriteFile(path, []byte("port: 9100\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9200")
	t.Setenv("DEDUP_WINDOW", "1m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9200 {
		t.Errorf("port = %d, want env override 9200", cfg.Port)
	}
	if cfg.DedupWindow != time.Minute {
		t.Errorf("dedup window = %v, want 1m", cfg.DedupWindow)
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"PORT": "70000"}},
		{"zero queue", map[string]string{"QUEUE_SIZE": "0"}},
		{"zero interval cap", map[string]string{"INTERVAL_CAP_DAYS": "0"}},
		{"negative retries", map[string]string{"PERSIST_RETRIES": "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(""); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "no-such.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8762 {
		t.Errorf("port = %d, want default", cfg.Port)
	}
}
