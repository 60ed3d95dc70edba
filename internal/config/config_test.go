package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Storage.Backend != "file" {
		t.Errorf("default backend = %q, want %q", cfg.Storage.Backend, "file")
	}
	if cfg.Storage.Dir != ".agenda" {
		t.Errorf("default dir = %q, want %q", cfg.Storage.Dir, ".agenda")
	}
	if cfg.Storage.Key != "contacts" {
		t.Errorf("default key = %q, want %q", cfg.Storage.Key, "contacts")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("default log level = %q, want %q", cfg.Log.Level, "warn")
	}
	if !cfg.UI.AltScreen {
		t.Error("default alt screen = false, want true")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	cfgPath := writeConfig(t, `
storage:
  backend: sqlite
  dir: /tmp/agenda
log:
  level: debug
  file: /tmp/agenda.log
ui:
  alt_screen: false
`)

	cfg, err := LoadLayered(cfgPath)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, "sqlite")
	}
	if cfg.Storage.Dir != "/tmp/agenda" {
		t.Errorf("dir = %q, want %q", cfg.Storage.Dir, "/tmp/agenda")
	}
	if cfg.Log.Level != "debug" || cfg.Log.File != "/tmp/agenda.log" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.UI.AltScreen {
		t.Error("alt screen = true, want false")
	}
	// Unset fields retain defaults.
	if cfg.Storage.Key != "contacts" {
		t.Errorf("key = %q, want default %q", cfg.Storage.Key, "contacts")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := LoadLayered("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("LoadLayered() should return defaults for missing file, got error: %v", err)
	}
	want := DefaultConfig()
	if *cfg != want {
		t.Errorf("LoadLayered(missing) = %+v, want defaults %+v", *cfg, want)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := LoadLayered(writeConfig(t, "{{invalid yaml")); err == nil {
		t.Fatal("LoadLayered(invalid YAML) should return error")
	}
}

func TestLoad_UnknownField(t *testing.T) {
	cfgPath := writeConfig(t, `
storage:
  backnd: sqlite
`)

	if _, err := LoadLayered(cfgPath); err == nil {
		t.Fatal("LoadLayered() should return error for unknown field 'backnd'")
	}
}

func TestLoad_EmptyAndCommentOnly(t *testing.T) {
	for _, body := range []string{"", "# just a comment\n"} {
		cfg, err := LoadLayered(writeConfig(t, body))
		if err != nil {
			t.Fatalf("LoadLayered(%q) error = %v", body, err)
		}
		if want := DefaultConfig(); *cfg != want {
			t.Errorf("LoadLayered(%q) = %+v, want defaults %+v", body, *cfg, want)
		}
	}
}

func TestLoad_LayeredPriority(t *testing.T) {
	// Setup: user config sets backend and level, project config overrides level.
	userCfg := writeConfig(t, `
storage:
  backend: sqlite
log:
  level: info
`)
	projectCfg := writeConfig(t, `
log:
  level: error
`)

	cfg, err := LoadLayered(userCfg, projectCfg)
	if err != nil {
		t.Fatalf("LoadLayered() error = %v", err)
	}
	// Backend from user config (project doesn't set it).
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, "sqlite")
	}
	// Level from project config (overrides user).
	if cfg.Log.Level != "error" {
		t.Errorf("level = %q, want %q", cfg.Log.Level, "error")
	}
	// Dir retains default when neither layer sets it.
	if cfg.Storage.Dir != ".agenda" {
		t.Errorf("dir = %q, want default %q", cfg.Storage.Dir, ".agenda")
	}
}

func TestLoadLayered_AllMissing(t *testing.T) {
	cfg, err := LoadLayered("/no/user.yaml", "/no/project.yaml")
	if err != nil {
		t.Fatalf("LoadLayered(all missing) error = %v", err)
	}
	if want := DefaultConfig(); *cfg != want {
		t.Errorf("got %+v, want defaults %+v", *cfg, want)
	}
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name  string
		envs  map[string]string
		check func(*testing.T, Config)
	}{
		{
			name: "AGENDA_BACKEND overrides backend",
			envs: map[string]string{"AGENDA_BACKEND": "memory"},
			check: func(t *testing.T, c Config) {
				if c.Storage.Backend != "memory" {
					t.Errorf("backend = %q, want %q", c.Storage.Backend, "memory")
				}
			},
		},
		{
			name: "AGENDA_DIR overrides dir",
			envs: map[string]string{"AGENDA_DIR": "/custom/dir"},
			check: func(t *testing.T, c Config) {
				if c.Storage.Dir != "/custom/dir" {
					t.Errorf("dir = %q, want %q", c.Storage.Dir, "/custom/dir")
				}
			},
		},
		{
			name: "AGENDA_LOG_LEVEL and AGENDA_LOG_FILE override log",
			envs: map[string]string{"AGENDA_LOG_LEVEL": "debug", "AGENDA_LOG_FILE": "/tmp/a.log"},
			check: func(t *testing.T, c Config) {
				if c.Log.Level != "debug" || c.Log.File != "/tmp/a.log" {
					t.Errorf("log = %+v", c.Log)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envs {
				t.Setenv(k, v)
			}
			cfg := DefaultConfig()
			cfg.ApplyEnv()
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			modify: func(*Config) {},
		},
		{
			name:    "unknown backend",
			modify:  func(c *Config) { c.Storage.Backend = "redis" },
			wantErr: true,
		},
		{
			name:    "empty dir",
			modify:  func(c *Config) { c.Storage.Dir = "" },
			wantErr: true,
		},
		{
			name:   "empty dir with memory backend",
			modify: func(c *Config) { c.Storage.Backend = "memory"; c.Storage.Dir = "" },
		},
		{
			name:    "empty key",
			modify:  func(c *Config) { c.Storage.Key = "" },
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
