package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfigPath(t *testing.T) string {
	t.Helper()

	// Get the project root by going up from internal/config
	projectRoot, err := filepath.Abs("../../")
	if err != nil {
		t.Fatalf("failed to get project root: %v", err)
	}

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	// Test basic config fields
	if cfg.Title == "" {
		t.Error("Config.Title should not be empty")
	}

	if cfg.Webserver.Port == 0 {
		t.Error("Webserver.Port should not be 0")
	}

	if cfg.Webserver.URL == "" {
		t.Error("Webserver.URL should not be empty")
	}

	// Test DB config
	if cfg.DB.Host == "" {
		t.Error("DB.Host should not be empty")
	}

	// Test invitation settings with defaults applied
	if cfg.Invitation.ExpiryDays == 0 {
		t.Error("Invitation.ExpiryDays should have a default")
	}

	if cfg.Invitation.Window() != time.Duration(cfg.Invitation.ExpiryDays)*24*time.Hour {
		t.Errorf("Invitation.Window() = %v, want %v days", cfg.Invitation.Window(), cfg.Invitation.ExpiryDays)
	}

	if cfg.Invitation.TokenLength == 0 {
		t.Error("Invitation.TokenLength should have a default")
	}
}

func TestReadConfigJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Overridden","Invitation":{"ExpiryDays":14}}`)

	cfg, err := ReadConfig(testConfigPath(t))
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	if cfg.Title != "Overridden" {
		t.Errorf("Title = %q, want %q", cfg.Title, "Overridden")
	}

	if cfg.Invitation.ExpiryDays != 14 {
		t.Errorf("Invitation.ExpiryDays = %d, want 14", cfg.Invitation.ExpiryDays)
	}

	// Fields not named in the override keep their file values.
	if cfg.Webserver.Port != 8080 {
		t.Errorf("Webserver.Port = %d, want 8080", cfg.Webserver.Port)
	}
}

func TestReadConfigInvalidJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{not json`)

	_, err := ReadConfig(testConfigPath(t))
	if err == nil {
		t.Fatal("ReadConfig() should fail on an invalid JSON override")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: false,
		},
		{
			name: "missing port",
			config: Config{
				Webserver: Webserver{
					Port: 0,
					URL:  "http://localhost:8080",
				},
			},
			wantErr: true,
		},
		{
			name: "missing url",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
				},
			},
			wantErr: true,
		},
		{
			name: "mail enabled without from address",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
				Mail: Mail{
					Enabled:   true,
					Smarthost: "127.0.0.1:25",
				},
			},
			wantErr: true,
		},
		{
			name: "mail enabled without smarthost",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
				Mail: Mail{
					Enabled: true,
					From:    "no-reply@localhost",
				},
			},
			wantErr: true,
		},
		{
			name: "mail disabled needs no delivery settings",
			config: Config{
				Webserver: Webserver{
					Port: 8080,
					URL:  "http://localhost:8080",
				},
				Mail: Mail{Enabled: false},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate(&tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationDefaults(t *testing.T) {
	cfg := Config{
		Webserver: Webserver{
			Port: 8080,
			URL:  "http://localhost:8080",
		},
	}

	if err := validate(&cfg); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	if cfg.Webserver.ShutDownTime != 5 {
		t.Errorf("ShutDownTime default = %d, want 5", cfg.Webserver.ShutDownTime)
	}

	if cfg.Invitation.ExpiryDays != 7 {
		t.Errorf("Invitation.ExpiryDays default = %d, want 7", cfg.Invitation.ExpiryDays)
	}

	if cfg.Invitation.TokenLength != 48 {
		t.Errorf("Invitation.TokenLength default = %d, want 48", cfg.Invitation.TokenLength)
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{Title: "GoAccess-Admin"}

	out, err := DumpConfig(cfg)
	if err != nil {
		t.Fatalf("DumpConfig() error = %v", err)
	}

	if !strings.Contains(out, "GoAccess-Admin") {
		t.Error("DumpConfig() output should contain the title")
	}
}
