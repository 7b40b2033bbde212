// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks every variable ParseFlags reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "DATABASE_URL", "DATABASE_TYPE", "JWT_SECRET", "JWKS_URL",
		"RATE_LIMIT", "RATE_BURST", "CONFIG_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("expected postgres, got %s", cfg.DatabaseType)
	}
	if cfg.RateLimit != defaultRateLimit || cfg.RateBurst != defaultRateBurst {
		t.Errorf("expected default rate limits, got %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-jwt-secret", "s1", "-rate", "5", "-burst", "10"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.RateLimit != 5 || cfg.RateBurst != 10 {
		t.Errorf("expected rate 5 burst 10, got %v/%d", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestParseFlags_ConfigFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "elovote.yaml")
	err := os.WriteFile(path, []byte(`
port: 7000
database_url: file:from-file.db
jwks_url: https://auth.example.com/.well-known/jwks.json
rate_limit: 2.5
`), 0o600)
	if err != nil {
		t.Fatal(err)
	}

	// Env beats the file.
	t.Setenv("DATABASE_URL", "file:from-env.db")

	cfg, err := ParseFlags([]string{"-c", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 7000 {
		t.Errorf("expected port from file, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "file:from-env.db" {
		t.Errorf("env should override file, got %s", cfg.DatabaseURL)
	}
	if cfg.JWKSURL == "" {
		t.Error("expected jwks_url from file")
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("expected rate 2.5 from file, got %v", cfg.RateLimit)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing database", map[string]string{"JWT_SECRET": "s"}, nil},
		{"missing token source", map[string]string{"DATABASE_URL": "file:x.db"}, nil},
		{"bad port", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s", "PORT": "abc"}, nil},
		{"bad database type", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s"}, []string{"-t", "mysql"}},
		{"bad rate", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s", "RATE_LIMIT": "fast"}, nil},
		{"missing config file", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s"}, []string{"-c", "/nonexistent/elovote.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
