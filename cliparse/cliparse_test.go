// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("MAX_IN_FLIGHT", "16")

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
	if cfg.MaxInFlight != 16 {
		t.Errorf("expected max in flight 16, got %d", cfg.MaxInFlight)
	}
	if cfg.CallbackURL != "http://localhost:9000/auth/discord/callback" {
		t.Errorf("unexpected default callback %s", cfg.CallbackURL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("BOT_TOKEN", "env-token")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-token", "cli-token", "-session-salt", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.BotToken != "cli-token" {
		t.Errorf("CLI should override env: expected cli-token, got %s", cfg.BotToken)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("SESSION_SECRET", "secret")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 3318 {
		t.Errorf("expected default port 3318, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" || cfg.DatabaseURL != "citizen-clips.db" {
		t.Errorf("expected sqlite defaults, got %s %s", cfg.DatabaseType, cfg.DatabaseURL)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("unexpected log defaults %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MaxInFlight != 0 {
		t.Errorf("expected unlimited in-flight events, got %d", cfg.MaxInFlight)
	}
	if cfg.OAuthConfigured() {
		t.Error("OAuth should not be configured without client credentials")
	}
}

func TestParseFlags_MissingSecrets(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing token", []string{"-session-salt", "s"}},
		{"missing session secret", []string{"-token", "t"}},
		{"postgres without url", []string{"-token", "t", "-session-salt", "s", "-t", "postgres"}},
		{"unknown database type", []string{"-token", "t", "-session-salt", "s", "-t", "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOT_TOKEN", "")
			t.Setenv("SESSION_SECRET", "")
			t.Setenv("DATABASE_URL", "")
			t.Setenv("DATABASE_TYPE", "")

			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestParseFlags_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.env")
	content := "BOT_TOKEN=file-token\nSESSION_SECRET=file-secret\nCLIENT_ID=123\nCLIENT_SECRET=abc\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	// t.Setenv registers cleanup so values loaded from the file are removed
	for _, key := range []string{"BOT_TOKEN", "SESSION_SECRET", "CLIENT_ID", "CLIENT_SECRET"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := ParseFlags([]string{"-env", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BotToken != "file-token" {
		t.Errorf("expected token from file, got %q", cfg.BotToken)
	}
	if !cfg.OAuthConfigured() {
		t.Error("expected OAuth to be configured from file")
	}
}

func TestParseFlags_EnvFileMissing(t *testing.T) {
	_, err := ParseFlags([]string{"-env", filepath.Join(t.TempDir(), "nope.env"), "-token", "t", "-session-salt", "s"})
	if err == nil {
		t.Error("expected an error for a missing env file")
	}
}
