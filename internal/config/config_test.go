package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
)

var keys = []string{
	"DISCORD_TOKEN", "GUILD_ID",
	"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "MAX_TOKENS", "TEMPERATURE", "SYSTEM_PROMPT",
	"EA_BASE_URL", "EA_PLATFORMS", "EA_TIMEOUT", "EA_RATE_LIMIT",
	"MIRROR_BASE_URL", "MIRROR_TIMEOUT", "MIRROR_RATE_LIMIT", "MIRROR_PAGE_TTL",
	"RANK_RESULTS", "MATCH_TYPES", "MATCH_CAP", "MEMBER_CAP", "INFO_BUDGET", "STATS_BUDGET", "MATCHES_BUDGET",
	"SELECTION_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL",
}

// clearEnv unsets every config key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %s", cfg.OpenAI.Model)
	}
	if cfg.OpenAI.MaxTokens != 900 {
		t.Errorf("Expected MaxTokens 900, got %d", cfg.OpenAI.MaxTokens)
	}
	if got := strings.Join(cfg.EA.Platforms, ","); got != "common-gen5,common-gen4,nx" {
		t.Errorf("Unexpected platforms: %s", got)
	}
	if cfg.EA.Timeout != 10*time.Second {
		t.Errorf("Expected EA timeout 10s, got %v", cfg.EA.Timeout)
	}
	if !cfg.Report.RankResults {
		t.Error("Expected ranking enabled by default")
	}
	if cfg.Report.MatchCap != 10 || cfg.Report.MemberCap != 25 {
		t.Errorf("Unexpected caps: %d/%d", cfg.Report.MatchCap, cfg.Report.MemberCap)
	}
	if cfg.Selection.TTL != 15*time.Minute {
		t.Errorf("Expected selection TTL 15m, got %v", cfg.Selection.TTL)
	}
	if cfg.Mirror.Enabled() {
		t.Error("Mirror should be disabled without MIRROR_BASE_URL")
	}
	if cfg.Mirror.RateLimit != 2 || cfg.Mirror.PageTTL != time.Minute {
		t.Errorf("Unexpected mirror defaults: %v/%v", cfg.Mirror.RateLimit, cfg.Mirror.PageTTL)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	content := `# comment
OPENAI_API_KEY=sk-test
EA_PLATFORMS="nx"
MATCH_TYPES=league,friendly
SELECTION_TTL=2m
`
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test .env file: %v", err)
	}

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OpenAI.APIKey != "sk-test" {
		t.Errorf("Expected API key from file, got %q", cfg.OpenAI.APIKey)
	}
	if len(cfg.EA.Platforms) != 1 || cfg.EA.Platforms[0] != "nx" {
		t.Errorf("Expected [nx], got %v", cfg.EA.Platforms)
	}
	if len(cfg.Report.MatchTypes) != 2 {
		t.Errorf("Expected 2 match types, got %v", cfg.Report.MatchTypes)
	}
	if cfg.Selection.TTL != 2*time.Minute {
		t.Errorf("Expected 2m TTL, got %v", cfg.Selection.TTL)
	}
}

func TestLoad_MissingEnvFile(t *testing.T) {
	clearEnv(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nonexistent.env")); err != nil {
		t.Errorf("Missing .env file should not be an error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "OPENAI_API_KEY is required") {
		t.Errorf("Expected missing key error, got %v", err)
	}

	cfg.OpenAI.APIKey = "sk-test"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}

	if err := cfg.ValidateBot(); err == nil {
		t.Error("Expected DISCORD_TOKEN error from ValidateBot")
	}
	cfg.Discord.Token = "token"
	if err := cfg.ValidateBot(); err != nil {
		t.Errorf("Expected valid bot config, got %v", err)
	}

	cfg.Report.MatchTypes = []string{"cup"}
	err = cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "MATCH_TYPES") {
		t.Errorf("Expected MATCH_TYPES error, got %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"verbose": zapcore.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := NewLogger("debug"); err != nil {
		t.Errorf("NewLogger failed: %v", err)
	}
}
