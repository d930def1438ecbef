package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENV", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("CHAT_DAILY_LIMIT", "")
	t.Setenv("REPORT_HIDE_THRESHOLD", "")

	cfg := Load()
	if cfg.Env != "dev" {
		t.Fatalf("expected env dev, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected default provider openai, got %q", cfg.LLMProvider)
	}
	if cfg.ChatDailyLimit != 50 {
		t.Fatalf("expected chat limit 50, got %d", cfg.ChatDailyLimit)
	}
	if cfg.ReportHideThreshold != 3 {
		t.Fatalf("expected hide threshold 3, got %d", cfg.ReportHideThreshold)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev config to be dev-like")
	}
}

func TestLoadNormalizesValues(t *testing.T) {
	t.Setenv("ENV", "PROD")
	t.Setenv("LLM_PROVIDER", "Azure-OpenAI")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("CHAT_DAILY_LIMIT", "not-a-number")
	t.Setenv("CORS_ALLOW_ORIGINS", " https://a.example , ,https://b.example ")

	cfg := Load()
	if cfg.Env != "production" {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.LLMProvider != "azure" {
		t.Fatalf("expected azure, got %q", cfg.LLMProvider)
	}
	if cfg.ObjectStoreType != "s3" {
		t.Fatalf("expected s3, got %q", cfg.ObjectStoreType)
	}
	if cfg.ChatDailyLimit != 50 {
		t.Fatalf("expected fallback chat limit 50, got %d", cfg.ChatDailyLimit)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "https://b.example" {
		t.Fatalf("unexpected origins: %v", cfg.CORSAllowOrigin)
	}
	if cfg.IsDevLike() {
		t.Fatalf("production must not be dev-like")
	}
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("GEMINI_MODEL=from-file\nREDIS_DB=4\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("GEMINI_MODEL", "from-env")
	t.Setenv("REDIS_DB", "")
	os.Unsetenv("REDIS_DB")
	t.Cleanup(func() { os.Unsetenv("REDIS_DB") })

	loadEnvFiles(path, filepath.Join(dir, "missing.env"))

	if got := os.Getenv("GEMINI_MODEL"); got != "from-env" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
	if got := os.Getenv("REDIS_DB"); got != "4" {
		t.Fatalf("expected REDIS_DB from file, got %q", got)
	}
}
