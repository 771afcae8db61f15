package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "test-secret")
}

// TestLoadDefaults проверяет значения по умолчанию при минимальном окружении.
func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 30*time.Minute {
		t.Fatalf("expected default access ttl 30m, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Engine.WindowDays != 90 || cfg.Engine.HorizonDays != 90 {
		t.Fatalf("expected default engine windows 90/90, got %d/%d", cfg.Engine.WindowDays, cfg.Engine.HorizonDays)
	}
	if cfg.Engine.DefaultIndustry != "services" {
		t.Fatalf("expected default industry services, got %q", cfg.Engine.DefaultIndustry)
	}
	if !cfg.Snapshot.Enabled || cfg.Snapshot.CronSpec != "0 3 * * *" {
		t.Fatalf("expected nightly snapshots enabled, got %+v", cfg.Snapshot)
	}
}

// TestLoadOverrides проверяет чтение переопределений из окружения.
func TestLoadOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "2h")
	t.Setenv("ENGINE_HORIZON_DAYS", "180")
	t.Setenv("SNAPSHOT_ENABLED", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenTTL != 2*time.Hour {
		t.Fatalf("expected access ttl 2h, got %v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Engine.HorizonDays != 180 {
		t.Fatalf("expected horizon 180, got %d", cfg.Engine.HorizonDays)
	}
	if cfg.Snapshot.Enabled {
		t.Fatal("expected snapshots disabled")
	}
}

// TestLoadRejectsMissingSecret проверяет, что без JWT_SECRET конфигурация
// не проходит валидацию.
func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("ENV_FILE", "")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "JWT_SECRET") {
		t.Fatalf("expected JWT_SECRET error, got %v", err)
	}
}

// TestLoadRejectsBadInteger проверяет ошибку парсинга числовых переменных.
func TestLoadRejectsBadInteger(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "not-a-number")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Fatalf("expected SERVER_PORT error, got %v", err)
	}
}

// TestLoadRejectsHorizonAboveMax проверяет верхнюю границу горизонта.
func TestLoadRejectsHorizonAboveMax(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ENGINE_HORIZON_DAYS", "400")
	t.Setenv("ENGINE_MAX_HORIZON_DAYS", "365")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "ENGINE_HORIZON_DAYS") {
		t.Fatalf("expected horizon validation error, got %v", err)
	}
}

// TestDSN проверяет сборку строки подключения, включая экранирование пароля.
func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "cfo",
		Password: "p@ss/word",
		Name:     "cfo_ai",
		SSLMode:  "require",
	}

	dsn := db.DSN()
	if !strings.HasPrefix(dsn, "postgres://cfo:") {
		t.Fatalf("unexpected dsn prefix: %s", dsn)
	}
	if !strings.Contains(dsn, "db.internal:5433/cfo_ai") {
		t.Fatalf("expected host and database in dsn, got %s", dsn)
	}
	if !strings.Contains(dsn, "sslmode=require") {
		t.Fatalf("expected sslmode in dsn, got %s", dsn)
	}
	if strings.Contains(dsn, "p@ss/word") {
		t.Fatalf("expected escaped password, got %s", dsn)
	}
}
