package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const validBody = `
port: "8080"
databaseURL: "postgres://localhost/bookstack"
redisAddr: "localhost:6379"
jwtSecret: "test-secret"
minioEndpoint: "localhost:9000"
minioAccessKey: "minio"
minioSecretKey: "minio123"
minioBucket: "book-images"
`

func TestLoadValidConfig(t *testing.T) {
	cfg, err := Load(writeTempConfig(t, validBody))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.MinioBucket != "book-images" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	if _, err := Load(writeTempConfig(t, "port: \"8080\"\n")); err == nil {
		t.Fatalf("incomplete config accepted")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 192.168.1.10,")
	cfg, err := Load(writeTempConfig(t, validBody))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("env override not applied: %q", cfg.JWTSecret)
	}
	if !cfg.MinioUseSSL {
		t.Fatalf("bool env override not applied")
	}
	if len(cfg.TrustedProxyCIDRs) != 2 || cfg.TrustedProxyCIDRs[0] != "10.0.0.0/8" || cfg.TrustedProxyCIDRs[1] != "192.168.1.10" {
		t.Fatalf("csv env override = %v", cfg.TrustedProxyCIDRs)
	}
}

func TestParseJWTTTL(t *testing.T) {
	if d, err := ParseJWTTTL(""); err != nil || d != 0 {
		t.Fatalf("empty ttl: d=%v err=%v", d, err)
	}
	if d, err := ParseJWTTTL("72h"); err != nil || d != 72*time.Hour {
		t.Fatalf("72h ttl: d=%v err=%v", d, err)
	}
	if _, err := ParseJWTTTL("yesterday"); err == nil {
		t.Fatalf("invalid ttl accepted")
	}
	if _, err := ParseJWTTTL("-1h"); err == nil {
		t.Fatalf("negative ttl accepted")
	}
}
