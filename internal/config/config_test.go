package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg == nil {
		t.Fatal("Load returned nil config")
	}
	if cfg.HTTPAddr != ":8000" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8000")
	}
	if cfg.JWTIssuer != "membership-portal" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "membership-portal")
	}
	if cfg.JWTAccessTTL != "1h" {
		t.Errorf("JWTAccessTTL = %q, want %q", cfg.JWTAccessTTL, "1h")
	}
	if cfg.JWTRefreshTTL != "2016h" {
		t.Errorf("JWTRefreshTTL = %q, want %q", cfg.JWTRefreshTTL, "2016h")
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.SyncInterval != "6h" {
		t.Errorf("SyncInterval = %q, want %q", cfg.SyncInterval, "6h")
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("JWT_ISSUER", "custom-issuer")
	os.Setenv("BCRYPT_COST", "14")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.JWTIssuer != "custom-issuer" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "custom-issuer")
	}
	if cfg.BcryptCost != 14 {
		t.Errorf("BcryptCost = %d, want 14", cfg.BcryptCost)
	}
}

func TestLoad_RejectsSharedSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8000")
	os.Setenv("ACCESS_JWT_SECRET", "same-secret")
	os.Setenv("REFRESH_JWT_SECRET", "same-secret")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject identical access and refresh secrets")
	}
}

func TestLoad_RejectsBadBcryptCost(t *testing.T) {
	os.Clearenv()
	os.Setenv("HTTP_ADDR", ":8000")
	os.Setenv("BCRYPT_COST", "99")

	if _, err := Load(); err == nil {
		t.Fatal("Load should reject out-of-range bcrypt cost")
	}
}

func TestTTLHelpers(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "30m", JWTRefreshTTL: "720h", SyncInterval: "1h"}
	if got := cfg.AccessTTL(); got != 30*time.Minute {
		t.Errorf("AccessTTL = %v, want 30m", got)
	}
	if got := cfg.RefreshTTL(); got != 720*time.Hour {
		t.Errorf("RefreshTTL = %v, want 720h", got)
	}
	if got := cfg.SyncEvery(); got != time.Hour {
		t.Errorf("SyncEvery = %v, want 1h", got)
	}

	cfg = &Config{}
	if got := cfg.AccessTTL(); got != time.Hour {
		t.Errorf("AccessTTL default = %v, want 1h", got)
	}
	if got := cfg.RefreshTTL(); got != 12*7*24*time.Hour {
		t.Errorf("RefreshTTL default = %v, want 12 weeks", got)
	}
}
