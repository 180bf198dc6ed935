package config

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_STR", "value")
	t.Setenv("X_BOOL", "yes")
	t.Setenv("X_INT", "nope")
	t.Setenv("X_DUR", "250ms")

	if got := envStr("X_STR", "d"); got != "value" {
		t.Fatalf("envStr = %q", got)
	}
	if got := envStr("X_MISSING", "d"); got != "d" {
		t.Fatalf("envStr default = %q", got)
	}
	if !envBool("X_BOOL", false) {
		t.Fatalf("envBool(yes) = false")
	}
	if got := envInt("X_INT", 7); got != 7 {
		t.Fatalf("envInt fallback = %d", got)
	}
	if got := envDur("X_DUR", time.Second); got != 250*time.Millisecond {
		t.Fatalf("envDur = %v", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" read:users, ,delete:meals ")
	if len(got) != 2 || got[0] != "read:users" || got[1] != "delete:meals" {
		t.Fatalf("splitList = %q", got)
	}
	if splitList("") != nil {
		t.Fatalf("splitList of empty string should be nil")
	}
}

func TestLoadSQLite(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("APP_TIMEZONE", "Europe/Prague")
	t.Setenv("AUTH_DOMAIN", "https://tenant.example.com/")
	t.Setenv("AUTH_AUDIENCE", "canteen")
	t.Setenv("AUTH_ADMIN_SCOPES", "read:users")
	t.Setenv("JWT_SECRET", "")

	cfg := Load()
	if cfg.DBPath != "/tmp/x.db" || cfg.Location.String() != "Europe/Prague" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Auth.Domain != "tenant.example.com" || cfg.Auth.Issuer != "https://tenant.example.com/" {
		t.Fatalf("auth = %+v", cfg.Auth)
	}
	if cfg.Auth.JWKSURL() != "https://tenant.example.com/.well-known/jwks.json" {
		t.Fatalf("jwks url = %s", cfg.Auth.JWKSURL())
	}
	if len(cfg.Auth.AdminScopes) != 1 {
		t.Fatalf("admin scopes = %v", cfg.Auth.AdminScopes)
	}
}

func TestCacheWithPrefix(t *testing.T) {
	c := CacheConfig{Prefix: "cache"}
	if got := c.WithPrefix("meals").Prefix; got != "cache:meals" {
		t.Fatalf("WithPrefix = %s", got)
	}
	if c.Prefix != "cache" {
		t.Fatalf("WithPrefix mutated the receiver")
	}
}

func TestValidateLocalLoginNeedsAdminScopes(t *testing.T) {
	cfg := Config{JWTSecret: "s", Auth: AuthConfig{Audience: "canteen"}}
	if err := cfg.validate(); err == nil {
		t.Fatalf("local login without admin scopes must be rejected")
	}
	cfg.Auth.AdminScopes = []string{"read:users"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	idpOnly := Config{Auth: AuthConfig{Domain: "tenant.example.com", Audience: "canteen"}}
	if err := idpOnly.validate(); err != nil {
		t.Fatalf("IdP-only config rejected: %v", err)
	}
	idpOnly.Auth.Audience = ""
	if err := idpOnly.validate(); err == nil {
		t.Fatalf("missing audience accepted")
	}
}
