package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": secret,
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Port != "8080" || cfg.Env != "development" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected server defaults: %+v", cfg)
	}
	if cfg.Auth.SessionTTL != 24*time.Hour || cfg.Auth.BcryptCost != 12 {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.OpenAI.Model != "gpt-4o" || cfg.OpenAI.Timeout != time.Minute {
		t.Fatalf("unexpected openai defaults: %+v", cfg.OpenAI)
	}
	if cfg.Mongo.Database != "cardio_assist" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected store defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if !cfg.IsDevelopment() {
		t.Fatal("expected development mode by default")
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         secret,
		"ENV":                "production",
		"SESSION_TTL":        "2h",
		"BCRYPT_COST":        "14",
		"REDIS_DB":           "3",
		"OPENAI_BASE_URL":    "https://gateway.local/v1",
		"COMPLETION_TIMEOUT": "15s",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.IsDevelopment() || cfg.Auth.SessionTTL != 2*time.Hour || cfg.Auth.BcryptCost != 14 || cfg.Redis.DB != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.OpenAI.BaseURL != "https://gateway.local/v1" || cfg.OpenAI.Timeout != 15*time.Second {
		t.Fatalf("openai overrides not applied: %+v", cfg.OpenAI)
	}
}

func TestLoadWith_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret": {},
		"short secret":   {"JWT_SECRET": "short"},
		"weak bcrypt":    {"JWT_SECRET": secret, "BCRYPT_COST": "4"},
		"zero ttl":       {"JWT_SECRET": secret, "SESSION_TTL": "0s"},
	}
	for name, env := range cases {
		if _, err := LoadWith(context.Background(), envconfig.MapLookuper(env)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}

func TestLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "config") {
			t.Fatalf("expected a config panic, got %v", r)
		}
	}()
	Load()
}
