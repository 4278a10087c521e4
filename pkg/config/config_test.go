package config

import (
	"strings"
	"testing"
)

func TestEnsureDSNKeepsExplicitDSN(t *testing.T) {
	db := DBConfig{DSN: "postgres://u:p@localhost:5432/market"}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.DSN != "postgres://u:p@localhost:5432/market" {
		t.Fatalf("dsn rewritten: %s", db.DSN)
	}
}

func TestEnsureDSNAssemblesLegacyParts(t *testing.T) {
	db := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     5433,
		LegacyUser:     "market",
		LegacyPassword: "s3cret",
		LegacyName:     "localmarket",
		LegacySSLMode:  "require",
	}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"postgres://", "market:s3cret@", "db.internal:5433", "sslmode=require"} {
		if !strings.Contains(db.DSN, want) {
			t.Errorf("dsn %q missing %q", db.DSN, want)
		}
	}
}

func TestEnsureDSNReportsMissingLegacyVars(t *testing.T) {
	db := DBConfig{LegacyHost: "db.internal"}
	err := db.ensureDSN()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), EnvDBUser) || !strings.Contains(err.Error(), EnvDBName) {
		t.Fatalf("error does not name missing vars: %v", err)
	}
}

func TestStripeEnvironmentNormalization(t *testing.T) {
	if got := (StripeConfig{Env: " LIVE "}).Environment(); got != "live" {
		t.Fatalf("expected live, got %q", got)
	}
	if got := (StripeConfig{}).Environment(); got != "test" {
		t.Fatalf("expected test default, got %q", got)
	}
}
