package config

import (
	"strings"
	"testing"
)

func TestAdminConfigIsAdmin(t *testing.T) {
	admin := AdminConfig{Emails: []string{"Owner@Vinoteca.Test", " second@vinoteca.test "}}

	if !admin.IsAdmin("owner@vinoteca.test") {
		t.Fatal("expected case-insensitive match")
	}
	if !admin.IsAdmin("SECOND@vinoteca.test") {
		t.Fatal("expected trimmed entry to match")
	}
	if admin.IsAdmin("guest@vinoteca.test") {
		t.Fatal("unexpected admin")
	}
	if admin.IsAdmin("") {
		t.Fatal("empty email is never admin")
	}
}

func TestEnsureDSNKeepsExplicitDSN(t *testing.T) {
	db := DBConfig{DSN: "postgres://app:secret@db:5432/vinoteca"}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if db.DSN != "postgres://app:secret@db:5432/vinoteca" {
		t.Fatalf("DSN rewritten: %s", db.DSN)
	}
}

func TestEnsureDSNBuildsFromLegacyVars(t *testing.T) {
	db := DBConfig{
		LegacyHost:     "db.internal",
		LegacyPort:     5432,
		LegacyUser:     "app",
		LegacyPassword: "secret",
		LegacyName:     "vinoteca",
		LegacySSLMode:  "disable",
	}
	if err := db.ensureDSN(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, part := range []string{"postgres://", "app:secret@", "db.internal:5432", "vinoteca", "sslmode=disable"} {
		if !strings.Contains(db.DSN, part) {
			t.Fatalf("DSN %q missing %q", db.DSN, part)
		}
	}
}

func TestEnsureDSNReportsMissingLegacyVars(t *testing.T) {
	db := DBConfig{LegacyHost: "db.internal"}
	err := db.ensureDSN()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{EnvDBUser, EnvDBName} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q missing %q", err.Error(), name)
		}
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	if !(AppConfig{Env: "Dev"}).IsDev() {
		t.Fatal("expected dev")
	}
	if !(AppConfig{Env: "PROD"}).IsProd() {
		t.Fatal("expected prod")
	}
	if (AppConfig{Env: "staging"}).IsDev() || (AppConfig{Env: "staging"}).IsProd() {
		t.Fatal("staging is neither dev nor prod")
	}
}
