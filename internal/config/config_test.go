package config

import "testing"

func TestSyncConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  HelpPolicy
		mode    CountMode
		wantErr bool
	}{
		{"defaults", PolicyFollowers, CountFirst, false},
		{"any every", PolicyAny, CountEvery, false},
		{"bad policy", "somebody", CountFirst, true},
		{"bad mode", PolicyFollowers, "twice", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := SyncConfig{Policy: tt.policy, Mode: tt.mode}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseRedisURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		host     string
		port     int
		password string
		db       int
	}{
		{"full url", "redis://:pass@redis.example.com:6380/2", "redis.example.com", 6380, "pass", 2},
		{"no scheme", "redis.example.com:6379", "redis.example.com", 6379, "", 0},
		{"defaults", "redis://localhost", "localhost", 6379, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parseRedisURL(tt.url)
			if cfg.Host != tt.host || cfg.Port != tt.port || cfg.Password != tt.password || cfg.DB != tt.db {
				t.Errorf("parseRedisURL(%q) = %+v", tt.url, cfg)
			}
		})
	}
}

func TestGetEnvAsMap(t *testing.T) {
	t.Setenv("COUNSELOR_NAMES_TEST", "mgr-1=김상담, mgr-2=이상담,broken,=x")

	got := getEnvAsMap("COUNSELOR_NAMES_TEST")
	if len(got) != 2 || got["mgr-1"] != "김상담" || got["mgr-2"] != "이상담" {
		t.Errorf("getEnvAsMap() = %v", got)
	}

	if got := getEnvAsMap("COUNSELOR_NAMES_UNSET"); got != nil {
		t.Errorf("getEnvAsMap(unset) = %v, want nil", got)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "app", Password: "pw", Database: "helps",
	}
	want := "postgres://app:pw@db.internal:5433/helps?sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	cfg.URL = "postgres://u:p@other/db"
	if got := cfg.DSN(); got != cfg.URL {
		t.Errorf("DSN() = %q, want explicit URL to win", got)
	}
}
