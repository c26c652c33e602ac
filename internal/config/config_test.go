package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POSTGRES_HOST", "testhost")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("VALUATION_PREFERRED_SOURCE", "refinitiv")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Server.Port = %v, want %v", cfg.Server.Port, "9090")
	}
	if cfg.Database.Postgres.Host != "testhost" {
		t.Errorf("Database.Postgres.Host = %v, want %v", cfg.Database.Postgres.Host, "testhost")
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, 30*time.Second)
	}
	if cfg.Valuation.PreferredPriceSource != "REFINITIV" {
		t.Errorf("Valuation.PreferredPriceSource = %v, want REFINITIV", cfg.Valuation.PreferredPriceSource)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	v := cfg.Valuation
	if v.PreferredPriceSource != "BBG" {
		t.Errorf("PreferredPriceSource = %v, want BBG", v.PreferredPriceSource)
	}
	if v.PivotCurrency != "USD" {
		t.Errorf("PivotCurrency = %v, want USD", v.PivotCurrency)
	}
	if v.DefaultPageSize != 100 || v.MaxPageSize != 500 {
		t.Errorf("page sizes = %d/%d, want 100/500", v.DefaultPageSize, v.MaxPageSize)
	}
	if v.DefaultCashHorizon != 7 {
		t.Errorf("DefaultCashHorizon = %d, want 7", v.DefaultCashHorizon)
	}
	if ch := cfg.Database.ClickHouse; ch.MaxOpenConns != 16 || ch.QueryTimeout != 30*time.Second || !ch.Compress {
		t.Errorf("ClickHouse = %+v, want 16 open conns, 30s query timeout, compression", ch)
	}
	if v.MaxPriceRangeDays != 3660 {
		t.Errorf("MaxPriceRangeDays = %d, want 3660", v.MaxPriceRangeDays)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
}

func TestLoadConfigRejectsInvalidValuationSettings(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "default page above max", key: "VALUATION_DEFAULT_PAGE_SIZE", val: "1000"},
		{name: "zero parallelism", key: "VALUATION_MAX_PARALLEL", val: "0"},
		{name: "bad pivot currency", key: "FX_PIVOT_CURRENCY", val: "DOLLAR"},
		{name: "negative cash horizon", key: "CASH_PROJECTION_DEFAULT_DAYS", val: "-1"},
		{name: "zero price range", key: "PRICE_MAX_RANGE_DAYS", val: "0"},
		{name: "clickhouse idle above open", key: "CLICKHOUSE_MAX_IDLE_CONNS", val: "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := LoadConfig(); err == nil {
				t.Errorf("LoadConfig() with %s=%s returned nil error", tt.key, tt.val)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_KEY",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "NONEXISTENT_KEY",
			defaultValue: "default",
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.key, tt.envValue)
			}

			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue int
		want         int
	}{
		{name: "returns integer when valid", envValue: "200", defaultValue: 100, want: 200},
		{name: "returns default when invalid", envValue: "invalid", defaultValue: 100, want: 100},
		{name: "returns default when not set", defaultValue: 100, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_INT", tt.envValue)
			}

			if got := getEnvAsInt("TEST_INT", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsBoolAndFloat(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_FLOAT", "2.5")
	t.Setenv("TEST_FLOAT_BAD", "x")

	if getEnvAsBool("TEST_BOOL", true) {
		t.Error("getEnvAsBool() = true, want false")
	}
	if !getEnvAsBool("TEST_BOOL_NOTSET", true) {
		t.Error("getEnvAsBool() default = false, want true")
	}
	if got := getEnvAsFloat("TEST_FLOAT", 1); got != 2.5 {
		t.Errorf("getEnvAsFloat() = %v, want 2.5", got)
	}
	if got := getEnvAsFloat("TEST_FLOAT_BAD", 1); got != 1 {
		t.Errorf("getEnvAsFloat() invalid = %v, want 1", got)
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue time.Duration
		want         time.Duration
	}{
		{name: "returns duration when valid", envValue: "30s", defaultValue: 10 * time.Second, want: 30 * time.Second},
		{name: "returns default when invalid", envValue: "invalid", defaultValue: 10 * time.Second, want: 10 * time.Second},
		{name: "returns default when not set", defaultValue: 10 * time.Second, want: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("TEST_DURATION", tt.envValue)
			}

			if got := getEnvAsDuration("TEST_DURATION", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvAsDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsList(t *testing.T) {
	t.Setenv("TEST_LIST", " a, ,b ,c")

	got := getEnvAsList("TEST_LIST", nil)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("getEnvAsList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("getEnvAsList()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
