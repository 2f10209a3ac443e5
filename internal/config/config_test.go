package config

import (
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		TelegramBotToken:        "token",
		StorageDriver:           StorageMemory,
		BotMaxInflight:          64,
		BotUpdateTimeoutSeconds: 60,
		SpawnDefaultFrequency:   100,
		SpawnSpamThreshold:      10,
		SpawnSpamCooldown:       10 * time.Minute,
		StoreTimeout:            3 * time.Second,
		ShopDefaultPrice:        1000,
		RateLimitRPS:            1,
		RateLimitBurst:          5,
		DBMaxConns:              25,
		DBMinConns:              5,
	}
}

func TestParseInt64CSV(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "1", want: []int64{1}},
		{in: "1, 2 ,3", want: []int64{1, 2, 3}},
		{in: "1,,2", want: []int64{1, 2}},
		{in: "1,abc", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseInt64CSV(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("parseInt64CSV(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseInt64CSV(%q): %v", tt.in, err)
		}
		if len(got) != len(tt.want) {
			t.Fatalf("parseInt64CSV(%q) = %v, want %v", tt.in, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("parseInt64CSV(%q) = %v, want %v", tt.in, got, tt.want)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	mutations := map[string]func(c *Config){
		"unknown driver":       func(c *Config) { c.StorageDriver = "mongo" },
		"postgres no password": func(c *Config) { c.StorageDriver = StoragePostgres },
		"bad conns": func(c *Config) {
			c.StorageDriver = StoragePostgres
			c.DBPassword = "x"
			c.DBMinConns = 30
		},
		"zero inflight":   func(c *Config) { c.BotMaxInflight = 0 },
		"zero frequency":  func(c *Config) { c.SpawnDefaultFrequency = 0 },
		"threshold of 1":  func(c *Config) { c.SpawnSpamThreshold = 1 },
		"no cooldown":     func(c *Config) { c.SpawnSpamCooldown = 0 },
		"no timeout":      func(c *Config) { c.StoreTimeout = 0 },
		"free shop items": func(c *Config) { c.ShopDefaultPrice = 0 },
		"zero rps":        func(c *Config) { c.RateLimitRPS = 0 },
	}
	for name, mutate := range mutations {
		c := validConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestIsOwner(t *testing.T) {
	c := validConfig()
	c.OwnerIDs = []int64{10, 20}
	if !c.IsOwner(20) {
		t.Fatal("20 must be an owner")
	}
	if c.IsOwner(30) {
		t.Fatal("30 must not be an owner")
	}
}

func TestDatabaseDSN(t *testing.T) {
	c := validConfig()
	c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode = "u", "p", "h", 5432, "db", "disable"
	want := "postgres://u:p@h:5432/db?sslmode=disable"
	if got := c.DatabaseDSN(); got != want {
		t.Fatalf("DatabaseDSN() = %q, want %q", got, want)
	}
}
