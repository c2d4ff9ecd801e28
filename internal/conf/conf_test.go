package conf

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Data.Database.Driver != "sqlite" {
		t.Errorf("Data.Database.Driver = %q, want sqlite", cfg.Data.Database.Driver)
	}
	if cfg.Data.Redis.Addr != "" {
		t.Errorf("Data.Redis.Addr should be empty by default, got %q", cfg.Data.Redis.Addr)
	}
	if cfg.TMDb.ImageBaseURL != "https://image.tmdb.org/t/p/w500" {
		t.Errorf("TMDb.ImageBaseURL = %q", cfg.TMDb.ImageBaseURL)
	}
	if cfg.TMDb.Timeout.AsDuration() != 0 {
		t.Errorf("TMDb.Timeout = %v, want 0 (transport default)", cfg.TMDb.Timeout.AsDuration())
	}
	if cfg.TMDb.Breaker.FailureThreshold != 5 {
		t.Errorf("TMDb.Breaker.FailureThreshold = %d, want 5", cfg.TMDb.Breaker.FailureThreshold)
	}
	if cfg.Server.HTTP.Timeout.AsDuration() != 30*time.Second {
		t.Errorf("Server.HTTP.Timeout = %v, want 30s", cfg.Server.HTTP.Timeout.AsDuration())
	}
}

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", input: `"1.5s"`, want: 1500 * time.Millisecond},
		{name: "nanoseconds", input: `2000`, want: 2000},
		{name: "empty string", input: `""`, want: 0},
		{name: "null", input: `null`, want: 0},
		{name: "garbage", input: `"soon"`, wantErr: true},
		{name: "bool", input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && d.AsDuration() != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, d.AsDuration(), tt.want)
			}
		})
	}
}

func TestScanOverDefaults(t *testing.T) {
	cfg := Default()
	raw := `{"data":{"database":{"driver":"postgres","source":"host=db"}},"tmdb":{"api_key":"k","timeout":"3s"}}`
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	if cfg.Data.Database.Driver != "postgres" || cfg.Data.Database.Source != "host=db" {
		t.Errorf("Database = %+v, want postgres host=db", cfg.Data.Database)
	}
	if cfg.Data.Redis.LeaderboardKey != "rank:movies:top" {
		t.Errorf("Redis.LeaderboardKey lost its default: %q", cfg.Data.Redis.LeaderboardKey)
	}
	if cfg.TMDb.APIKey != "k" || cfg.TMDb.Timeout.AsDuration() != 3*time.Second {
		t.Errorf("TMDb = %+v", cfg.TMDb)
	}
	if cfg.TMDb.BaseURL != "https://api.themoviedb.org/3" {
		t.Errorf("TMDb.BaseURL lost its default: %q", cfg.TMDb.BaseURL)
	}
}

func TestLoadShippedConfig(t *testing.T) {
	tests := []struct {
		name     string
		prefixed string
		legacy   string
		wantKey  string
	}{
		{name: "prefixed variable", prefixed: "from-movierank", legacy: "from-legacy", wantKey: "from-movierank"},
		{name: "legacy fallback", legacy: "from-legacy", wantKey: "from-legacy"},
		{name: "no key", wantKey: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvPrefix+"TMDB_API_KEY", tt.prefixed)
			t.Setenv(LegacyAPIKeyEnv, tt.legacy)

			cfg, err := Load("../../configs/config.yaml")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if cfg.TMDb.APIKey != tt.wantKey {
				t.Errorf("TMDb.APIKey = %q, want %q", cfg.TMDb.APIKey, tt.wantKey)
			}
			if cfg.TMDb.Timeout.AsDuration() != 10*time.Second {
				t.Errorf("TMDb.Timeout = %v, want the shipped 10s", cfg.TMDb.Timeout.AsDuration())
			}
			if cfg.Data.Database.Driver != "sqlite" {
				t.Errorf("Data.Database.Driver = %q, want sqlite", cfg.Data.Database.Driver)
			}
		})
	}
}
