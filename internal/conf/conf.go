// Package conf holds the configuration tree scanned from configs/config.yaml
// by kratos config.
package conf

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Bootstrap is the root of the configuration file.
type Bootstrap struct {
	Server  *Server  `json:"server"`
	Data    *Data    `json:"data"`
	TMDb    *TMDb    `json:"tmdb"`
	Session *Session `json:"session"`
	Log     *Log     `json:"log"`
}

type Server struct {
	HTTP HTTP `json:"http"`
}

type HTTP struct {
	Network string   `json:"network"`
	Addr    string   `json:"addr"`
	Timeout Duration `json:"timeout"`
}

type Data struct {
	Database Database `json:"database"`
	Redis    Redis    `json:"redis"`
}

type Database struct {
	// Driver is "postgres" or "sqlite".
	Driver          string   `json:"driver"`
	Source          string   `json:"source"`
	MaxIdleConns    int      `json:"max_idle_conns"`
	MaxOpenConns    int      `json:"max_open_conns"`
	ConnMaxLifetime Duration `json:"conn_max_lifetime"`
}

type Redis struct {
	// Addr left empty disables the leaderboard mirror.
	Addr           string   `json:"addr"`
	Password       string   `json:"password"`
	DB             int      `json:"db"`
	ReadTimeout    Duration `json:"read_timeout"`
	WriteTimeout   Duration `json:"write_timeout"`
	LeaderboardKey string   `json:"leaderboard_key"`
}

type TMDb struct {
	BaseURL      string   `json:"base_url"`
	ImageBaseURL string   `json:"image_base_url"`
	APIKey       string   `json:"api_key"`
	Language     string   `json:"language"`
	Timeout      Duration `json:"timeout"`
	Breaker      Breaker  `json:"breaker"`
}

// Breaker configures the circuit breaker in front of the TMDb API.
type Breaker struct {
	FailureThreshold uint32   `json:"failure_threshold"`
	MaxRequests      uint32   `json:"max_requests"`
	OpenTimeout      Duration `json:"open_timeout"`
}

type Session struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
	MaxAge int    `json:"max_age"`
	Secure bool   `json:"secure"`
}

type Log struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Duration is a time.Duration read from either a Go duration string ("5s")
// or a number of nanoseconds.
type Duration struct {
	time.Duration
}

// AsDuration returns the wrapped duration. A nil receiver is zero.
func (d *Duration) AsDuration() time.Duration {
	if d == nil {
		return 0
	}
	return d.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case nil:
		d.Duration = 0
	case float64:
		d.Duration = time.Duration(value)
	case string:
		if value == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		d.Duration = parsed
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}
