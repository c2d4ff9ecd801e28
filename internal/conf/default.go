package conf

import "time"

// Default returns the configuration used for any key the config file and
// environment leave unset.
func Default() *Bootstrap {
	return &Bootstrap{
		Server: &Server{
			HTTP: HTTP{
				Network: "tcp",
				Addr:    "0.0.0.0:8000",
				Timeout: Duration{30 * time.Second},
			},
		},
		Data: &Data{
			Database: Database{
				Driver: "sqlite",
				Source: "movies-list.db",
			},
			Redis: Redis{
				ReadTimeout:    Duration{200 * time.Millisecond},
				WriteTimeout:   Duration{200 * time.Millisecond},
				LeaderboardKey: "rank:movies:top",
			},
		},
		TMDb: &TMDb{
			BaseURL:      "https://api.themoviedb.org/3",
			ImageBaseURL: "https://image.tmdb.org/t/p/w500",
			Language:     "en-US",
			Breaker: Breaker{
				FailureThreshold: 5,
				MaxRequests:      1,
				OpenTimeout:      Duration{30 * time.Second},
			},
		},
		Session: &Session{
			Name:   "movierank",
			MaxAge: 86400 * 7,
		},
		Log: &Log{
			Level:  "info",
			Format: "json",
		},
	}
}
