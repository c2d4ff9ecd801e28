package conf

import (
	"fmt"
	"os"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/env"
	"github.com/go-kratos/kratos/v2/config/file"
)

// EnvPrefix selects the environment variables visible to ${...}
// placeholders, with the prefix stripped: MOVIERANK_TMDB_API_KEY fills
// ${TMDB_API_KEY}.
const EnvPrefix = "MOVIERANK_"

// LegacyAPIKeyEnv is read when tmdb.api_key is still empty after loading.
const LegacyAPIKeyEnv = "MOVIES_DB_API_KEY"

// Load reads the config file or directory at path over Default.
func Load(path string) (*Bootstrap, error) {
	c := config.New(
		config.WithSource(
			env.NewSource(EnvPrefix),
			file.NewSource(path),
		),
	)
	defer c.Close()

	if err := c.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	bc := Default()
	if err := c.Scan(bc); err != nil {
		return nil, fmt.Errorf("failed to scan config %s: %w", path, err)
	}
	if bc.TMDb.APIKey == "" {
		bc.TMDb.APIKey = os.Getenv(LegacyAPIKeyEnv)
	}
	return bc, nil
}
