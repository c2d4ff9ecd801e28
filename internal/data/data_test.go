package data

import (
	"context"
	"path/filepath"
	"testing"

	"movierank/internal/conf"

	"github.com/go-kratos/kratos/v2/log"
)

// newTestData opens a fresh SQLite database in the test's temp dir.
func newTestData(t *testing.T) *Data {
	t.Helper()

	c := &conf.Data{
		Database: conf.Database{
			Driver: DriverSQLite,
			Source: filepath.Join(t.TempDir(), "movies.db"),
		},
	}
	d, cleanup, err := NewData(c, log.DefaultLogger)
	if err != nil {
		t.Fatalf("NewData() error = %v", err)
	}
	t.Cleanup(cleanup)
	return d
}

func TestNewDataUnsupportedDriver(t *testing.T) {
	c := &conf.Data{Database: conf.Database{Driver: "oracle", Source: "x"}}
	if _, _, err := NewData(c, log.DefaultLogger); err == nil {
		t.Fatal("NewData() with unknown driver should fail")
	}
}

func TestHealthWithoutRedis(t *testing.T) {
	d := newTestData(t)

	status := d.Health(context.Background())
	if err, ok := status["database"]; !ok || err != nil {
		t.Errorf("database health = %v (present %v), want nil", err, ok)
	}
	if _, ok := status["redis"]; ok {
		t.Error("redis should not be reported when it is not configured")
	}
}
