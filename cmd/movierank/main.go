package main

import (
	"flag"
	"os"

	"movierank/internal/conf"
	"movierank/internal/pkg/zlog"
	"movierank/internal/server"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name = "movierank"
	// Version is the version of the compiled software.
	Version string
	// flagconf is the config flag.
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}

func main() {
	flag.Parse()

	bc, err := conf.Load(flagconf)
	if err != nil {
		panic(err)
	}

	logger := log.With(zlog.New(os.Stdout, bc.Log.Format, bc.Log.Level),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
		"request.id", server.RequestID(),
	)
	if bc.TMDb.APIKey == "" {
		log.NewHelper(logger).Warn("no TMDb API key configured, adding movies will fail")
	}

	app, cleanup, err := wireApp(bc.Server, bc.Data, bc.TMDb, bc.Session, logger)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
