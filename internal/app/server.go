package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/suxatcode/knowledge-graph-view/db"
	"github.com/suxatcode/knowledge-graph-view/db/file"
	"github.com/suxatcode/knowledge-graph-view/db/postgres"
	"github.com/suxatcode/knowledge-graph-view/internal/controller"
)

type Config struct {
	Production bool `env:"PRODUCTION" envDefault:"false"`
	// Levels are {trace, debug, info, warn, error, fatal, panic}.
	// See github.com/rs/zerolog@v1.19.0/log.go for possible values.
	LogLevel string `env:"LOGLEVEL" envDefault:"debug"`
	// HTTP timeouts (read and write)
	HTTPTimeout time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Port        string        `env:"PORT" envDefault:"8080"`
	// display refresh period of the sessions
	FrameInterval      time.Duration `env:"FRAME_INTERVAL" envDefault:"16ms"`
	SessionIdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"10m"`
}

func GetEnvConfig() Config {
	conf := Config{}
	env.Parse(&conf)
	return conf
}

func RetryAtIntervals(fn func() error, intervals []time.Duration) {
	var err error
	err = fn()
	i := 0
	for err != nil {
		time.Sleep(intervals[i])
		if i < len(intervals)-1 {
			i++
		}
		err = fn()
	}
}

func setupLogging(conf Config) {
	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		println("failed to parse LogLevel: '" + conf.LogLevel + "', setting to debug")
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
	if !conf.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// OpenSource returns the snapshot source selected by conf.Backend.
func OpenSource(conf db.Config) (db.Source, error) {
	switch conf.Backend {
	case db.BackendPostgres:
		pg, err := postgres.NewPostgresDB(conf)
		if err != nil {
			return nil, err
		}
		return pg, nil
	case db.BackendFile, "":
		f, err := file.NewFileDB(conf)
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return nil, errors.Errorf("unknown DB_BACKEND %q", conf.Backend)
}

func openSourceWithRetry(conf db.Config) db.Source {
	var (
		source db.Source
		err    error
	)
	RetryAtIntervals(func() error {
		source, err = OpenSource(conf)
		if err != nil {
			log.Error().Msgf("failed to open snapshot source: %v", err)
		}
		return err
	}, []time.Duration{
		1 * time.Second,
		5 * time.Second,
		5 * time.Second,
		10 * time.Second,
	})
	return source
}

// Run serves the viewer API until SIGINT or SIGTERM.
func Run() {
	conf := GetEnvConfig()
	setupLogging(conf)
	dbconf := db.GetEnvConfig()
	log.Info().Msgf("Config: %s", dbconf)
	source := openSourceWithRetry(dbconf)

	ctrlconf := controller.DefaultConfig
	ctrlconf.FrameInterval = conf.FrameInterval
	ctrlconf.IdleTimeout = conf.SessionIdleTimeout
	ctrl := controller.NewController(source, ctrlconf)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go ctrl.ExpireIdleSessions(ctx, time.Minute)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	server := http.Server{
		Addr:         ":" + conf.Port,
		Handler:      NewHandler(ctrl, reg, !conf.Production),
		ReadTimeout:  conf.HTTPTimeout,
		WriteTimeout: conf.HTTPTimeout,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.HTTPTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Msgf("shutdown: %v", err)
		}
	}()
	if !conf.Production {
		log.Info().Msgf("connect to http://0.0.0.0:%s/ for GraphQL playground", conf.Port)
	}
	log.Info().Msgf("listening on http://0.0.0.0:%s/query", conf.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Msgf("ListenAndServe: %s", err)
	}
	ctrl.CloseAll()
	log.Info().Msg("stopped")
}
