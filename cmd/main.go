package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pantemp/internal/feed"
	"pantemp/internal/handlers"
	"pantemp/internal/logger"
	"pantemp/internal/models"
	"pantemp/internal/notify"
	"pantemp/internal/repository"
	"pantemp/internal/server"
	"pantemp/internal/service"
	"pantemp/internal/source"

	"github.com/spf13/viper"
)

const probeTimeout = 10 * time.Second

func main() {
	// load config.yml, then init the logger at the configured level
	cfgErr := loadConfig()
	log := logger.Get(viper.GetString("log_level"))
	if cfgErr != nil {
		log.Fatalw("error reading config", "err", cfgErr)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	src, publisher := buildSource(log)
	notifier := buildNotifier(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services := service.NewService(ctx, repos, src, publisher, viper.GetString("feed.target"), notifier, defaultUnit(), log)
	defer services.Session.Close()

	apiHandler := handlers.NewHandler(services, log)

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")
	return viper.ReadInConfig()
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "pantemp.db")
		dbPath = "pantemp.db"
	}
	return repository.InitDB(dbPath)
}

// defaultUnit reads the first-run display unit from config.
func defaultUnit() models.Unit {
	if u, err := models.ParseUnit(viper.GetString("unit")); err == nil {
		return u
	}
	return models.Fahrenheit
}

// buildSource probes the feed once and picks the temperature source.
// The target publisher is only wired when the feed is in use.
func buildSource(log *logger.Logger) (source.Source, service.TargetPublisher) {
	simPeriod := viper.GetDuration("tick.simulated")
	pollPeriod := viper.GetDuration("tick.polled")

	baseURL := viper.GetString("feed.base_url")
	if baseURL == "" {
		log.Infow("no feed configured, using simulated source")
		return source.NewSimulated(simPeriod), nil
	}

	client := feed.New(baseURL, viper.GetDuration("feed.timeout"))
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	src := source.Select(ctx, client, viper.GetString("feed.temperature"), simPeriod, pollPeriod, log)
	if _, polled := src.(*source.PolledFeed); polled {
		return src, client
	}
	return src, nil
}

// buildNotifier always logs alerts; MQTT is added when a broker is configured.
func buildNotifier(log *logger.Logger) notify.Notifier {
	sinks := notify.Multi{notify.NewLogNotifier(log)}

	if broker := viper.GetString("mqtt.broker"); broker != "" {
		mq, err := notify.NewMQTTNotifier(broker, viper.GetString("mqtt.topic"), log)
		if err != nil {
			log.Warnw("mqtt notifier unavailable, continuing without it", "broker", broker, "err", err)
		} else {
			sinks = append(sinks, mq)
		}
	}

	return sinks
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
