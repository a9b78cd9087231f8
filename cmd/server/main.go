package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/handlers"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/internal/config"
	"hpblackjack-server/internal/jwt"
	"hpblackjack-server/internal/mux"
	"hpblackjack-server/internal/rng"
	"hpblackjack-server/pkg/db"
	"hpblackjack-server/pkg/engine"
	"hpblackjack-server/pkg/session"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()

	// a missing .env file is fine
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Fatal("could not load .env")
	}

	setupLogger()

	// fail fast
	if err := jwt.LoadKeys(); err != nil {
		logrus.WithError(err).Fatal("could not load keys")
	}

	cfg := config.Instance()
	e, err := engine.New(newStore(cfg), engine.Options{
		Rules:      cfg.Rules(),
		StartingHP: cfg.Game.StartingHP,
		Generator:  rng.Crypto{},
		Clock:      quartz.NewReal(),
	})
	if err != nil {
		logrus.WithError(err).Fatal("could not create engine")
	}

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, e))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithFields(logrus.Fields{
		"addr":       srv.Addr,
		"store":      cfg.Store,
		"shoePolicy": cfg.Game.ShoePolicy,
	}).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

func newStore(cfg config.Config) session.Store {
	if cfg.Store == config.StoreMemory {
		logrus.Warn("using the memory store, nothing will be persisted")
		return session.NewMemoryStore(quartz.NewReal())
	}

	// run the db migrations
	db.Migrate()
	return session.NewPostgresStore(db.Instance())
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
