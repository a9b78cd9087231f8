package main

import (
	"database/sql"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/internal/config"
	"hpblackjack-server/pkg/db"
)

func main() {
	_ = godotenv.Load()

	if config.Instance().Store != config.StorePostgres {
		logrus.WithField("store", config.Instance().Store).Info("nothing to migrate")
		return
	}

	waitForDB()
	db.Migrate()
}

func waitForDB() {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh := func() *sql.DB {
				defer func() { _ = recover() }()
				return db.Instance()
			}()

			if dbh != nil {
				return
			}

			time.Sleep(time.Millisecond * 500)
		}
	}
}
