package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"hpblackjack-server/internal/config"
	"hpblackjack-server/internal/jwt"
	"hpblackjack-server/pkg/db"
	"hpblackjack-server/pkg/session"
)

var command = flag.String("c", "token", "specifies the command (token, profile, ledger)")

func main() {
	flag.Parse()
	_ = godotenv.Load()

	switch *command {
	case "token":
		if err := jwt.LoadKeys(); err != nil {
			logrus.WithError(err).Fatal("could not load keys")
		}

		identity := getIdentity()
		if identity == "" {
			os.Exit(1)
		}

		token, err := jwt.Sign(identity)
		if err != nil {
			logrus.WithError(err).Fatal("could not sign token")
		}

		fmt.Println(token)

	case "profile":
		identity := getIdentity()
		if identity == "" {
			os.Exit(1)
		}

		username, err := getInput("Username")
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		if err := session.ValidateProfile(username, nil); err != nil {
			logrus.WithError(err).Fatal("invalid username")
		}

		s, err := postgresStore().Create(context.Background(), identity, username, nil, config.Instance().Game.StartingHP)
		if err != nil {
			logrus.WithError(err).Fatal("could not create profile")
		}

		fmt.Printf("Created profile %s with %d HP\n", s.Username, s.HP)

	case "ledger":
		identity := getIdentity()
		if identity == "" {
			os.Exit(1)
		}

		entries, err := postgresStore().Entries(context.Background(), identity, 20)
		if err != nil {
			logrus.WithError(err).Fatal("could not load ledger")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			logrus.WithError(err).Fatal("could not write ledger")
		}

	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func postgresStore() *session.PostgresStore {
	if config.Instance().Store != config.StorePostgres {
		logrus.Fatal("the admin commands need the postgres store")
	}

	return session.NewPostgresStore(db.Instance())
}

func getIdentity() string {
	for {
		str, err := getInput("Identity")
		if err != nil {
			logrus.WithError(err).Warn("could not read identity")
			return ""
		}

		if str == "" {
			return ""
		}

		if strings.ContainsAny(str, " \t") || len(str) > 255 {
			_, _ = fmt.Fprintln(os.Stderr, "identity cannot contain spaces and must be 255 characters or less")
			continue
		}

		return str
	}
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	reader := bufio.NewReader(os.Stdin)
	str, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	str = strings.TrimRight(str, "\r\n")

	return str, nil
}
