package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/prep-center/config"
	"github.com/irsalhamdi/prep-center/database"
	"github.com/irsalhamdi/prep-center/seed"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const usage = `usage: admin <command>

commands:
  migrate   apply the database migrations
  seed      load the course and material catalog`

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := Run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func Run(log *logrus.Logger) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	var cfg struct {
		conf.Args
		DB config.DB
	}

	const prefix = "PREPCENTER"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			fmt.Println(usage)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch cmd := cfg.Args.Num(0); cmd {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			return err
		}
		log.Info("migrations complete")

	case "seed":
		nc, nm, err := seed.Catalog(ctx, db)
		if err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"courses": nc, "materials": nm}).Info("seed complete")

	default:
		fmt.Println(usage)
		if cmd != "" {
			return fmt.Errorf("unknown command %q", cmd)
		}
	}

	return nil
}
