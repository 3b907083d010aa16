package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vfg2006/ads-collector/infrastructure/database/mysqldb"
	"github.com/vfg2006/ads-collector/infrastructure/migration"
	"github.com/vfg2006/ads-collector/internal/config"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, err := mysqldb.NewConnection(ctx, cfg.MySQL)
	if err != nil {
		logrus.WithError(err).Fatal("connecting to MySQL")
	}
	defer conn.Close()

	applied, err := migration.Run(ctx, conn, cfg.Migrations.Dir)
	if err != nil {
		logrus.WithError(err).Fatal("running migrations")
	}

	logrus.WithField("applied", len(applied)).Info("migrations up to date")
}
