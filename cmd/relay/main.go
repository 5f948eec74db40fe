// Command relay delivers outbox events to Kafka.
package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"yatube/internal/config"
	"yatube/internal/pkg"
	"yatube/internal/repository/database"
	"yatube/internal/service"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML config file")
	logLevel := flag.String("log", "", "log level, overrides logLevel from the config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[relay] load config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("[relay] %v", err)
	}
	log.SetLevel(level)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("[relay] %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("[relay] migrate: %v", err)
	}

	var sender pkg.Sender
	producer, err := pkg.NewKafkaProducer(cfg.Kafka)
	switch {
	case err == nil:
		defer producer.Close()
		sender = producer
	case errors.Is(err, pkg.ErrNoBrokers):
		log.Warn("[relay] no kafka brokers configured, events are only logged")
		sender = service.LogSender{}
	default:
		log.Fatalf("[relay] kafka: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infof("[relay] started, topic %s", cfg.Kafka.Topic)
	service.NewOutboxRelayer(db, sender).Run(ctx)
	log.Info("[relay] stopped")
}
