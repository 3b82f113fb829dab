package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/okiim/libris/internal/config"
	"github.com/okiim/libris/internal/handler"
	"github.com/okiim/libris/internal/repository"
	"github.com/okiim/libris/internal/server"
	"github.com/okiim/libris/internal/service"
	"github.com/okiim/libris/migrations"
	"github.com/okiim/libris/pkg/kafka"
	"github.com/okiim/libris/pkg/logger"
	"github.com/okiim/libris/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "libris")
	db, err := postgres.NewPostgresDB(context.Background(), &cfg.Database, migrations.MigrationFiles)
	if err != nil {
		return fmt.Errorf("db init %v", err)
	}
	repo, err := repository.NewRepository(db, log)
	if err != nil {
		return fmt.Errorf("repo init %v", err)
	}

	var (
		producer sarama.SyncProducer
		events   *service.Events
	)
	if len(cfg.Kafka.Addrs) > 0 {
		producer, err = kafka.NewProducer(cfg.Kafka)
		if err != nil {
			return fmt.Errorf("kafka producer %v", err)
		}
		events = service.NewEvents(producer, cfg.Kafka.Topic, log)
	}

	catalogSvc := service.NewCatalogService(repo, log)
	membershipSvc := service.NewMembershipService(repo, log)
	circulationSvc := service.NewCirculationService(repo, repo, repo, repo, events, log)
	fineSvc := service.NewFineService(repo, log)
	statsSvc := service.NewStatsService(repo, log)

	h := handler.New(catalogSvc, membershipSvc, circulationSvc, fineSvc, statsSvc, log)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	if producer != nil {
		if err = producer.Close(); err != nil {
			log.Error("producer.Close", zap.Error(err))
		}
	}
	db.Close()
	log.Info("Graceful shutdown finished")
	return nil
}
