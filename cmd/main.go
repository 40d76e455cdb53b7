package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/placehub/anonqa-service/internal/cache"
	cfgpkg "github.com/placehub/anonqa-service/internal/config"
	"github.com/placehub/anonqa-service/internal/events"
	"github.com/placehub/anonqa-service/internal/logger"
	"github.com/placehub/anonqa-service/internal/repository"
	"github.com/placehub/anonqa-service/internal/scheduler"
	"github.com/placehub/anonqa-service/internal/server"
	"github.com/placehub/anonqa-service/internal/service"
	"github.com/placehub/anonqa-service/internal/ws"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg, err := cfgpkg.Load("config.yaml")
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	zl, err := logger.New(logger.Config{Development: cfg.App.Env != "production"})
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer zl.Sync()

	// Mongo client + collections
	mc, err := repository.NewMongoClient(cfg)
	if err != nil {
		zl.Fatalw("mongo init", "err", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.Mongo.Database)

	sessions := repository.NewSessionRepository(db.Collection(cfg.Mongo.SessionsCollection))
	answersColl := db.Collection(cfg.Mongo.AnswersCollection)
	questions := repository.NewQuestionRepository(db.Collection(cfg.Mongo.QuestionsCollection), answersColl)
	answers := repository.NewAnswerRepository(answersColl)

	// Redis presence (optional)
	var presence ws.Presence
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(cfg)
		if err != nil {
			zl.Warnw("redis unavailable, presence disabled", "err", err)
		} else {
			presence = rc
			defer rc.Close()
		}
	}

	// Kafka producer (optional)
	var publisher service.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		prod := events.NewProducer(cfg)
		publisher = prod
		defer prod.Close()
	}

	hub := ws.NewHub(presence, zl)
	svc := service.NewQA(sessions, questions, answers, hub, publisher, zl)
	hub.Bind(svc)

	archiver := scheduler.NewArchiver(questions, cfg.SweepInterval, cfg.ArchiveMaxAge, zl)
	archiver.Start()

	app := server.New(cfg, svc, hub, zl)

	go func() {
		if err := app.Listen(fmt.Sprintf(":%d", cfg.App.Port)); err != nil {
			zl.Fatalw("server listen", "err", err)
		}
	}()
	zl.Infow("anonqa-service started", "port", cfg.App.Port)

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	archiver.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	zl.Infow("anonqa-service stopped")
}
