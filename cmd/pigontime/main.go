package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Konlor08/PigOnTime/config"
	"github.com/Konlor08/PigOnTime/engine"
	"github.com/Konlor08/PigOnTime/messaging"
	"github.com/Konlor08/PigOnTime/store"
	"github.com/Konlor08/PigOnTime/www"
)

var Version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "pigontime.yaml", "path to config file")
	flag.Parse()

	if *showVersion {
		fmt.Println("pigontime", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Database
	db, err := store.Open(&cfg.Database)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()
	log.Printf("pigontime: database open (%s)", cfg.Database.Driver)

	// Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	cacheClient := redisClient
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("pigontime: redis not available (%v), running without cache", err)
		cacheClient = nil
	} else {
		log.Printf("pigontime: redis connected (%s)", cfg.Redis.Address)
	}
	cancel()
	defer redisClient.Close()

	// Messaging client
	msgClient := messaging.NewClient(&cfg.Messaging)
	if err := msgClient.Connect(); err != nil {
		log.Printf("pigontime: messaging connect failed (%v)", err)
	} else {
		log.Printf("pigontime: messaging connected (%s)", cfg.Messaging.Backend)
	}
	defer msgClient.Close()

	// Engine
	eng := engine.New(engine.Config{
		AppConfig:  cfg,
		ConfigPath: *configPath,
		DB:         db,
		Redis:      cacheClient,
	})
	eng.Start()
	defer eng.Stop()

	// Inbound feeds (positions from devices, plans from planning)
	sub := messaging.NewSubscriber(msgClient, &cfg.Messaging, db, eng.Tracker(), func(planID int64, planUID string) {
		eng.Events.Emit(engine.Event{Type: engine.EventPlanUpserted, Payload: engine.PlanUpsertedEvent{
			PlanID: planID, PlanUID: planUID,
		}})
	})
	if err := sub.Start(); err != nil {
		log.Printf("pigontime: subscribe failed: %v", err)
	} else {
		log.Printf("pigontime: listening on %s, %s", cfg.Messaging.PositionsTopic, cfg.Messaging.PlansTopic)
	}

	// Outbox drainer (trip events to the planning system)
	drainer := messaging.NewOutboxDrainer(db, msgClient, &cfg.Messaging)
	drainer.Start()
	defer drainer.Stop()

	// Web server
	handler, stopWeb := www.NewRouter(eng)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Printf("pigontime: web server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("web server: %v", err)
		}
	}()

	log.Printf("pigontime: ready")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Printf("pigontime: shutting down...")
	stopWeb()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	log.Printf("pigontime: stopped")
}
