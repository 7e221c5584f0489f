package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"edulog/internal/attendance"
	"edulog/internal/config"
	"edulog/internal/queue"
	"edulog/internal/store"
)

// Worker consumes audit events from the queue and appends them to the
// attendance_logs trail.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "edulog:audit")
	}

	repo := attendance.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for audit events...")
	for msg := range messages {
		if msg.Action != "login" && msg.Action != "logout" {
			log.Printf("skipping unknown action %q", msg.Action)
			continue
		}
		entry := attendance.LogEntry{UserID: msg.UserID, Action: msg.Action}
		if err := repo.InsertLog(ctx, entry); err != nil {
			log.Printf("audit insert failed for user %s: %v", msg.UserID, err)
			continue
		}
		log.Printf("recorded %s for user %s", msg.Action, msg.UserID)
	}

	log.Println("worker stopped")
}
