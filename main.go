package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryan-buckman/newsdesk/internal/database"
	"github.com/bryan-buckman/newsdesk/internal/news"
	"github.com/bryan-buckman/newsdesk/internal/server"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", "newsdesk.db", "SQLite database path")
	postgresURL := flag.String("postgres", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (overrides -db)")
	flag.Parse()

	var store database.Store
	var err error
	if *postgresURL != "" {
		store, err = database.NewPostgres(*postgresURL)
	} else {
		store, err = database.New(*dbPath)
	}
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	apiKey := os.Getenv("NEWS_API_KEY")
	if apiKey == "" {
		log.Println("NEWS_API_KEY is not set, serving demo articles")
	}
	svc := news.NewCache(news.NewClient(apiKey), news.DefaultCacheTTL)

	srv, err := server.New(store, svc)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Println("Shutting down")
		srv.Stop()
		store.Close()
		os.Exit(0)
	}()

	if err := srv.Start(*addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
