package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	game "gridfire-server/src"
	api "gridfire-server/src/api"
)

func main() {
	cfg := api.LoadConfig()

	var store api.UserStore
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		db, err := api.ConnectMongo(ctx, cfg)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		store = api.NewMongoStore(db)
		log.Println("Connected to MongoDB")
	} else {
		log.Println("MONGO_URI not set; using in-memory user store")
		store = api.NewMemoryStore()
	}

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := api.SeedDefaultAdmin(seedCtx, cfg, store); err != nil {
		log.Printf("Admin seed failed: %v", err)
	}
	cancel()

	gameServer := game.NewGameServer(store)
	gameServer.Run()

	r := chi.NewRouter()
	r.Mount("/api", api.NewAPIRouter(cfg, store))
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/ws", gameServer.HandleConnections)
	if cfg.StaticDir != "" {
		r.Handle("/*", game.StaticFileServer(cfg.StaticDir, "index.html"))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
