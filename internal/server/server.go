// Package server contain implementation of go-gin-server and each route handlers
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"jobtrail-backend/internal/blob"
	"jobtrail-backend/internal/controller"
	"jobtrail-backend/internal/database"
	"jobtrail-backend/internal/store"
)

// Server bundles the shared dependencies behind the HTTP surface.
type Server struct {
	DB         *database.DBInstance
	Stores     *store.Stores
	Controller *controller.Controller
}

// NewServer connects dependencies from environment configuration and
// returns a configured http.Server ready to listen.
func NewServer() *http.Server {
	port, _ := strconv.Atoi(os.Getenv("PORT"))

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialized: %s", err)
	}

	stores := store.New(db, newBus())

	blobs, err := newBlobStore()
	if err != nil {
		log.Fatalf("Blob storage failed to initialized: %s", err)
	}

	s := &Server{
		DB:         db,
		Stores:     stores,
		Controller: controller.New(db, stores, blobs),
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// newBus connects the change-event bus. With REDIS_ADDR set events go
// through redis pub/sub so every node observes them; without it a
// process-local bus serves single-node deployments.
func newBus() store.Bus {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Print("REDIS_ADDR not set, using in-process change bus")
		return store.NewMemoryBus()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis at %s: %s", addr, err)
	}

	return store.NewRedisBus(rdb)
}

// newBlobStore connects document storage. With GCS_BUCKET_NAME set files go
// to cloud storage; without it they stay in process memory, which only
// suits development.
func newBlobStore() (blob.Store, error) {
	bucket := os.Getenv("GCS_BUCKET_NAME")
	if bucket == "" {
		log.Print("GCS_BUCKET_NAME not set, storing documents in memory")
		return blob.NewMemoryStore(), nil
	}
	return blob.NewCloudStorageClient(context.Background(), bucket)
}
