package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/hochlab/lab-booking/internal/cache"
	"github.com/hochlab/lab-booking/internal/config"
	dbpkg "github.com/hochlab/lab-booking/internal/db"
	"github.com/hochlab/lab-booking/internal/jobs"
	"github.com/hochlab/lab-booking/internal/messaging"
	"github.com/hochlab/lab-booking/internal/middleware"
	"github.com/hochlab/lab-booking/internal/routes"
	"github.com/hochlab/lab-booking/internal/storage"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	rdb := cache.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	calCache := cache.NewCalendarCache(rdb, time.Duration(cfg.CalendarTTL)*time.Second)

	var publisher messaging.Publisher
	if cfg.AMQPURL != "" {
		publisher = messaging.NewAMQPPublisher(cfg.AMQPURL)
	}
	events := messaging.NewDispatcher(db, publisher)

	store := storage.NewRecordingStorage(cfg)
	jobs.StartRecordingCleanup(
		db,
		store,
		time.Hour,
		time.Duration(cfg.RecordingRetentionDays)*24*time.Hour,
	)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, calCache, events, store)

	log.Printf("Server running on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
