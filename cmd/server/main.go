package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"authsvc/internal/auth"
	"authsvc/internal/config"
	"authsvc/internal/database"
	"authsvc/internal/email"
	"authsvc/internal/logging"
	redisx "authsvc/internal/redis"
	"authsvc/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		fileWriter, err := logging.NewRotatingFileWriter(cfg.LogFile, 10<<20, 3)
		if err != nil {
			log.Fatalf("log setup error: %v", err)
		}
		defer fileWriter.Close()
		logOutput = io.MultiWriter(os.Stdout, fileWriter)
	}
	log.SetOutput(logOutput)
	log.SetFlags(log.LstdFlags | log.LUTC | log.Lshortfile)

	db, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}
	defer db.Close()

	redisClient, err := redisx.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis error: %v", err)
	}
	defer redisClient.Close()

	users := auth.NewUserRepository(db)
	mailer := email.NewSender(cfg.Email)
	hasher := auth.NewBcryptHasher()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	otp := auth.NewOTPIssuer(users, mailer)
	svc := auth.NewService(users, otp, tokens, hasher, mailer)
	rateLimiter := &auth.RateLimiter{Redis: redisClient}

	api := server.NewServer(cfg, svc, tokens, rateLimiter, mailer)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
