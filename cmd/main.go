package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/joonhk/community-server/cmd/api"
	"github.com/joonhk/community-server/db"
	"github.com/sirupsen/logrus"
)

func main() {
	log := newLogger()

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment as-is")
	}

	dataDir := envOr("DATA_DIR", "data")
	uploadDir := envOr("UPLOAD_DIR", "uploads")
	port := envOr("SERVER_PORT", "8080")

	for _, dir := range []string{
		filepath.Join(uploadDir, "profile_images"),
		filepath.Join(uploadDir, "post_images"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.WithError(err).Fatalf("failed to create directory %s", dir)
		}
	}

	store, err := db.NewJSONStore(dataDir, log)
	if err != nil {
		log.WithError(err).Fatal("storage initialization error")
	}
	log.WithField("data_dir", dataDir).Info("store initialized")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	server := api.NewAPIServer(":"+port, store, uploadDir, log)
	go func() {
		if err := server.Run(); err != nil {
			log.WithError(err).Fatal("server error")
		}
	}()
	log.WithField("port", port).Info("server running")

	<-quit
	log.Info("shutting down server")
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
	return log
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
