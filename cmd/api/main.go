package main

import (
	"net/http"
	"os"
	"time"

	"pet-adoption-market/internal/platform/logger"
	"pet-adoption-market/internal/router"
)

func main() {
	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	log := logger.NewFromEnv()

	r := router.NewRouter(router.Options{
		Logger: log,
		// Jamás habilitar en prod.
		AllowDebugHeaders: os.Getenv("ALLOW_DEBUG_HEADERS") == "1",
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "err", err)
		os.Exit(1)
	}
}
