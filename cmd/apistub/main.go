// Command apistub runs the deterministic highscore API stub. Point the
// tracker's api.base_url at it for local development without touching the
// real game API.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/QueCS/ogame-highscores-tracker/internal/apistub"
	"github.com/QueCS/ogame-highscores-tracker/pkg/logger"
)

const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	addr := flag.String("addr", ":9081", "listen address")
	entities := flag.Int("entities", 25, "entities per leaderboard payload")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stub := apistub.New(apistub.WithEntities(*entities))
	srv := &http.Server{
		Addr:              *addr,
		Handler:           stub.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		logger.Get().Info(ctx, "starting API stub", logger.String("addr", *addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("API stub failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
