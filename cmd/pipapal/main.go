// cmd/pipapal/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dalemusser/pipapal/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, bootstrap.Hooks); err != nil {
		logger, _ := zap.NewProduction()
		logger.Fatal("pipapal exited", zap.Error(err))
	}
}
