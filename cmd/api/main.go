package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/laboquimica/kalium-review/internal/app/api"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := api.Run(ctx); err != nil {
		log.Fatalf("review console API failed: %v", err)
	}
}
