package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/envelope-zero/tracker/internal/config"
	"github.com/envelope-zero/tracker/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	log.Logger = cfg.Logger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, nil); err != nil {
		log.Fatal().Msg(err.Error())
	}
}
