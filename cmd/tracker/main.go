// Command tracker is the command line client of the tracker. It keeps a
// local cache in sync with a document server and can run the server itself.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("tracker")
		stop()
		os.Exit(1)
	}
}
