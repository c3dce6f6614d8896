package main

import (
	"context"
	"log"

	"github.com/dalemusser/eventhub/internal/app/bootstrap"
	"github.com/dalemusser/waffle/app"
)

// main hands the lifecycle to WAFFLE: config, validation, lazy DB manager,
// HTTP server, and on SIGINT/SIGTERM the Shutdown hook. Any error from
// those, including missing credentials, exits non-zero.
func main() {
	if err := app.Run(context.Background(), bootstrap.Hooks); err != nil {
		log.Fatal(err)
	}
}
