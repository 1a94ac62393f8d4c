// Command sweep removes empty per-user photo directories and stale staged
// uploads. It is meant to be run by an operator or a cron job; the server
// itself never runs cleanup in the background.
package main

import (
	"flag"
	"log"
	"time"

	"github.com/copasapp/copas-api/internal/config"
	"github.com/copasapp/copas-api/internal/photo"
)

func main() {
	maxTmpAge := flag.Duration("tmp-age", 24*time.Hour, "remove staged uploads older than this")
	flag.Parse()

	cfg := config.New()

	store, err := photo.NewStore(cfg)
	if err != nil {
		log.Fatalf("failed to init photo store: %v", err)
	}

	removed, err := store.Sweep(*maxTmpAge)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	log.Printf("sweep completed, removed %d entries", removed)
}
