package main

import (
	"log"

	"github.com/aussiebroadwan/acrelay/internal/relay/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize relay: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("relay error: %v", err)
	}
}
