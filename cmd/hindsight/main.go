package main

import (
	"log"

	"github.com/hindsightlabs/hindsight/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ hindsight failed to start: %v", err)
	}
}
