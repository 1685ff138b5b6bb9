package main

import (
	"log"

	"github.com/ceacwatch/ceacwatch/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("ceacwatch failed to start: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("ceacwatch failed: %v", err)
	}
}
