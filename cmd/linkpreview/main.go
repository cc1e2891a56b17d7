package main

import (
	"log"

	"github.com/MrSnakeDoc/linkpreview/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ linkpreview failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ linkpreview failed to start: %v", err)
	}
}
